package core

import "github.com/google/uuid"

// NewID generates a unique identifier used for events and tool-call
// correlation throughout the module.
func NewID() string { return uuid.NewString() }
