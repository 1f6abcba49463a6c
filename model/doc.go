// Package model defines the provider-neutral generation interface the
// runtime drives. Vendor adapters live in subpackages; the MockModel here
// serves tests and examples.
package model
