package core

import "encoding/json"

// EnvelopeKind tags the intent of a message exchanged on a handoff.
type EnvelopeKind string

const (
	// KindTask delegates work to the receiving role.
	KindTask EnvelopeKind = "task"
	// KindResult reports a completed deliverable back to the sender's parent.
	KindResult EnvelopeKind = "result"
	// KindEvaluation carries a reviewer verdict (PASS / REVISE) on a deliverable.
	KindEvaluation EnvelopeKind = "evaluation"
	// KindFeedback carries revision comments alongside a re-delegation.
	KindFeedback EnvelopeKind = "feedback"
)

// Valid reports whether k is one of the four known envelope kinds.
func (k EnvelopeKind) Valid() bool {
	switch k {
	case KindTask, KindResult, KindEvaluation, KindFeedback:
		return true
	}
	return false
}

// RawPayloadKey is the sentinel key under which an undecodable payload is
// preserved verbatim instead of being discarded.
const RawPayloadKey = "raw"

// Envelope is the typed unit exchanged on every transfer between roles: an
// intent tag plus an opaque payload owned by sender/receiver convention.
// The router never interprets the payload except to extract an evaluation
// verdict, and even that is best effort.
type Envelope struct {
	Kind    EnvelopeKind    `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope builds an envelope, marshaling payload to JSON. A payload that
// cannot be marshaled yields an envelope with an empty payload.
func NewEnvelope(kind EnvelopeKind, payload any) Envelope {
	env := Envelope{Kind: kind}
	if payload == nil {
		return env
	}
	if raw, err := json.Marshal(payload); err == nil {
		env.Payload = raw
	}
	return env
}

// DecodePayload decodes the payload into a generic map. Malformed payloads
// are returned wrapped under RawPayloadKey so the bytes survive for the
// receiving role to interpret; this never fails.
func (e Envelope) DecodePayload() map[string]any {
	if len(e.Payload) == 0 {
		return map[string]any{}
	}
	var decoded map[string]any
	if err := json.Unmarshal(e.Payload, &decoded); err != nil || decoded == nil {
		return map[string]any{RawPayloadKey: string(e.Payload)}
	}
	return decoded
}
