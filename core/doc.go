// Package core holds the shared value types of the orchestration protocol:
// the Message Envelope exchanged on every handoff, the per-run TaskState and
// its revision state machine, the append-only handoff Trace, and the
// normalized Event taxonomy exposed to clients.
//
// Types in this package are plain data carriers; behavior that mutates them
// (transfer authorization, evaluation verdict handling) lives in the handoff
// and session packages.
package core
