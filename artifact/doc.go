// Package artifact provides the persistence backends a session writes its
// run records to: the captured input, the ordered event journal, the final
// response, and the trace and conversation summaries.
//
// Callers depend on the Store interface so the backend can be swapped: the
// filesystem store mirrors each run into its own directory, while the
// in-memory store serves tests and single-process prototypes.
package artifact
