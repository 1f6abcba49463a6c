package artifact

// Store persists the named artifacts of a run. Implementations must be safe
// for concurrent use; a session appends to its event journal while earlier
// runs may still be read.
type Store interface {
	// Save stores (or overwrites) the artifact bytes for the run.
	Save(runID, name string, data []byte) error
	// Append appends bytes to the named artifact, creating it if absent.
	// Used for the line-oriented event journal.
	Append(runID, name string, data []byte) error
	// Get returns the artifact bytes or ErrNotFound.
	Get(runID, name string) ([]byte, error)
	// List returns the artifact names stored for the run.
	List(runID string) ([]string, error)
}
