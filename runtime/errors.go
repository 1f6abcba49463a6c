package runtime

import "fmt"

// TurnLimitError reports that the agent loop hit its turn ceiling without
// producing a final response.
type TurnLimitError struct {
	Limit int
}

func (e *TurnLimitError) Error() string {
	return fmt.Sprintf("run exceeded the maximum of %d turns", e.Limit)
}
