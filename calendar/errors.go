package calendar

import "fmt"

// ErrInfeasible reports that a reservation change would have pushed a
// slice's free-processor count outside [0, Total]. It indicates a
// scheduler defect, never bad input; callers consult it via errors.As.
type ErrInfeasible struct {
	Start, End int64
	Free       int
	Delta      int
	Total      int
}

func (e *ErrInfeasible) Error() string {
	return fmt.Sprintf("infeasible reservation on [%d,%d): free=%d delta=%d total=%d", e.Start, e.End, e.Free, e.Delta, e.Total)
}
