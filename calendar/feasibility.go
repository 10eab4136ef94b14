package calendar

import "github.com/joeycumines/go-swfsim/event"

// MergedSlices returns the archived slices followed by the active
// slices, in chronological order. It is used by FeasibilityCheck and by
// diagnostics; live scheduling never needs it.
func (c *Calendar) MergedSlices() []Slice {
	out := make([]Slice, 0, len(c.archive)+len(c.slices))
	out = append(out, c.archive...)
	out = append(out, c.slices...)
	return out
}

// FeasibilityCheck verifies, post-simulation, that every slice ever
// produced over this calendar's lifetime kept its free count within
// [0, Total], and that replaying every given job's actual reservation
// (assign at its recorded start using its actual run time, then release
// in full) against a fresh calendar of the same size returns every
// slice to Total.
//
// The replay reconstructs the schedule from actual run times rather
// than from the simulation's tentative, estimated-time reservations:
// what must be feasible is the schedule that really executed.
func (c *Calendar) FeasibilityCheck(jobs []*event.Job) error {
	for _, s := range c.MergedSlices() {
		if s.Free < 0 || s.Free > c.total {
			return &ErrInfeasible{Start: s.Start, End: s.End, Free: s.Free, Total: c.total}
		}
	}

	fresh := New(c.total)
	replay := make([]*event.Job, len(jobs))
	for i, j := range jobs {
		replay[i] = &event.Job{
			ID:                    j.ID,
			NumRequiredProcessors: j.NumRequiredProcessors,
			EstimatedRunTime:      j.ActualRunTime,
			ActualRunTime:         j.ActualRunTime,
			StartToRunAtTime:      event.UnstartedTime,
		}
		if err := fresh.Assign(replay[i], j.StartToRunAtTime); err != nil {
			return err
		}
	}
	for _, j := range replay {
		if err := fresh.ReleaseFull(j); err != nil {
			return err
		}
	}
	for _, s := range fresh.slices {
		if s.Free != fresh.total {
			return &ErrInfeasible{Start: s.Start, End: s.End, Free: s.Free, Total: fresh.total}
		}
	}
	return nil
}
