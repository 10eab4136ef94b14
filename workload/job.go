package workload

import "github.com/joeycumines/go-swfsim/event"

// ToJob converts a parsed Record into a fresh, unstarted event.Job, with
// PredictedRunTime initialised to EstimatedRunTime (the EASY++ default
// before any of the submitting user's jobs have completed).
func (r Record) ToJob() *event.Job {
	return &event.Job{
		ID:                    r.JobNumber,
		SubmitTime:            r.SubmitTime,
		EstimatedRunTime:      r.EstimatedRunTime,
		ActualRunTime:         r.RunTime,
		NumRequiredProcessors: r.NumRequiredProcessors,
		UserID:                r.UserID,
		StartToRunAtTime:      event.UnstartedTime,
		PredictedRunTime:      r.EstimatedRunTime,
	}
}
