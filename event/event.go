package event

// Kind identifies the variant of an Event.
type Kind int

const (
	// KindTermination must sort before KindStart at equal timestamps, so
	// capacity freed by a job ending is visible to start decisions made
	// at the same instant.
	KindTermination Kind = iota
	KindStart
	KindSubmission
	KindPredictionExpiry
)

// kindOrder gives the tie-break order for events sharing a timestamp.
// Termination before Start before Submission before PredictionExpiry.
var kindOrder = map[Kind]int{
	KindTermination:      0,
	KindStart:            1,
	KindSubmission:       2,
	KindPredictionExpiry: 3,
}

func (k Kind) String() string {
	switch k {
	case KindSubmission:
		return "Submission"
	case KindStart:
		return "Start"
	case KindTermination:
		return "Termination"
	case KindPredictionExpiry:
		return "PredictionExpiry"
	default:
		return "Unknown"
	}
}

// Event is a timestamped occurrence referencing a Job. Events compare by
// (Timestamp, Kind tie-break order, Job.ID, insertion sequence).
type Event struct {
	Kind      Kind
	Timestamp int64
	Job       *Job

	// seq is assigned by Queue.Add and breaks ties between otherwise
	// identical (Timestamp, Kind, Job.ID) events in insertion order. It
	// is unexported: callers never construct it directly.
	seq uint64
}

// NewEvent constructs an Event. The insertion sequence is assigned when
// the event is added to a Queue.
func NewEvent(kind Kind, timestamp int64, job *Job) Event {
	return Event{Kind: kind, Timestamp: timestamp, Job: job}
}

// less reports whether a sorts strictly before b: timestamp, then kind
// tie-break order, then job id, then insertion sequence.
func less(a, b Event) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	if oa, ob := kindOrder[a.Kind], kindOrder[b.Kind]; oa != ob {
		return oa < ob
	}
	if a.Job != nil && b.Job != nil && a.Job.ID != b.Job.ID {
		return a.Job.ID < b.Job.ID
	}
	return a.seq < b.seq
}
