package monitor

type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateCompleted
	StateAnomalous
	StateTimedOut
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateInProgress:
		return "IN_PROGRESS"
	case StateCompleted:
		return "COMPLETED"
	case StateAnomalous:
		return "ANOMALOUS"
	case StateTimedOut:
		return "TIMED_OUT"
	case StateCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

func (s State) Terminal() bool {
	return s >= StateCompleted
}
