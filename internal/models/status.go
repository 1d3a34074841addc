package models

// StatusKind classifies an observed task status.
type StatusKind int

const (
	// StatusIdle means the server reported an empty status: nothing is running.
	StatusIdle StatusKind = iota
	// StatusRunning means the server reported a progress message.
	StatusRunning
	// StatusUnknown means no status could be observed (transport or decode failure).
	StatusUnknown
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusUnknown:
		return "unknown"
	default:
		return ""
	}
}

// Status is the execution status of a task as seen by one status request.
type Status struct {
	Kind    StatusKind
	Message string
}

// StatusFromServer classifies the status string returned by the server.
func StatusFromServer(message string) Status {
	if message == "" {
		return Status{Kind: StatusIdle}
	}
	return Status{Kind: StatusRunning, Message: message}
}

// UnknownStatus records a failed status observation.
func UnknownStatus(err error) Status {
	s := Status{Kind: StatusUnknown}
	if err != nil {
		s.Message = err.Error()
	}
	return s
}

// Done reports whether polling should stop: the task is no longer running.
//
// An unknown status is never done.
func (s Status) Done() bool { return s.Kind == StatusIdle }
