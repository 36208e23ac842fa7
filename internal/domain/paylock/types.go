package paylock

type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCompleted Status = "completed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusCompleted:
		return true
	default:
		return false
	}
}

// Completed is the only terminal status; expired locks stay matchable
// inside the grace window.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}
