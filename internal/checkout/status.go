package checkout

// Status describes where a checkout attempt is in its lifecycle. An attempt
// starts Idle, refuses to submit from Empty or AuthRequired, holds
// Submitting while the order call is in flight, and ends Succeeded or
// Failed.
type Status string

const (
	StatusIdle         Status = "IDLE"
	StatusEmpty        Status = "EMPTY"
	StatusSubmitting   Status = "SUBMITTING"
	StatusAuthRequired Status = "AUTH_REQUIRED"
	StatusSucceeded    Status = "SUCCEEDED"
	StatusFailed       Status = "FAILED"
)

func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

func (s Status) String() string {
	return string(s)
}
