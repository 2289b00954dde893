package agent

import "fmt"

// Trade lifecycle states. Advisory, executed, failed and cancelled are
// terminal; pending waits for an explicit confirm, ready for execution.
const (
	StatusAdvisory  = "advisory"
	StatusPending   = "pending"
	StatusReady     = "ready"
	StatusExecuted  = "executed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// InvalidTransitionError reports an operation attempted on a trade whose
// current status does not allow it.
type InvalidTransitionError struct {
	TradeID int64
	Status  string
	Op      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("trade %d: cannot %s in status %q", e.TradeID, e.Op, e.Status)
}

func canConfirm(status string) bool {
	return status == StatusPending
}

func canCancel(status string) bool {
	switch status {
	case StatusPending, StatusReady, StatusAdvisory:
		return true
	}
	return false
}
