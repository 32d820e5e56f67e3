package order

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusOnHold     Status = "on-hold"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// PaidStatuses are the statuses an order moves to once payment is confirmed.
var PaidStatuses = []Status{StatusProcessing, StatusCompleted, StatusOnHold}

// TerminalStatuses end reconciliation for an order.
var TerminalStatuses = []Status{
	StatusProcessing, StatusCompleted, StatusOnHold,
	StatusFailed, StatusCancelled, StatusRefunded,
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusOnHold, StatusCompleted,
		StatusFailed, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

func (s Status) IsPaid() bool {
	return s == StatusProcessing || s == StatusCompleted || s == StatusOnHold
}

func (s Status) IsTerminal() bool {
	return s != StatusPending && s.IsValid()
}

func (s Status) In(statuses ...Status) bool {
	for _, candidate := range statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// StatusStrings converts statuses for use in queries.
func StatusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
