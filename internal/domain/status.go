package domain

// CheckoutStatus is the orchestrator's state machine position.
type CheckoutStatus string

const (
	StatusDraft             CheckoutStatus = "DRAFT"
	StatusValidating        CheckoutStatus = "VALIDATING"
	StatusReadyToSubmit     CheckoutStatus = "READY_TO_SUBMIT"
	StatusSubmitting        CheckoutStatus = "SUBMITTING"
	StatusConfirmed         CheckoutStatus = "CONFIRMED"
	StatusFailedRecoverable CheckoutStatus = "FAILED_RECOVERABLE"
	StatusFailedFatal       CheckoutStatus = "FAILED_FATAL"
	StatusCancelled         CheckoutStatus = "CANCELLED"
)

var validNext = map[CheckoutStatus]map[CheckoutStatus]bool{
	StatusDraft:      {StatusValidating: true, StatusCancelled: true},
	StatusValidating: {StatusReadyToSubmit: true, StatusDraft: true, StatusCancelled: true},
	// Any mutation invalidates a ready draft and sends it back for re-review.
	StatusReadyToSubmit:     {StatusSubmitting: true, StatusDraft: true, StatusCancelled: true},
	StatusSubmitting:        {StatusConfirmed: true, StatusFailedRecoverable: true, StatusFailedFatal: true},
	StatusFailedRecoverable: {StatusDraft: true, StatusCancelled: true},
	StatusFailedFatal:       {StatusDraft: true, StatusCancelled: true},
	StatusConfirmed:         {},
	StatusCancelled:         {},
}

// CanTransitionTo reports whether the state machine allows moving from one
// status to another.
func CanTransitionTo(from, to CheckoutStatus) bool {
	return validNext[from][to]
}

// IsTerminal reports whether no further transitions exist. Failures are not
// terminal: the submission control is re-enabled after every failure.
func (s CheckoutStatus) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

func (s CheckoutStatus) String() string {
	return string(s)
}
