package checkout

import "errors"

var (
	ErrSessionCancelled   = errors.New("checkout session cancelled")
	ErrSessionCompleted   = errors.New("checkout session already completed")
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrNotReady           = errors.New("draft has not passed validation")
	ErrSuperseded         = errors.New("result superseded by a newer mutation")
	ErrIllegalTransition  = errors.New("illegal checkout status transition")
)
