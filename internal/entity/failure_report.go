package entity

const (
	FailureHandlerPanic      = "handler_panic"
	FailureFollowUpExpired   = "follow_up_expired"
	FailureFollowUpDelivery  = "follow_up_delivery"
	FailureConflictExhausted = "conflict_exhausted"
)

// FailureReport is an internal record of an interaction that could not be
// served normally. Reports are kept locally; they never reach the invoking
// user beyond the generic failure reply.
type FailureReport struct {
	Base
	InteractionID string `gorm:"index"`
	Command       string
	UserID        string
	Kind          string `gorm:"index"`
	Detail        string
}
