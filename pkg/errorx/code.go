package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest      Code = 100001
	BadResponse     Code = 100002
	NotFound        Code = 100003
	Unauthenticated Code = 100004
	Internal        Code = 100005
	Unavailable     Code = 100006
	TooManyRequests Code = 100007

	// State store codes
	Conflict          Code = 200001
	ConflictExhausted Code = 200002

	// Interaction codes
	UnknownCommand Code = 300001
	ReplyExpired   Code = 300002
)
