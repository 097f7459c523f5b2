package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009

	// Raffle codes
	InsufficientPayment       Code = 200001
	RaffleNotOpen             Code = 200002
	UpkeepNotNeeded           Code = 200003
	UnknownRequest            Code = 200004
	OnlyCoordinatorCanFulfill Code = 200005
	PayoutTransferFailed      Code = 200006
	OutOfRange                Code = 200007
	RaffleNotCalculating      Code = 200008
	GracePeriodNotElapsed     Code = 200009
	NotOperator               Code = 200010
	EmptyRandomWords          Code = 200011
)
