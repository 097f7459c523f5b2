package errorx

import "fmt"

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

// ErrorCode lets the go-ethereum rpc server report the code to callers.
func (e Error) ErrorCode() int {
	return int(e.Code)
}

// Is matches errors by code, so a formatted error still matches its sentinel.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}

	return t.Code == e.Code
}

// Coder is any error carrying a code, errorx.Error and richer domain errors
// alike.
type Coder interface {
	error
	ErrorCode() int
}
