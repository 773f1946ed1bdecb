package response

import "fmt"

// Business error codes
const (
	Fail             ResponseCode = 0
	ParseError       ResponseCode = 1
	InvalidParameter ResponseCode = 2
	Unauthorized     ResponseCode = 3
	Forbidden        ResponseCode = 4
	NotFound         ResponseCode = 5
	TooManyRequests  ResponseCode = 6

	// magic-link auth
	InvalidInput  ResponseCode = 10
	InvalidToken  ResponseCode = 11
	TokenExpired  ResponseCode = 12
	EmailMismatch ResponseCode = 13

	StorageError ResponseCode = 20
)

var codeNames = map[ResponseCode]string{
	Success:          "Success",
	Fail:             "Fail",
	ParseError:       "ParseError",
	InvalidParameter: "InvalidParameter",
	Unauthorized:     "Unauthenticated",
	Forbidden:        "Forbidden",
	NotFound:         "NotFound",
	TooManyRequests:  "TooManyRequests",
	InvalidInput:     "InvalidInput",
	InvalidToken:     "InvalidToken",
	TokenExpired:     "TokenExpired",
	EmailMismatch:    "EmailMismatch",
	StorageError:     "StorageError",
}

// String returns the wire name of the code, e.g. "TokenExpired".
func (c ResponseCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

type BusinessError struct {
	Code   ResponseCode
	Msg    string
	Err    error
	Status int // HTTP status; 0 means 200
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

type ErrorOption func(*BusinessError)

func WithErrorCode(code ResponseCode) ErrorOption {
	return func(be *BusinessError) {
		be.Code = code
	}
}

func WithErrorMessage(msg string) ErrorOption {
	return func(be *BusinessError) {
		be.Msg = msg
	}
}

func WithError(err error) ErrorOption {
	return func(be *BusinessError) {
		be.Err = err
	}
}

func WithHTTPStatus(status int) ErrorOption {
	return func(be *BusinessError) {
		be.Status = status
	}
}

func NewBusinessError(opts ...ErrorOption) *BusinessError {
	err := &BusinessError{
		Code: Fail,
		Msg:  "business error",
		Err:  nil,
	}
	for _, opt := range opts {
		opt(err)
	}
	return err
}
