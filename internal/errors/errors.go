package errors

// PrismaError is a sentinel error carrying a stable code (in the P-series
// numbering the donor query engine uses) plus an optional wrapped cause.
type PrismaError struct {
	Code    string
	Message string
	cause   error
}

func (e *PrismaError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *PrismaError) Unwrap() error {
	return e.cause
}

func (e *PrismaError) Is(target error) bool {
	if t, ok := target.(*PrismaError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewPrismaError constructs a PrismaError directly.
func NewPrismaError(code, message string, cause error) *PrismaError {
	return &PrismaError{Code: code, Message: message, cause: cause}
}

// WrapPrismaError attaches cause to sentinel's code and message, producing
// a new PrismaError that still compares equal to sentinel via Is.
func WrapPrismaError(sentinel *PrismaError, cause error) *PrismaError {
	return &PrismaError{Code: sentinel.Code, Message: sentinel.Message, cause: cause}
}
