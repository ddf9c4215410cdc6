package queryerr

import "errors"

// Error is a classified search failure: a code plus a detail string.
// It is created at the point of failure and consumed by the reply path
// and the error statistics registry.
type Error struct {
	code   Code
	detail string
}

// Code returns the error category.
func (e *Error) Code() Code { return e.code }

// Detail returns the human-readable part of the message. It never
// returns an empty string.
func (e *Error) Detail() string {
	if e.detail == "" {
		return e.code.Message()
	}
	return e.detail
}

// Error renders "<CODE>: <detail>".
func (e *Error) Error() string {
	return e.code.Name() + ": " + e.Detail()
}

// Redacted renders the code with its default message only, dropping any
// user-supplied names from the detail.
func (e *Error) Redacted() string {
	return e.code.Name() + ": " + e.code.Message()
}

// Is matches another *Error of the same category.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.code.Name() == e.code.Name()
}

// Category sentinels for errors.Is checks.
var (
	ErrIndexNotFound = &Error{code: NoIndex}
	ErrIndexExists   = &Error{code: IndexExists}
	ErrParseArgs     = &Error{code: ParseArgs}
)

// CodeOf extracts the code from err. A nil error is OK; an error that was
// never classified reports Generic.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var qe *Error
	if errors.As(err, &qe) {
		return qe.code
	}
	return Generic
}
