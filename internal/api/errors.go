package api

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks failures caused by the uploaded form rather than
// the server.
var ErrInvalidRequest = errors.New("invalid request")

// formError is a client-side failure. Field names the offending form field
// when there is one.
type formError struct {
	field string
	msg   string
}

func (e *formError) Error() string {
	if e.field == "" {
		return e.msg
	}
	return e.field + ": " + e.msg
}

func (e *formError) Unwrap() error { return ErrInvalidRequest }

func badForm(field, format string, args ...any) error {
	return &formError{field: field, msg: fmt.Sprintf(format, args...)}
}

// fieldOf returns the form field recorded on err, if any.
func fieldOf(err error) string {
	var fe *formError
	if errors.As(err, &fe) {
		return fe.field
	}
	return ""
}
