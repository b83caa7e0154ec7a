package errs

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/withstack"
)

// PublicError is an error that, when caught by error handler, should return a user-friendly error response to the user. Responses vary between each protocol (http, grpc, etc.).
type PublicError struct {
	err     error
	message string
	code    string // code is optional, it can be used to identify the error type
}

func (p PublicError) Error() string {
	return p.err.Error()
}

func (p PublicError) Message() string {
	return p.message
}

func (p PublicError) Code() string {
	return p.code
}

func (p PublicError) Unwrap() error {
	return p.err
}

func NewPublicError(message string) error {
	return withstack.WithStackDepth(&PublicError{err: errors.New(message), message: message}, 1)
}

func NewPublicErrorWithCode(message string, code string) error {
	return withstack.WithStackDepth(&PublicError{err: errors.New(message), message: message, code: code}, 1)
}

// WithPublicMessage marks err as safe to show to the caller, prefixed by the given message.
func WithPublicMessage(err error, prefix string) error {
	return withPublicMessage(err, prefix, "")
}

// WithPublicMessageCode is like WithPublicMessage and also attaches a machine readable code.
func WithPublicMessageCode(err error, prefix string, code string) error {
	return withPublicMessage(err, prefix, code)
}

func withPublicMessage(err error, prefix string, code string) error {
	if err == nil {
		return nil
	}
	message := err.Error()
	if prefix != "" {
		message = fmt.Sprintf("%s: %s", prefix, message)
	}
	return withstack.WithStackDepth(&PublicError{err: err, message: message, code: code}, 2)
}
