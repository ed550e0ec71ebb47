package factory

import "fmt"

// ErrorKind classifies feed provisioning failures.
type ErrorKind string

const (
	// ConfigError is bad or missing input (no jobs defined, unsupported
	// provider). Fatal to that feed only, never retried.
	ConfigError ErrorKind = "ConfigError"

	// SwitchboardError is a failed ledger call. Retried at whole-feed
	// granularity up to the retry budget.
	SwitchboardError ErrorKind = "SwitchboardError"

	// VerifyError is a post-creation state mismatch. Retried like
	// SwitchboardError.
	VerifyError ErrorKind = "VerifyError"

	// JsonInputError is a malformed or duplicate source record. Fatal to
	// the whole batch, surfaced before any provisioning starts.
	JsonInputError ErrorKind = "JsonInputError"
)

// Error is a classified provisioning failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	var wrapped error
	for _, a := range args {
		if err, ok := a.(error); ok {
			wrapped = err
		}
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: wrapped}
}
