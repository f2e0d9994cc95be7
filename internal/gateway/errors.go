package gateway

import "errors"

type ErrorCode string

const (
	ErrorTransport    ErrorCode = "transport"
	ErrorTimeout      ErrorCode = "timeout"
	ErrorDomain       ErrorCode = "domain"
	ErrorUnauthorized ErrorCode = "unauthorized"
	ErrorDecode       ErrorCode = "decode"
)

// CallError is the single error type crossing the gateway boundary. Domain
// errors carry the server's message verbatim.
type CallError struct {
	Code    ErrorCode
	Concept string
	Action  string
	Message string
}

func (e *CallError) Error() string {
	return e.Concept + "/" + e.Action + ": " + e.Message
}

func NewTransportError(concept, action, msg string) error {
	return &CallError{Code: ErrorTransport, Concept: concept, Action: action, Message: msg}
}

func NewTimeoutError(concept, action string) error {
	return &CallError{Code: ErrorTimeout, Concept: concept, Action: action, Message: "request timed out"}
}

func NewDomainError(concept, action, msg string) error {
	return &CallError{Code: ErrorDomain, Concept: concept, Action: action, Message: msg}
}

func NewUnauthorizedError(concept, action, msg string) error {
	return &CallError{Code: ErrorUnauthorized, Concept: concept, Action: action, Message: msg}
}

func NewDecodeError(concept, action, msg string) error {
	return &CallError{Code: ErrorDecode, Concept: concept, Action: action, Message: msg}
}

func AsCallError(err error) (*CallError, bool) {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsTimeout reports whether err is a slow-network timeout. Timeouts never
// invalidate the local session.
func IsTimeout(err error) bool {
	ce, ok := AsCallError(err)
	return ok && ce.Code == ErrorTimeout
}

func IsUnauthorized(err error) bool {
	ce, ok := AsCallError(err)
	return ok && ce.Code == ErrorUnauthorized
}

// IsDomain reports whether err is a rejection the server expressed as an
// {error: ...} payload on a 2xx response.
func IsDomain(err error) bool {
	ce, ok := AsCallError(err)
	return ok && ce.Code == ErrorDomain
}

func IsDecode(err error) bool {
	ce, ok := AsCallError(err)
	return ok && ce.Code == ErrorDecode
}
