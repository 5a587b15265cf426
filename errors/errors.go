package errors

import "fmt"

// TransportError identifies a transport-layer failure. The set is closed:
// every fallible transport operation reports exactly one of these kinds.
type TransportError int

const (
	DnsFailure TransportError = iota
	SocketCreateFailure
	SocketConnectFailure
	SocketCloseFailure
	SocketReadFailure
	SocketWriteFailure
	ConnectionClosed
)

func (e TransportError) Error() string {
	switch e {
	case DnsFailure:
		return "DNS lookup failed"
	case SocketCreateFailure:
		return "Socket creation failed"
	case SocketConnectFailure:
		return "Socket connection failed"
	case SocketCloseFailure:
		return "Socket close failed"
	case SocketReadFailure:
		return "Socket read failed"
	case SocketWriteFailure:
		return "Socket write failed"
	case ConnectionClosed:
		return "Connection closed"
	default:
		return fmt.Sprintf("Unknown transport error: %d", e)
	}
}

// HttpClientError represents errors that occur at the HTTP protocol layer
type HttpClientError int

const (
	UrlParseFailure HttpClientError = iota
	HttpParseFailure
	InvalidRequest
	IncompleteResponse
)

func (e HttpClientError) Error() string {
	switch e {
	case UrlParseFailure:
		return "URL parsing failed"
	case HttpParseFailure:
		return "HTTP parsing failed"
	case InvalidRequest:
		return "Invalid HTTP request"
	case IncompleteResponse:
		return "Incomplete HTTP response"
	default:
		return fmt.Sprintf("Unknown HTTP client error: %d", e)
	}
}

// Error is the top-level error type that wraps transport and HTTP errors.
// The kind stays flat for simple matching; the underlying OS error is
// retained for diagnostics and reachable through Unwrap.
type Error struct {
	TransportErr *TransportError
	HttpErr      *HttpClientError
	underlying   error
}

func (e *Error) Error() string {
	if e.TransportErr != nil {
		if e.underlying != nil {
			return fmt.Sprintf("Transport Error: %s (underlying: %v)", e.TransportErr.Error(), e.underlying)
		}
		return fmt.Sprintf("Transport Error: %s", e.TransportErr.Error())
	}
	if e.HttpErr != nil {
		if e.underlying != nil {
			return fmt.Sprintf("HTTP Client Error: %s (underlying: %v)", e.HttpErr.Error(), e.underlying)
		}
		return fmt.Sprintf("HTTP Client Error: %s", e.HttpErr.Error())
	}
	if e.underlying != nil {
		return e.underlying.Error()
	}
	return "Unknown error"
}

func (e *Error) Unwrap() error {
	return e.underlying
}

// Is lets errors.Is match a wrapped error against a bare kind, e.g.
// errors.Is(err, httperrors.ConnectionClosed).
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case TransportError:
		return e.TransportErr != nil && *e.TransportErr == t
	case HttpClientError:
		return e.HttpErr != nil && *e.HttpErr == t
	}
	return false
}

// NewTransportError creates a new Error with a TransportError
func NewTransportError(te TransportError, underlying error) *Error {
	return &Error{
		TransportErr: &te,
		underlying:   underlying,
	}
}

// NewHttpError creates a new Error with an HttpClientError
func NewHttpError(he HttpClientError, underlying error) *Error {
	return &Error{
		HttpErr:    &he,
		underlying: underlying,
	}
}
