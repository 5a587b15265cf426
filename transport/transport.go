// Package transport provides blocking byte-stream transports over TCP and
// Unix domain sockets behind one interface.
//
// Every operation is a single synchronous call on the caller's goroutine;
// there is no internal timeout or cancellation. The only way to abort an
// in-flight blocking call is to Close the handle from another goroutine,
// which races with the OS in platform-dependent ways and must not be relied
// on for deterministic cancellation. A handle is not safe for concurrent
// use without external locking; distinct handles share no state.
package transport

import (
	"fmt"

	httperrors "github.com/warrenjitsing/LinkedInArticles-sub001/errors"
)

// Transport defines the interface for network I/O operations.
// Implementations include TCP and Unix domain sockets, each in a plain
// blocking flavor and an io_uring flavor.
type Transport interface {
	// Connect establishes a connection to the specified host and port.
	// For Unix sockets, the host parameter is the socket path and port is ignored.
	Connect(host string, port uint16) error

	// Write performs one underlying write attempt and returns the number of
	// bytes accepted, which may be less than len(buf). The caller loops.
	Write(buf []byte) (int, error)

	// Read performs one underlying read attempt into buf and returns the
	// number of bytes received, which may be less than len(buf).
	Read(buf []byte) (int, error)

	// Close releases the underlying OS resource. Idempotent.
	Close() error
}

// Kind tags a transport variant for configuration-driven selection.
type Kind int

const (
	KindTcp Kind = iota
	KindUnix
	KindTcpUring
	KindUnixUring
)

func (k Kind) String() string {
	switch k {
	case KindTcp:
		return "tcp"
	case KindUnix:
		return "unix"
	case KindTcpUring:
		return "tcp-uring"
	case KindUnixUring:
		return "unix-uring"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// ParseKind maps a configuration string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "tcp":
		return KindTcp, nil
	case "unix":
		return KindUnix, nil
	case "tcp-uring":
		return KindTcpUring, nil
	case "unix-uring":
		return KindUnixUring, nil
	default:
		return 0, fmt.Errorf("unknown transport kind %q", s)
	}
}

// New creates an unconnected transport of the given kind. The uring kinds
// can fail when the kernel rejects ring setup.
func New(kind Kind) (Transport, error) {
	switch kind {
	case KindTcp:
		return NewTcpTransport(), nil
	case KindUnix:
		return NewUnixTransport(), nil
	case KindTcpUring:
		t, err := NewTcpUringTransport()
		if err != nil {
			return nil, err
		}
		return t, nil
	case KindUnixUring:
		t, err := NewUnixUringTransport()
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, httperrors.NewTransportError(httperrors.SocketCreateFailure,
			fmt.Errorf("unknown transport kind %d", kind))
	}
}
