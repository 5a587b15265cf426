package transport

import (
	"runtime"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	httperrors "github.com/warrenjitsing/LinkedInArticles-sub001/errors"
)

// maxUnixPathLen is the number of path bytes that fit in sun_path with a
// terminating NUL on Linux (sizeof(sun_path) == 108).
const maxUnixPathLen = 107

// UnixTransport implements the Transport interface over a Unix domain
// stream socket. The descriptor is exclusively owned by the handle; -1
// means unconnected or closed.
type UnixTransport struct {
	fd     int
	connID string
	log    zerolog.Logger
}

// NewUnixTransport creates a new unconnected UnixTransport.
func NewUnixTransport() *UnixTransport {
	t := &UnixTransport{
		fd:  -1,
		log: zerolog.Nop(),
	}
	// Safety net for handles dropped while still connected. Close errors
	// cannot be reported to anyone here and are discarded.
	runtime.SetFinalizer(t, func(t *UnixTransport) {
		if t.fd >= 0 {
			unix.Close(t.fd)
		}
	})
	return t
}

// SetLogger attaches a logger to the transport. The default is a no-op.
func (t *UnixTransport) SetLogger(log zerolog.Logger) {
	t.log = log
}

// Connect establishes a connection to the socket at path. The port
// parameter exists for interface uniformity and is ignored.
//
// Paths longer than 107 bytes are truncated to fit sun_path rather than
// rejected. Known precision loss: a too-long path silently connects to
// its 107-byte prefix.
func (t *UnixTransport) Connect(path string, port uint16) error {
	_ = port

	if t.fd >= 0 {
		return httperrors.NewTransportError(httperrors.SocketConnectFailure, nil)
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return httperrors.NewTransportError(httperrors.SocketCreateFailure, err)
	}

	if len(path) > maxUnixPathLen {
		path = path[:maxUnixPathLen]
	}

	sa := &unix.SockaddrUnix{Name: path}
	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return httperrors.NewTransportError(httperrors.SocketConnectFailure, err)
	}

	t.fd = fd
	t.connID = uuid.NewString()
	t.log.Debug().
		Str("conn_id", t.connID).
		Str("path", path).
		Msg("unix transport connected")
	return nil
}

// Write performs a single write attempt. A zero-length buffer succeeds
// without touching the socket.
func (t *UnixTransport) Write(buf []byte) (int, error) {
	if t.fd < 0 {
		return 0, httperrors.NewTransportError(httperrors.SocketWriteFailure, nil)
	}
	if len(buf) == 0 {
		return 0, nil
	}

	n, err := unix.Write(t.fd, buf)
	if err != nil {
		if err == unix.EPIPE || err == unix.ECONNRESET {
			return 0, httperrors.NewTransportError(httperrors.ConnectionClosed, err)
		}
		return 0, httperrors.NewTransportError(httperrors.SocketWriteFailure, err)
	}

	return n, nil
}

// Read performs a single read attempt. Zero bytes into a non-empty buffer
// means the peer performed an orderly shutdown.
func (t *UnixTransport) Read(buf []byte) (int, error) {
	if t.fd < 0 {
		return 0, httperrors.NewTransportError(httperrors.SocketReadFailure, nil)
	}

	n, err := unix.Read(t.fd, buf)
	if err != nil {
		return 0, httperrors.NewTransportError(httperrors.SocketReadFailure, err)
	}

	if n == 0 && len(buf) > 0 {
		return 0, httperrors.NewTransportError(httperrors.ConnectionClosed, nil)
	}

	return n, nil
}

// Close invalidates the descriptor unconditionally; an indeterminate
// descriptor must never be reused, so the handle is unconnected afterward
// even when the OS close call failed.
func (t *UnixTransport) Close() error {
	if t.fd < 0 {
		return nil // Idempotent close
	}

	err := unix.Close(t.fd)
	t.fd = -1

	if err != nil {
		return httperrors.NewTransportError(httperrors.SocketCloseFailure, err)
	}

	t.log.Debug().Str("conn_id", t.connID).Msg("unix transport closed")
	return nil
}
