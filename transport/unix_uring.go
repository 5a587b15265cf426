package transport

import (
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/iceber/iouring-go"
	"github.com/rs/zerolog"

	httperrors "github.com/warrenjitsing/LinkedInArticles-sub001/errors"
)

// UnixUringTransport implements the Transport interface over a Unix domain
// stream socket with read/write submitted through io_uring. Connect stays
// a plain blocking syscall; ring support for AF_UNIX connect is spotty
// across kernel versions.
type UnixUringTransport struct {
	iour   *iouring.IOURing
	fd     int
	connID string
	log    zerolog.Logger
}

// NewUnixUringTransport creates a new unconnected transport with its own
// ring. Ring setup can be rejected by the kernel.
func NewUnixUringTransport() (*UnixUringTransport, error) {
	iour, err := iouring.New(uringQueueDepth)
	if err != nil {
		return nil, httperrors.NewTransportError(httperrors.SocketCreateFailure, err)
	}

	t := &UnixUringTransport{
		iour: iour,
		fd:   -1,
		log:  zerolog.Nop(),
	}
	runtime.SetFinalizer(t, func(t *UnixUringTransport) {
		if t.fd >= 0 {
			syscall.Close(t.fd)
		}
		if t.iour != nil {
			t.iour.Close()
		}
	})
	return t, nil
}

// SetLogger attaches a logger to the transport. The default is a no-op.
func (t *UnixUringTransport) SetLogger(log zerolog.Logger) {
	t.log = log
}

// Connect establishes a connection to the socket at path. The port
// parameter exists for interface uniformity and is ignored. Paths longer
// than 107 bytes are truncated to fit sun_path.
func (t *UnixUringTransport) Connect(path string, port uint16) error {
	_ = port

	if t.fd >= 0 {
		return httperrors.NewTransportError(httperrors.SocketConnectFailure, nil)
	}

	fd, err := syscall.Socket(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		return httperrors.NewTransportError(httperrors.SocketCreateFailure, err)
	}

	if len(path) > maxUnixPathLen {
		path = path[:maxUnixPathLen]
	}

	sa := &syscall.SockaddrUnix{Name: path}
	if err := syscall.Connect(fd, sa); err != nil {
		syscall.Close(fd)
		return httperrors.NewTransportError(httperrors.SocketConnectFailure, err)
	}

	t.fd = fd
	t.connID = uuid.NewString()
	t.log.Debug().
		Str("conn_id", t.connID).
		Str("path", path).
		Msg("unix uring transport connected")
	return nil
}

// Write submits a single send and returns the number of bytes accepted.
func (t *UnixUringTransport) Write(buf []byte) (int, error) {
	if t.fd < 0 {
		return 0, httperrors.NewTransportError(httperrors.SocketWriteFailure, nil)
	}
	if len(buf) == 0 {
		return 0, nil
	}

	ch := make(chan iouring.Result, 1)
	if _, err := t.iour.SubmitRequest(iouring.Write(t.fd, buf), ch); err != nil {
		return 0, httperrors.NewTransportError(httperrors.SocketWriteFailure, err)
	}

	n, err := (<-ch).ReturnInt()
	if err != nil {
		if err == syscall.EPIPE || err == syscall.ECONNRESET {
			return 0, httperrors.NewTransportError(httperrors.ConnectionClosed, err)
		}
		return 0, httperrors.NewTransportError(httperrors.SocketWriteFailure, err)
	}

	return n, nil
}

// Read submits a single recv. Zero bytes into a non-empty buffer means
// the peer performed an orderly shutdown.
func (t *UnixUringTransport) Read(buf []byte) (int, error) {
	if t.fd < 0 {
		return 0, httperrors.NewTransportError(httperrors.SocketReadFailure, nil)
	}

	ch := make(chan iouring.Result, 1)
	if _, err := t.iour.SubmitRequest(iouring.Read(t.fd, buf), ch); err != nil {
		return 0, httperrors.NewTransportError(httperrors.SocketReadFailure, err)
	}

	n, err := (<-ch).ReturnInt()
	if err != nil {
		return 0, httperrors.NewTransportError(httperrors.SocketReadFailure, err)
	}

	if n == 0 && len(buf) > 0 {
		return 0, httperrors.NewTransportError(httperrors.ConnectionClosed, nil)
	}

	return n, nil
}

// Close invalidates the descriptor unconditionally but keeps the ring for
// a later reconnect.
func (t *UnixUringTransport) Close() error {
	if t.fd < 0 {
		return nil // Idempotent close
	}

	err := syscall.Close(t.fd)
	t.fd = -1

	if err != nil {
		return httperrors.NewTransportError(httperrors.SocketCloseFailure, err)
	}

	t.log.Debug().Str("conn_id", t.connID).Msg("unix uring transport closed")
	return nil
}

// Destroy closes the connection and tears down the io_uring instance.
// The transport is unusable afterward.
func (t *UnixUringTransport) Destroy() {
	t.Close()
	if t.iour != nil {
		t.iour.Close()
		t.iour = nil
	}
	runtime.SetFinalizer(t, nil)
}
