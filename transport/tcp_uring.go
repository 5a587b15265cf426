package transport

import (
	"net"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/iceber/iouring-go"
	"github.com/rs/zerolog"

	httperrors "github.com/warrenjitsing/LinkedInArticles-sub001/errors"
)

// uringQueueDepth is the submission queue size for the single-connection
// transports; one in-flight operation at a time needs very little.
const uringQueueDepth = 32

// TcpUringTransport implements the Transport interface over a TCP socket
// with all I/O submitted through io_uring. The contract is the same as
// TcpTransport: blocking single-attempt operations, caller loops.
type TcpUringTransport struct {
	iour   *iouring.IOURing
	fd     int
	connID string
	log    zerolog.Logger
}

// NewTcpUringTransport creates a new unconnected transport with its own
// ring. Ring setup can be rejected by the kernel.
func NewTcpUringTransport() (*TcpUringTransport, error) {
	iour, err := iouring.New(uringQueueDepth)
	if err != nil {
		return nil, httperrors.NewTransportError(httperrors.SocketCreateFailure, err)
	}

	t := &TcpUringTransport{
		iour: iour,
		fd:   -1,
		log:  zerolog.Nop(),
	}
	runtime.SetFinalizer(t, func(t *TcpUringTransport) {
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
func (t *TcpUringTransport) SetLogger(log zerolog.Logger) {
	t.log = log
}

// Connect resolves host and connects to the first reachable endpoint via
// a ring-submitted connect, then disables Nagle's algorithm.
func (t *TcpUringTransport) Connect(host string, port uint16) error {
	if t.fd >= 0 {
		return httperrors.NewTransportError(httperrors.SocketConnectFailure, nil)
	}

	ips, err := net.LookupIP(host)
	if err != nil || len(ips) == 0 {
		return httperrors.NewTransportError(httperrors.DnsFailure, err)
	}

	// Same explicit candidate loop as the blocking variant: close the
	// previous attempt's socket before trying the next endpoint.
	fd := -1
	var lastErr error
	for _, ip := range ips {
		if fd >= 0 {
			syscall.Close(fd)
			fd = -1
		}

		var (
			domain int
			sa     syscall.Sockaddr
		)
		if ip4 := ip.To4(); ip4 != nil {
			sa4 := &syscall.SockaddrInet4{Port: int(port)}
			copy(sa4.Addr[:], ip4)
			domain, sa = syscall.AF_INET, sa4
		} else {
			sa6 := &syscall.SockaddrInet6{Port: int(port)}
			copy(sa6.Addr[:], ip.To16())
			domain, sa = syscall.AF_INET6, sa6
		}

		fd, err = syscall.Socket(domain, syscall.SOCK_STREAM, 0)
		if err != nil {
			lastErr = err
			fd = -1
			continue
		}

		ch := make(chan iouring.Result, 1)
		prep, err := iouring.Connect(fd, sa)
		if err != nil {
			lastErr = err
			continue
		}
		if _, err = t.iour.SubmitRequest(prep, ch); err != nil {
			lastErr = err
			continue
		}
		if err = (<-ch).Err(); err != nil {
			lastErr = err
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil || fd < 0 {
		if fd >= 0 {
			syscall.Close(fd)
		}
		return httperrors.NewTransportError(httperrors.SocketConnectFailure, lastErr)
	}

	if err := syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1); err != nil {
		if cerr := syscall.Close(fd); cerr != nil {
			return httperrors.NewTransportError(httperrors.SocketCloseFailure, cerr)
		}
		return httperrors.NewTransportError(httperrors.SocketConnectFailure, err)
	}

	t.fd = fd
	t.connID = uuid.NewString()
	t.log.Debug().
		Str("conn_id", t.connID).
		Str("host", host).
		Uint16("port", port).
		Msg("tcp uring transport connected")
	return nil
}

// Write submits a single send and returns the number of bytes accepted.
func (t *TcpUringTransport) Write(buf []byte) (int, error) {
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
func (t *TcpUringTransport) Read(buf []byte) (int, error) {
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

// Close releases the socket but keeps the ring for a later reconnect.
func (t *TcpUringTransport) Close() error {
	if t.fd < 0 {
		return nil // Idempotent close
	}

	err := syscall.Close(t.fd)
	t.fd = -1

	if err != nil {
		return httperrors.NewTransportError(httperrors.SocketCloseFailure, err)
	}

	t.log.Debug().Str("conn_id", t.connID).Msg("tcp uring transport closed")
	return nil
}

// Destroy closes the connection and tears down the io_uring instance.
// The transport is unusable afterward.
func (t *TcpUringTransport) Destroy() {
	t.Close()
	if t.iour != nil {
		t.iour.Close()
		t.iour = nil
	}
	runtime.SetFinalizer(t, nil)
}
