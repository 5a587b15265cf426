package transport

import (
	"net"
	"runtime"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	httperrors "github.com/warrenjitsing/LinkedInArticles-sub001/errors"
)

// TcpTransport implements the Transport interface over a raw TCP socket.
// The file descriptor is exclusively owned by the handle; -1 means
// unconnected or closed.
type TcpTransport struct {
	fd     int
	connID string
	log    zerolog.Logger
}

// NewTcpTransport creates a new unconnected TcpTransport.
func NewTcpTransport() *TcpTransport {
	t := &TcpTransport{
		fd:  -1,
		log: zerolog.Nop(),
	}
	// Safety net for handles dropped while still connected. Close errors
	// cannot be reported to anyone here and are discarded.
	runtime.SetFinalizer(t, func(t *TcpTransport) {
		if t.fd >= 0 {
			unix.Close(t.fd)
		}
	})
	return t
}

// SetLogger attaches a logger to the transport. The default is a no-op.
func (t *TcpTransport) SetLogger(log zerolog.Logger) {
	t.log = log
}

// Connect resolves host and connects to the first reachable endpoint,
// then disables Nagle's algorithm for lower per-write latency.
//
// Resolution failure leaves the handle unconnected and reusable: a later
// Connect on the same handle may still succeed.
func (t *TcpTransport) Connect(host string, port uint16) error {
	if t.fd >= 0 {
		return httperrors.NewTransportError(httperrors.SocketConnectFailure, nil)
	}

	ips, err := net.LookupIP(host)
	if err != nil || len(ips) == 0 {
		return httperrors.NewTransportError(httperrors.DnsFailure, err)
	}

	// Try each candidate in resolver order, closing the previous attempt's
	// socket before the next one. Kept as an explicit loop rather than a
	// bulk-connect helper so no intermediate socket survives a failed
	// attempt.
	fd := -1
	var lastErr error
	for _, ip := range ips {
		if fd >= 0 {
			unix.Close(fd)
			fd = -1
		}

		var (
			domain int
			sa     unix.Sockaddr
		)
		if ip4 := ip.To4(); ip4 != nil {
			sa4 := &unix.SockaddrInet4{Port: int(port)}
			copy(sa4.Addr[:], ip4)
			domain, sa = unix.AF_INET, sa4
		} else {
			sa6 := &unix.SockaddrInet6{Port: int(port)}
			copy(sa6.Addr[:], ip.To16())
			domain, sa = unix.AF_INET6, sa6
		}

		fd, err = unix.Socket(domain, unix.SOCK_STREAM, 0)
		if err != nil {
			lastErr = err
			fd = -1
			continue
		}

		if err = unix.Connect(fd, sa); err != nil {
			lastErr = err
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil || fd < 0 {
		if fd >= 0 {
			unix.Close(fd)
		}
		return httperrors.NewTransportError(httperrors.SocketConnectFailure, lastErr)
	}

	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		// The connection is useless without its configuration; a failed
		// close on top of that means a descriptor may be leaked, which
		// takes reporting priority.
		if cerr := unix.Close(fd); cerr != nil {
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
		Msg("tcp transport connected")
	return nil
}

// Write performs a single write attempt. A zero-length buffer succeeds
// without touching the socket.
func (t *TcpTransport) Write(buf []byte) (int, error) {
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
func (t *TcpTransport) Read(buf []byte) (int, error) {
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

// Close releases the socket. The handle is treated as closed afterward
// even if the OS call failed.
func (t *TcpTransport) Close() error {
	if t.fd < 0 {
		return nil // Idempotent close
	}

	err := unix.Close(t.fd)
	t.fd = -1

	if err != nil {
		return httperrors.NewTransportError(httperrors.SocketCloseFailure, err)
	}

	t.log.Debug().Str("conn_id", t.connID).Msg("tcp transport closed")
	return nil
}
