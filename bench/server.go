package bench

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// Server is the throwaway accept loop the load generator talks to. It
// deliberately uses net.Listen directly instead of the transport
// abstraction so it can exercise the client side from the outside.
type Server struct {
	network      string // "tcp" or "unix"
	address      string // host:port or socket path
	responseSize int
	log          zerolog.Logger

	listener net.Listener
	wg       sync.WaitGroup
}

// NewServer creates a bench server serving canned responses with bodies
// of responseSize bytes.
func NewServer(network, address string, responseSize int) *Server {
	return &Server{
		network:      network,
		address:      address,
		responseSize: responseSize,
		log:          zerolog.Nop(),
	}
}

// SetLogger attaches a logger to the server. The default is a no-op.
func (s *Server) SetLogger(log zerolog.Logger) {
	s.log = log
}

// Listen binds the listener. Addr is valid after Listen returns.
func (s *Server) Listen() error {
	listener, err := net.Listen(s.network, s.address)
	if err != nil {
		return fmt.Errorf("bench server listen: %w", err)
	}
	s.listener = listener
	s.log.Info().
		Str("network", s.network).
		Str("address", listener.Addr().String()).
		Msg("bench server listening")
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled, answering every
// request on each connection with the canned response. It returns after
// all connection handlers have drained.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	// Closing the listener unblocks Accept when the context ends.
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	body := MakePayload(s.responseSize)
	response := buildCannedResponse(body)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.log.Warn().Err(err).Msg("accept failed")
			break
		}

		s.wg.Add(1)
		go func(conn net.Conn) {
			defer s.wg.Done()
			defer conn.Close()
			s.serveConn(conn, response)
		}(conn)
	}

	s.wg.Wait()
	return nil
}

// serveConn answers requests until the client goes away. Request framing
// is headers up to the blank line plus a Content-Length body.
func (s *Server) serveConn(conn net.Conn, response []byte) {
	var pending []byte
	readBuf := make([]byte, 4096)

	for {
		headerEnd := bytes.Index(pending, []byte("\r\n\r\n"))
		for headerEnd < 0 {
			n, err := conn.Read(readBuf)
			if err != nil {
				return
			}
			pending = append(pending, readBuf[:n]...)
			headerEnd = bytes.Index(pending, []byte("\r\n\r\n"))
		}

		bodyLen := parseRequestContentLength(pending[:headerEnd])
		total := headerEnd + 4 + bodyLen
		for len(pending) < total {
			n, err := conn.Read(readBuf)
			if err != nil {
				return
			}
			pending = append(pending, readBuf[:n]...)
		}
		pending = pending[total:]

		if _, err := conn.Write(response); err != nil {
			return
		}
	}
}

func buildCannedResponse(body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("HTTP/1.1 200 OK\r\n")
	buf.WriteString("Content-Length: ")
	buf.WriteString(strconv.Itoa(len(body)))
	buf.WriteString("\r\n\r\n")
	buf.Write(body)
	return buf.Bytes()
}

func parseRequestContentLength(headers []byte) int {
	for _, line := range bytes.Split(headers, []byte("\r\n")) {
		if !bytes.HasPrefix(bytes.ToLower(line), []byte("content-length:")) {
			continue
		}
		parts := bytes.SplitN(line, []byte(":"), 2)
		if len(parts) != 2 {
			continue
		}
		if n, err := strconv.Atoi(string(bytes.TrimSpace(parts[1]))); err == nil {
			return n
		}
	}
	return 0
}
