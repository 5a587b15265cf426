package transport

import (
	"net"
	"testing"
	"time"

	httperrors "github.com/warrenjitsing/LinkedInArticles-sub001/errors"
)

func newTcpUringOrSkip(t *testing.T) *TcpUringTransport {
	t.Helper()

	tr, err := NewTcpUringTransport()
	if err != nil {
		t.Skipf("io_uring unavailable: %v", err)
	}
	return tr
}

func newUnixUringOrSkip(t *testing.T) *UnixUringTransport {
	t.Helper()

	tr, err := NewUnixUringTransport()
	if err != nil {
		t.Skipf("io_uring unavailable: %v", err)
	}
	return tr
}

func TestTcpUringTransport_Roundtrip(t *testing.T) {
	message := "hello uring"
	received := make(chan string, 1)

	host, port, cleanup := setupTcpTestServer(t, func(conn net.Conn) {
		buf := make([]byte, 1024)
		n, _ := conn.Read(buf)
		received <- string(buf[:n])
		conn.Write(buf[:n])
	})
	defer cleanup()

	tr := newTcpUringOrSkip(t)
	defer tr.Destroy()

	if err := tr.Connect(host, port); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	n, err := tr.Write([]byte(message))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(message) {
		t.Errorf("Expected to write %d bytes, wrote %d", len(message), n)
	}

	select {
	case msg := <-received:
		if msg != message {
			t.Errorf("Expected %q, got %q", message, msg)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for message")
	}

	buf := make([]byte, 1024)
	n, err = tr.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf[:n]) != message {
		t.Errorf("Expected echo %q, got %q", message, string(buf[:n]))
	}
}

func TestTcpUringTransport_Connect_Failure_DnsError(t *testing.T) {
	tr := newTcpUringOrSkip(t)
	defer tr.Destroy()

	err := tr.Connect("this-is-not-a-real-domain.invalid", 80)
	expectTransportError(t, err, httperrors.DnsFailure)
}

func TestTcpUringTransport_Write_Failure_NoConnection(t *testing.T) {
	tr := newTcpUringOrSkip(t)
	defer tr.Destroy()

	_, err := tr.Write([]byte("test"))
	expectTransportError(t, err, httperrors.SocketWriteFailure)
}

func TestUnixUringTransport_Roundtrip(t *testing.T) {
	message := "hello unix uring"

	path, cleanup := setupUnixTestServer(t, func(conn net.Conn) {
		buf := make([]byte, 1024)
		n, _ := conn.Read(buf)
		conn.Write(buf[:n])
	})
	defer cleanup()

	tr := newUnixUringOrSkip(t)
	defer tr.Destroy()

	if err := tr.Connect(path, 0); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if _, err := tr.Write([]byte(message)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	buf := make([]byte, 1024)
	n, err := tr.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf[:n]) != message {
		t.Errorf("Expected echo %q, got %q", message, string(buf[:n]))
	}
}

func TestUnixUringTransport_Read_Failure_ConnectionClosed(t *testing.T) {
	path, cleanup := setupUnixTestServer(t, func(conn net.Conn) {})
	defer cleanup()

	tr := newUnixUringOrSkip(t)
	defer tr.Destroy()

	if err := tr.Connect(path, 0); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	buf := make([]byte, 1024)
	_, err := tr.Read(buf)
	expectTransportError(t, err, httperrors.ConnectionClosed)
}

func TestUnixUringTransport_Close_Idempotent(t *testing.T) {
	path, cleanup := setupUnixTestServer(t, func(conn net.Conn) {})
	defer cleanup()

	tr := newUnixUringOrSkip(t)
	defer tr.Destroy()

	if err := tr.Connect(path, 0); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if err := tr.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}
