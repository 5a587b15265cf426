package bench

import (
	"context"
	"fmt"
	"net"
	"os"
	"testing"
	"time"
)

func startBenchServer(t *testing.T, network, address string, responseSize int) (net.Addr, func()) {
	t.Helper()

	srv := NewServer(network, address, responseSize)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Failed to start bench server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Serve(ctx)
		close(done)
	}()

	cleanup := func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("bench server did not shut down")
		}
	}

	return srv.Addr(), cleanup
}

func TestRunner_Tcp(t *testing.T) {
	addr, cleanup := startBenchServer(t, "tcp", "127.0.0.1:0", 256)
	defer cleanup()

	tcpAddr := addr.(*net.TCPAddr)
	scenario := &Scenario{
		Transport:    "tcp",
		Host:         tcpAddr.IP.String(),
		Port:         uint16(tcpAddr.Port),
		Connections:  2,
		Requests:     10,
		PayloadSize:  64,
		ResponseSize: 256,
	}
	if err := scenario.Validate(); err != nil {
		t.Fatalf("Scenario invalid: %v", err)
	}

	runner := NewRunner(scenario)
	elapsed, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if elapsed <= 0 {
		t.Error("Expected positive elapsed time")
	}

	counters := runner.Counters()
	if got, want := counters.Requests(), int64(20); got != want {
		t.Errorf("Expected %d requests, got %d (errors: %d)", want, got, counters.Errors())
	}
	if counters.Errors() != 0 {
		t.Errorf("Expected no errors, got %d", counters.Errors())
	}
	if got, want := counters.BytesRead(), int64(20*256); got != want {
		t.Errorf("Expected %d bytes read, got %d", want, got)
	}
	if got, want := counters.BytesWritten(), int64(20*64); got != want {
		t.Errorf("Expected %d bytes written, got %d", want, got)
	}
}

func TestRunner_Unix(t *testing.T) {
	socketPath := fmt.Sprintf("/tmp/httpbench_test_%d.sock", os.Getpid())
	os.Remove(socketPath)
	defer os.Remove(socketPath)

	_, cleanup := startBenchServer(t, "unix", socketPath, 128)
	defer cleanup()

	scenario := &Scenario{
		Transport:    "unix",
		SocketPath:   socketPath,
		Connections:  1,
		Requests:     5,
		PayloadSize:  32,
		ResponseSize: 128,
	}
	if err := scenario.Validate(); err != nil {
		t.Fatalf("Scenario invalid: %v", err)
	}

	runner := NewRunner(scenario)
	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	counters := runner.Counters()
	if got, want := counters.Requests(), int64(5); got != want {
		t.Errorf("Expected %d requests, got %d (errors: %d)", want, got, counters.Errors())
	}
	if counters.MeanLatency() <= 0 {
		t.Error("Expected positive mean latency")
	}
}

func TestRunner_GetWhenNoPayload(t *testing.T) {
	addr, cleanup := startBenchServer(t, "tcp", "127.0.0.1:0", 64)
	defer cleanup()

	tcpAddr := addr.(*net.TCPAddr)
	scenario := &Scenario{
		Transport:    "tcp",
		Host:         tcpAddr.IP.String(),
		Port:         uint16(tcpAddr.Port),
		Connections:  1,
		Requests:     3,
		PayloadSize:  0,
		ResponseSize: 64,
	}

	runner := NewRunner(scenario)
	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	counters := runner.Counters()
	if got, want := counters.Requests(), int64(3); got != want {
		t.Errorf("Expected %d requests, got %d (errors: %d)", want, got, counters.Errors())
	}
	if counters.BytesWritten() != 0 {
		t.Errorf("GET run should write no body bytes, wrote %d", counters.BytesWritten())
	}
}

func TestCounters_NilReceiver(t *testing.T) {
	var c *Counters

	c.RequestDone(1, 1, time.Millisecond)
	c.RequestFailed()

	if c.Requests() != 0 || c.Errors() != 0 || c.MeanLatency() != 0 {
		t.Error("nil Counters should report zeros")
	}
}
