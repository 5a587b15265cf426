package bench

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/warrenjitsing/LinkedInArticles-sub001/client"
	"github.com/warrenjitsing/LinkedInArticles-sub001/protocol"
	"github.com/warrenjitsing/LinkedInArticles-sub001/transport"
)

// Counters tracks runner statistics. All methods are safe for concurrent
// use, and a nil *Counters is a valid no-op receiver.
type Counters struct {
	requests     atomic.Int64
	errors       atomic.Int64
	bytesRead    atomic.Int64
	bytesWritten atomic.Int64
	latencyNanos atomic.Int64
}

// RequestDone records one completed request and its round-trip latency.
func (c *Counters) RequestDone(sent, received int, latency time.Duration) {
	if c == nil {
		return
	}
	c.requests.Add(1)
	c.bytesWritten.Add(int64(sent))
	c.bytesRead.Add(int64(received))
	c.latencyNanos.Add(int64(latency))
}

// RequestFailed records one failed request.
func (c *Counters) RequestFailed() {
	if c == nil {
		return
	}
	c.errors.Add(1)
}

// Requests returns the number of completed requests.
func (c *Counters) Requests() int64 {
	if c == nil {
		return 0
	}
	return c.requests.Load()
}

// Errors returns the number of failed requests.
func (c *Counters) Errors() int64 {
	if c == nil {
		return 0
	}
	return c.errors.Load()
}

// BytesRead returns the total response-body bytes received.
func (c *Counters) BytesRead() int64 {
	if c == nil {
		return 0
	}
	return c.bytesRead.Load()
}

// BytesWritten returns the total request-body bytes sent.
func (c *Counters) BytesWritten() int64 {
	if c == nil {
		return 0
	}
	return c.bytesWritten.Load()
}

// MeanLatency returns the mean round-trip latency over completed requests.
func (c *Counters) MeanLatency() time.Duration {
	if c == nil {
		return 0
	}
	n := c.requests.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(c.latencyNanos.Load() / n)
}

// Runner drives the HTTP client against a bench server according to a
// scenario.
type Runner struct {
	scenario *Scenario
	counters *Counters
	log      zerolog.Logger
}

// NewRunner creates a runner for the given validated scenario.
func NewRunner(s *Scenario) *Runner {
	return &Runner{
		scenario: s,
		counters: &Counters{},
		log:      zerolog.Nop(),
	}
}

// SetLogger attaches a logger to the runner. The default is a no-op.
func (r *Runner) SetLogger(log zerolog.Logger) {
	r.log = log
}

// Counters exposes the run statistics.
func (r *Runner) Counters() *Counters {
	return r.counters
}

// Run executes the scenario: Connections workers, each with its own
// transport handle, issuing Requests requests. It returns the wall-clock
// duration of the run; per-request failures are counted, not fatal.
func (r *Runner) Run(ctx context.Context) (time.Duration, error) {
	host, port := r.scenario.Target()
	payload := MakePayload(r.scenario.PayloadSize)

	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < r.scenario.Connections; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			if err := r.runWorker(ctx, host, port, payload); err != nil {
				r.log.Warn().Err(err).Int("worker", worker).Msg("worker aborted")
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(start)
	r.log.Info().
		Int64("requests", r.counters.Requests()).
		Int64("errors", r.counters.Errors()).
		Dur("elapsed", elapsed).
		Dur("mean_latency", r.counters.MeanLatency()).
		Msg("bench run complete")
	return elapsed, nil
}

// runWorker owns one transport handle for its whole lifetime.
func (r *Runner) runWorker(ctx context.Context, host string, port uint16, payload []byte) error {
	trans, err := transport.New(r.scenario.Kind())
	if err != nil {
		return fmt.Errorf("create transport: %w", err)
	}
	if d, ok := trans.(interface{ Destroy() }); ok {
		defer d.Destroy()
	}

	c := client.NewHttpClient(protocol.NewHttp1Protocol(trans))
	if err := c.Connect(host, port); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Disconnect()

	for i := 0; i < r.scenario.Requests; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		begin := time.Now()
		resp, err := r.performRequest(c, payload)
		if err != nil {
			r.counters.RequestFailed()
			continue
		}

		if err := VerifyPayload(resp.Body, r.scenario.ResponseSize); err != nil {
			r.counters.RequestFailed()
			r.log.Warn().Err(err).Msg("response verification failed")
			continue
		}

		r.counters.RequestDone(len(payload), len(resp.Body), time.Since(begin))
	}
	return nil
}

func (r *Runner) performRequest(c *client.HttpClient, payload []byte) (*protocol.UnsafeHttpResponse, error) {
	if len(payload) == 0 {
		return c.GetUnsafe(&protocol.HttpRequest{
			Path:    "/bench",
			Headers: []protocol.HttpHeader{{Key: "Host", Value: "bench"}},
		})
	}
	return c.PostUnsafe(&protocol.HttpRequest{
		Path: "/bench",
		Headers: []protocol.HttpHeader{
			{Key: "Host", Value: "bench"},
			{Key: "Content-Length", Value: strconv.Itoa(len(payload))},
		},
		Body: payload,
	})
}
