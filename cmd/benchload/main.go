// Command benchload drives the HTTP client over a chosen transport kind
// against a bench server and reports throughput and latency.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/warrenjitsing/LinkedInArticles-sub001/bench"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "benchload: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		scenarioFile string
		verbose      bool
	)
	flagScenario := &bench.Scenario{}

	fs := flag.NewFlagSet("benchload", flag.ContinueOnError)
	fs.StringVarP(&scenarioFile, "scenario", "f", "", "YAML scenario file (flags below are ignored if set)")
	fs.StringVarP(&flagScenario.Transport, "transport", "t", "tcp", "Transport kind: tcp, unix, tcp-uring, unix-uring")
	fs.StringVarP(&flagScenario.Host, "host", "H", "127.0.0.1", "Target host (tcp kinds)")
	fs.Uint16VarP(&flagScenario.Port, "port", "p", 8080, "Target port (tcp kinds)")
	fs.StringVarP(&flagScenario.SocketPath, "unix", "u", "", "Target socket path (unix kinds)")
	fs.IntVarP(&flagScenario.Connections, "connections", "c", 1, "Concurrent connections")
	fs.IntVarP(&flagScenario.Requests, "requests", "n", 100, "Requests per connection")
	fs.IntVar(&flagScenario.PayloadSize, "payload-size", 64, "POST body size in bytes (0 sends GETs)")
	fs.IntVar(&flagScenario.ResponseSize, "response-size", 1024, "Expected response body size in bytes")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	log := newLogger(verbose)

	scenario := flagScenario
	if scenarioFile != "" {
		loaded, err := bench.LoadScenario(scenarioFile)
		if err != nil {
			return err
		}
		scenario = loaded
	} else {
		// Flag defaults already stand in for ApplyDefaults; re-applying
		// them would turn an explicit --payload-size 0 back into a POST run.
		if err := scenario.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := bench.NewRunner(scenario)
	runner.SetLogger(log)

	elapsed, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	c := runner.Counters()
	log.Info().
		Int64("requests", c.Requests()).
		Int64("errors", c.Errors()).
		Int64("bytes_read", c.BytesRead()).
		Int64("bytes_written", c.BytesWritten()).
		Dur("mean_latency", c.MeanLatency()).
		Float64("requests_per_sec", float64(c.Requests())/elapsed.Seconds()).
		Msg("summary")
	return nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
