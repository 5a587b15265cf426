// Command benchserver runs the throwaway accept loop the load generator
// targets.
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
		fmt.Fprintf(os.Stderr, "benchserver: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		listen       string
		socketPath   string
		responseSize int
		verbose      bool
	)

	fs := flag.NewFlagSet("benchserver", flag.ContinueOnError)
	fs.StringVarP(&listen, "listen", "l", "127.0.0.1:8080", "TCP listen address")
	fs.StringVarP(&socketPath, "unix", "u", "", "Unix socket path (overrides --listen)")
	fs.IntVarP(&responseSize, "response-size", "s", 1024, "Response body size in bytes")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	log := newLogger(verbose)

	network, address := "tcp", listen
	if socketPath != "" {
		network, address = "unix", socketPath
		os.Remove(socketPath)
		defer os.Remove(socketPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := bench.NewServer(network, address, responseSize)
	srv.SetLogger(log)
	return srv.Serve(ctx)
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
