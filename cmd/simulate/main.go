// Command simulate plays a generated match against a running ringside server
// and prints the feedback it selects.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/ringside/internal/simulate"
	"github.com/okian/ringside/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumEvents  = 2000
	defaultFlushEvery = 250
	defaultOutcomePct = 35
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func newRootCmd() *cobra.Command {
	cfg := &simulate.Config{}
	var (
		winner   string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a generated match against a ringside server",
		Long: `Generate weighted action and outcome events for both participants,
submit them concurrently, flush periodically, end the match and print the
feedback the server selected.

Examples:
  simulate --url http://localhost:9080
  simulate --events 50000 --workers 16 --flush-every 1000 --winner 1
  simulate --seed 42 --winner draw --restart`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.SetLevelString(logLevel); err != nil {
				return err
			}
			w, err := parseWinner(winner)
			if err != nil {
				return err
			}
			cfg.Winner = w

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
			defer cancel()
			_, err = simulate.Run(ctx, cfg, cmd.OutOrStdout())
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&cfg.NumEvents, "events", defaultNumEvents, "Number of events to generate and submit")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
	f.IntVar(&cfg.FlushEvery, "flush-every", defaultFlushEvery, "Events between flushes (0 flushes once at the end)")
	f.IntVar(&cfg.OutcomePct, "outcome-pct", defaultOutcomePct, "Percentage of events drawn from the outcome universe")
	f.Uint64Var(&cfg.Seed, "seed", 0, "Generator seed (0 picks one from the clock)")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.BoolVar(&cfg.Restart, "restart", false, "Restart the server session before the match")
	f.BoolVar(&cfg.Verbose, "verbose", false, "Log every submitted batch")
	f.StringVar(&winner, "winner", "auto", "Match winner: 0, 1, draw or auto")
	f.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	return cmd
}

// parseWinner accepts 0, 1, -1, draw and auto.
func parseWinner(s string) (int, error) {
	switch s {
	case "auto", "":
		return simulate.WinnerAuto, nil
	case "draw", "none":
		return -1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < -1 || n > 1 {
		return 0, fmt.Errorf("invalid winner %q: want 0, 1, draw or auto", s)
	}
	return n, nil
}

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
