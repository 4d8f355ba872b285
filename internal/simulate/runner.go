package simulate

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/pkg/logger"
)

// Run plays one match against the server described by cfg and writes the
// resulting feedback to out.
func Run(ctx context.Context, cfg *Config, out io.Writer) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Named("simulate")
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting simulated match",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("events", cfg.NumEvents),
		logger.Int("workers", cfg.Workers),
		logger.Int("flushEvery", cfg.FlushEvery),
		logger.Uint64("seed", cfg.Seed))

	if err := client.Health(ctx); err != nil {
		return nil, err
	}
	if cfg.Restart {
		id, err := client.Restart(ctx)
		if err != nil {
			return nil, fmt.Errorf("session restart failed: %w", err)
		}
		log.Info(ctx, "session restarted", logger.String("sessionID", id))
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(stats.StartTime.UnixNano())
	}
	events := NewGenerator(seed).Generate(cfg.NumEvents, cfg.OutcomePct, stats.StartTime)
	stats.EventsGenerated = len(events)
	stats.Outcomes = OutcomeCounts(events)

	if err := submitAll(ctx, client, cfg, events, stats); err != nil {
		return stats, err
	}

	stats.Winner = cfg.Winner
	if stats.Winner == WinnerAuto {
		stats.Winner = pickWinner(stats.Outcomes)
	}
	fb, err := client.EndMatch(ctx, stats.Winner)
	if err != nil {
		return stats, fmt.Errorf("match end failed: %w", err)
	}
	stats.Duration = time.Since(stats.StartTime)

	printFeedback(out, stats, fb)
	log.Info(ctx, "match finished",
		logger.Int("successful", stats.EventsSuccessful),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("failed", stats.EventsFailed),
		logger.Int("flushes", stats.Flushes),
		logger.String("feedback", fb.Feedback),
		logger.String("duration", stats.Duration.String()))
	return stats, nil
}

// submitAll posts events in batches of cfg.FlushEvery, flushing after each.
func submitAll(ctx context.Context, client *Client, cfg *Config, events []Event, stats *Stats) error {
	log := logger.Named("simulate")
	batch := cfg.FlushEvery
	if batch == 0 {
		batch = len(events)
	}

	var successful, duplicate, failed atomic.Int64
	for start := 0; start < len(events); start += batch {
		end := min(start+batch, len(events))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Workers)
		for _, e := range events[start:end] {
			g.Go(func() error {
				dup, err := client.Submit(gctx, e)
				switch {
				case err != nil:
					failed.Add(1)
					log.Debug(gctx, "event rejected", logger.String("eventID", e.EventID), logger.Error(err))
				case dup:
					duplicate.Add(1)
				default:
					successful.Add(1)
				}
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("event submission interrupted: %w", err)
		}

		if err := client.Flush(ctx); err != nil {
			return fmt.Errorf("flush failed: %w", err)
		}
		stats.Flushes++
		if cfg.Verbose {
			log.Info(ctx, "batch submitted", logger.Int("submitted", end), logger.Int("total", len(events)))
		}
	}

	stats.EventsSuccessful = int(successful.Load())
	stats.EventsDuplicate = int(duplicate.Load())
	stats.EventsFailed = int(failed.Load())
	return nil
}

// pickWinner returns the participant with more outcome events, or -1 on a tie.
func pickWinner(outcomes [2]int) int {
	switch {
	case outcomes[0] > outcomes[1]:
		return 0
	case outcomes[1] > outcomes[0]:
		return 1
	}
	return -1
}

func printFeedback(out io.Writer, stats *Stats, fb types.FeedbackResponse) {
	_, _ = fmt.Fprintf(out, "session %s: winner %d, events %d (ok %d, dup %d, failed %d), flushes %d\n",
		fb.SessionID, stats.Winner, stats.EventsGenerated,
		stats.EventsSuccessful, stats.EventsDuplicate, stats.EventsFailed, stats.Flushes)
	if fb.Feedback == "none" {
		_, _ = fmt.Fprintln(out, "no feedback")
		return
	}
	_, _ = fmt.Fprintf(out, "feedback %s (%s, %d)\n", fb.Feedback, fb.Side, fb.Count)
	for _, l := range fb.Lines {
		_, _ = fmt.Fprintf(out, "%d,%d %s\n", l.X, l.Y, l.Text)
	}
}
