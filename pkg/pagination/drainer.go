package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// ErrDuplicateRun is returned by DrainAll when two runs share a name.
var ErrDuplicateRun = errors.New("duplicate run name")

// Config holds drainer configuration.
type Config struct {
	// MaxConcurrency is the maximum number of listings drained in parallel.
	// Pages within one listing are never fetched in parallel.
	MaxConcurrency int

	// Timeout bounds a whole listing run.
	Timeout time.Duration
}

// DefaultConfig returns a conservative drainer configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        2 * time.Minute,
	}
}

// Run names one independent listing.
type Run[P Continuable] struct {
	Name  string
	Pager *Pager[P]
}

// Drainer drains many independent listings concurrently.
type Drainer[P Continuable] struct {
	config Config
}

// NewDrainer creates a drainer, filling unset config values with defaults.
func NewDrainer[P Continuable](config Config) *Drainer[P] {
	defaults := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &Drainer[P]{config: config}
}

// DrainAll drains every run and returns the pages of the runs that completed,
// keyed by run name. Failed runs are left out of the result and their errors
// are combined into the returned error; pages a failed run fetched before the
// error are discarded so that no run is reported partially. Run names must be
// unique; otherwise nothing is fetched and ErrDuplicateRun is returned.
func (d *Drainer[P]) DrainAll(ctx context.Context, runs []Run[P]) (map[string][]P, error) {
	seen := make(map[string]struct{}, len(runs))
	for _, run := range runs {
		if _, ok := seen[run.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRun, run.Name)
		}
		seen[run.Name] = struct{}{}
	}

	start := time.Now()

	log.Info().
		Int("runs", len(runs)).
		Int("max_concurrency", d.config.MaxConcurrency).
		Msg("Starting listing drain")

	var (
		mu      sync.Mutex
		results = make(map[string][]P, len(runs))
		errs    error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.config.MaxConcurrency)

	for _, run := range runs {
		g.Go(func() error {
			pages, err := d.drain(gctx, run)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("listing %s: %w", run.Name, err))
				return nil
			}
			results[run.Name] = pages
			return nil
		})
	}

	// Workers never return errors; failures are collected in errs.
	_ = g.Wait()

	if errs != nil {
		log.Warn().
			Err(errs).
			Int("completed", len(results)).
			Int("failed", len(multierr.Errors(errs))).
			Dur("duration", time.Since(start)).
			Msg("Listing drain finished with failures")
		return results, errs
	}

	log.Info().
		Int("completed", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Listing drain complete")

	return results, nil
}

func (d *Drainer[P]) drain(ctx context.Context, run Run[P]) ([]P, error) {
	runCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	pages, err := Collect(runCtx, run.Pager)
	if err != nil {
		log.Debug().
			Err(err).
			Str("run", run.Name).
			Int("pages_fetched", len(pages)).
			Msg("Listing run failed")
		return nil, err
	}

	log.Debug().
		Str("run", run.Name).
		Int("pages", len(pages)).
		Msg("Listing run complete")

	return pages, nil
}
