package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/Devaaron7/garage-sale-finder/internal/listing"
	"github.com/Devaaron7/garage-sale-finder/logger"
	"github.com/Devaaron7/garage-sale-finder/pkg/errors"
)

// AttemptFunc runs one complete scrape attempt against a freshly acquired
// session and returns the listings it produced.
type AttemptFunc func(ctx context.Context, session Session) ([]listing.Listing, error)

// Orchestrator wraps scrape attempts with bounded retry. Each attempt gets
// a fresh session that is released before the next one starts, so failed
// attempts can never leak browser state into their successors. Failures are
// classified: retryable ones consume an attempt and back off, terminal ones
// abort at once.
type Orchestrator struct {
	factory     SessionFactory
	maxAttempts int
	backoff     time.Duration
	log         *logger.Logger
}

func NewOrchestrator(factory SessionFactory, maxAttempts int, backoff time.Duration) *Orchestrator {
	return &Orchestrator{
		factory:     factory,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		log:         logger.ForScraper(),
	}
}

// Run executes attempts until one succeeds, a terminal failure occurs, the
// attempt budget is exhausted, or the context expires. The last error is
// wrapped into the terminal error so the failure chain survives.
func (o *Orchestrator) Run(ctx context.Context, attempt AttemptFunc) ([]listing.Listing, error) {
	var lastErr error
	for i := 1; i <= o.maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}

		results, err := o.runOnce(ctx, i, attempt)
		if err == nil {
			return results, nil
		}
		lastErr = err

		if !errors.IsRetryable(err) {
			o.log.Warn().Int("attempt", i).Err(err).Msg("Terminal failure, not retrying")
			break
		}
		if i == o.maxAttempts {
			break
		}

		o.log.Info().
			Int("attempt", i).
			Dur("backoff", o.backoff).
			Err(err).
			Msg("Attempt failed, retrying with fresh session")
		select {
		case <-time.After(o.backoff):
		case <-ctx.Done():
			return nil, fmt.Errorf("scrape failed: %w", ctx.Err())
		}
	}
	return nil, fmt.Errorf("scrape failed: %w", lastErr)
}

// runOnce acquires a session, runs the attempt, and guarantees release
func (o *Orchestrator) runOnce(ctx context.Context, n int, attempt AttemptFunc) ([]listing.Listing, error) {
	session, err := o.factory.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Release()

	o.log.Debug().Int("attempt", n).Msg("Session acquired")
	return attempt(ctx, session)
}
