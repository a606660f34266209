package scraper

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Devaaron7/garage-sale-finder/logger"
	"github.com/Devaaron7/garage-sale-finder/pkg/errors"
)

// ProbeFunc attempts a single locator strategy against the page, returning
// nil when at least one matching element is present. The context it receives
// is derived from the session's tab context and carries the strategy's time
// box. The default probe waits on the live browser; tests inject their own.
type ProbeFunc func(ctx context.Context, strategy Strategy) error

// Locator resolves slots to concrete page elements by trying each strategy
// in declaration order until one succeeds.
type Locator struct {
	probe ProbeFunc
	log   *logger.Logger
}

// NewLocator creates a locator that probes the live page
func NewLocator() *Locator {
	return &Locator{
		probe: func(ctx context.Context, strategy Strategy) error {
			return chromedp.Run(ctx,
				chromedp.WaitReady(strategy.Expression, queryOption(strategy.Kind)))
		},
		log: logger.ForScraper(),
	}
}

// newLocatorWithProbe is the test seam
func newLocatorWithProbe(probe ProbeFunc) *Locator {
	return &Locator{probe: probe, log: logger.ForScraper()}
}

// LocateFirst tries the slot's strategies in order, each independently
// time-boxed. tabCtx must be the session's tab context. The first strategy
// that matches wins; later strategies are never tried once one succeeds.
// When every strategy is exhausted it returns a locate error the caller maps
// to a required-step failure or a tolerated branch.
func (l *Locator) LocateFirst(tabCtx context.Context, slot Slot, timeout time.Duration) (Strategy, error) {
	var lastErr error
	for _, strategy := range slot.Strategies {
		attemptCtx, cancel := context.WithTimeout(tabCtx, timeout)
		err := l.probe(attemptCtx, strategy)
		cancel()
		if err == nil {
			l.log.Debug().
				Str("slot", slot.Name).
				Str("selector", strategy.Expression).
				Msg("Slot resolved")
			return strategy, nil
		}
		lastErr = err
		l.log.Debug().
			Str("slot", slot.Name).
			Str("selector", strategy.Expression).
			Err(err).
			Msg("Strategy failed, trying next")
	}
	return Strategy{}, errors.NewLocate("gsalr", slot.Name, lastErr)
}

// queryOption maps a selector kind to the chromedp query option
func queryOption(kind SelectorKind) chromedp.QueryOption {
	if kind == KindXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}
