package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Devaaron7/garage-sale-finder/internal/listing"
	"github.com/Devaaron7/garage-sale-finder/logger"
	"github.com/Devaaron7/garage-sale-finder/services/cache"
	"github.com/Devaaron7/garage-sale-finder/services/publisher"
)

// Searcher is the aggregated search the watcher polls with
type Searcher interface {
	Search(ctx context.Context, zip string, radius int) []listing.Listing
}

// seenTTL bounds how long a listing id stays deduplicated. Garage sales
// rarely outlive a weekend; a week comfortably covers reposts.
const seenTTL = 7 * 24 * time.Hour

// Watcher polls the configured zip codes on an interval and publishes
// listings that have not been seen before. Dedup state lives in the cache
// under seen: keys so restarts within the TTL do not re-announce.
type Watcher struct {
	searcher  Searcher
	cache     cache.CacheService
	publisher publisher.Publisher
	zips      []string
	radius    int
	interval  time.Duration
	log       *logger.Logger
}

func NewWatcher(searcher Searcher, cacheSvc cache.CacheService, pub publisher.Publisher, zips []string, radius int, interval time.Duration) *Watcher {
	return &Watcher{
		searcher:  searcher,
		cache:     cacheSvc,
		publisher: pub,
		zips:      zips,
		radius:    radius,
		interval:  interval,
		log:       logger.ForWorker(),
	}
}

// Run polls until the context is cancelled. The first sweep happens
// immediately; later ones follow the ticker.
func (w *Watcher) Run(ctx context.Context) {
	if len(w.zips) == 0 {
		w.log.Info().Msg("No watch zips configured, watcher idle")
		return
	}

	w.log.Info().Strs("zips", w.zips).Dur("interval", w.interval).Msg("Watcher started")
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Watcher stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep searches every watched zip concurrently and publishes new listings
func (w *Watcher) sweep(ctx context.Context) {
	var wg sync.WaitGroup
	for _, zip := range w.zips {
		wg.Add(1)
		go func(zip string) {
			defer wg.Done()
			w.sweepZip(ctx, zip)
		}(zip)
	}
	wg.Wait()

	if w.publisher != nil {
		if err := w.publisher.TrimStreams(); err != nil {
			w.log.Warn().Err(err).Msg("Failed to trim streams")
		}
	}
}

func (w *Watcher) sweepZip(ctx context.Context, zip string) {
	results := w.searcher.Search(ctx, zip, w.radius)

	published := 0
	for _, l := range results {
		if w.alreadySeen(l.ID) {
			continue
		}
		if w.publish(l) {
			published++
		}
		w.markSeen(l.ID)
	}

	w.log.Info().
		Str("zip", zip).
		Int("found", len(results)).
		Int("new", published).
		Msg("Watch sweep complete")
}

func (w *Watcher) alreadySeen(id string) bool {
	if w.cache == nil {
		return false
	}
	_, err := w.cache.Get("seen:" + id)
	return err == nil
}

func (w *Watcher) markSeen(id string) {
	if w.cache == nil {
		return
	}
	if err := w.cache.Set("seen:"+id, []byte("1"), seenTTL); err != nil {
		w.log.Debug().Str("id", id).Err(err).Msg("Failed to mark listing seen")
	}
}

func (w *Watcher) publish(l listing.Listing) bool {
	if w.publisher == nil {
		return false
	}
	payload, err := json.Marshal(l)
	if err != nil {
		w.log.Warn().Str("id", l.ID).Err(err).Msg("Failed to encode listing")
		return false
	}
	if err := w.publisher.Publish("new_listing", payload); err != nil {
		w.log.Warn().Str("id", l.ID).Err(err).Msg("Failed to publish listing")
		return false
	}
	return true
}
