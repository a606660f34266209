package sources

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/Devaaron7/garage-sale-finder/internal/listing"
	"github.com/Devaaron7/garage-sale-finder/logger"
)

// Aggregator fans a search out to every registered source in parallel and
// merges the results. A failing source contributes nothing; it never takes
// the other sources' results down with it.
type Aggregator struct {
	sources []Source
	log     *logger.Logger
}

func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{
		sources: sources,
		log:     logger.ForWorker(),
	}
}

// Sources returns the registered source descriptors for the API surface
func (a *Aggregator) Sources() []listing.DataSource {
	out := make([]listing.DataSource, 0, len(a.sources))
	for _, s := range a.sources {
		out = append(out, listing.DataSource{
			ID:      strings.ToLower(strings.ReplaceAll(s.Name(), " ", "")),
			Name:    s.Name(),
			URL:     s.SiteURL(),
			Enabled: true,
		})
	}
	return out
}

// Search queries every source concurrently and returns the merged results
// sorted by distance. Listings without a usable distance sort last.
func (a *Aggregator) Search(ctx context.Context, zip string, radius int) []listing.Listing {
	return a.search(ctx, zip, radius, a.sources)
}

// SearchSource queries a single source by its id, e.g. "gsalr" or
// "ebaylocal". Unknown ids yield empty results.
func (a *Aggregator) SearchSource(ctx context.Context, sourceID, zip string, radius int) []listing.Listing {
	for _, s := range a.sources {
		if strings.ToLower(strings.ReplaceAll(s.Name(), " ", "")) == strings.ToLower(sourceID) {
			return a.search(ctx, zip, radius, []Source{s})
		}
	}
	a.log.Warn().Str("source", sourceID).Msg("Unknown source requested")
	return []listing.Listing{}
}

func (a *Aggregator) search(ctx context.Context, zip string, radius int, sources []Source) []listing.Listing {
	results := make([][]listing.Listing, len(sources))
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			found, err := src.Search(ctx, zip, radius)
			if err != nil {
				a.log.Warn().Str("source", src.Name()).Str("zip", zip).Err(err).
					Msg("Source failed, degrading to empty results")
				return
			}
			results[i] = found
		}(i, src)
	}
	wg.Wait()

	merged := make([]listing.Listing, 0)
	for _, r := range results {
		merged = append(merged, r...)
	}
	sortByDistance(merged)

	a.log.Info().Str("zip", zip).Int("count", len(merged)).Msg("Aggregated search complete")
	return merged
}

// sortByDistance orders listings nearest-first. A distance of zero or less
// means unknown and sorts after every known distance. The sort is stable so
// per-source ordering survives for unknown-distance records.
func sortByDistance(listings []listing.Listing) {
	key := func(l listing.Listing) float64 {
		if l.Distance <= 0 {
			return math.Inf(1)
		}
		return l.Distance
	}
	sort.SliceStable(listings, func(i, j int) bool {
		return key(listings[i]) < key(listings[j])
	})
}
