package sources

import (
	"context"

	"github.com/Devaaron7/garage-sale-finder/internal/listing"
)

// Source is one garage-sale search backend. Implementations return their
// own failures; degradation to an empty result set is the aggregator's and
// the API boundary's job, never the source's.
type Source interface {
	// Name returns the source's display name, also used in listing IDs
	Name() string

	// SiteURL returns the homepage of the site the source searches
	SiteURL() string

	// Search returns the listings near a zip code. radius is in miles;
	// sources that apply their own server-side radius may ignore it.
	Search(ctx context.Context, zip string, radius int) ([]listing.Listing, error)
}
