package scraper

import (
	"context"

	"github.com/Devaaron7/garage-sale-finder/config"
	"github.com/Devaaron7/garage-sale-finder/internal/listing"
	"github.com/Devaaron7/garage-sale-finder/logger"
	"github.com/Devaaron7/garage-sale-finder/services/location"
)

// Geocoder resolves zip codes to coordinates for distance computation
type Geocoder interface {
	Resolve(zip string) location.Location
}

// GSALRSource scrapes gsalr.com through a real browser. The site renders
// its results client-side and gates them behind a location form, so plain
// HTTP fetching cannot reach them; every search drives the full navigation
// flow inside a disposable browser session.
type GSALRSource struct {
	cfg        *config.Config
	factory    SessionFactory
	navigator  *Navigator
	extractor  *Extractor
	normalizer *Normalizer
	geo        Geocoder
	log        *logger.Logger
}

// NewGSALRSource assembles the scrape pipeline from configuration. geo may
// be nil, in which case listings carry no distance.
func NewGSALRSource(cfg *config.Config, geo Geocoder) *GSALRSource {
	return &GSALRSource{
		cfg:        cfg,
		factory:    NewSessionManager(cfg.Browser),
		navigator:  NewNavigator(cfg.GSALRURL, cfg.Navigation, NewLocator()),
		extractor:  NewExtractor(),
		normalizer: NewNormalizer(),
		geo:        geo,
		log:        logger.ForSource(listing.SourceGSALR),
	}
}

// Name returns the source's display name
func (s *GSALRSource) Name() string {
	return listing.SourceGSALR
}

// SiteURL returns the scraped site's homepage
func (s *GSALRSource) SiteURL() string {
	return s.cfg.GSALRBaseURL
}

// distanceFrom builds a per-search distance function anchored at the
// searched zip's coordinates
func (s *GSALRSource) distanceFrom(originZip string) DistanceFunc {
	if s.geo == nil {
		return nil
	}
	origin := s.geo.Resolve(originZip)
	return func(city, state, zip string) float64 {
		if zip == "" {
			return 0
		}
		if zip == origin.ZipCode {
			return 0
		}
		target := s.geo.Resolve(zip)
		if target.Latitude == 0 && target.Longitude == 0 {
			return 0
		}
		return Haversine(origin.Latitude, origin.Longitude, target.Latitude, target.Longitude)
	}
}

// Search runs the browser pipeline for one zip code. radius is accepted for
// interface parity; the site applies its own radius server-side.
func (s *GSALRSource) Search(ctx context.Context, zip string, radius int) ([]listing.Listing, error) {
	orchestrator := NewOrchestrator(s.factory, s.cfg.Retry.MaxAttempts, s.cfg.Retry.Backoff)
	distance := s.distanceFrom(zip)

	results, err := orchestrator.Run(ctx, func(ctx context.Context, session Session) ([]listing.Listing, error) {
		htmls, err := s.navigator.Run(session, zip)
		if err != nil {
			return nil, err
		}
		parts := s.extractor.ExtractAll(htmls)
		return s.normalizer.Normalize(parts, NormalizeContext{
			Source:   listing.SourceGSALR,
			BaseURL:  s.cfg.GSALRBaseURL,
			Zip:      zip,
			Distance: distance,
		}), nil
	})
	if err != nil {
		s.log.Error().Str("zip", zip).Err(err).Msg("Scrape failed after all attempts")
		return nil, err
	}

	s.log.Info().Str("zip", zip).Int("count", len(results)).Msg("Scrape complete")
	return results, nil
}
