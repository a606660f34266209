package location

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/Devaaron7/garage-sale-finder/helpers"
	"github.com/Devaaron7/garage-sale-finder/logger"
	"github.com/Devaaron7/garage-sale-finder/services/cache"
)

// Location is a resolved US zip code
type Location struct {
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zipCode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// cacheTTL bounds how long a resolved zip stays cached. Zip geography is
// effectively static; the TTL only guards against unbounded growth.
const cacheTTL = 24 * time.Hour

// zippopotamResponse mirrors the fields of api.zippopotam.us we consume
type zippopotamResponse struct {
	Places []struct {
		PlaceName string `json:"place name"`
		State     string `json:"state abbreviation"`
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"places"`
}

// staticZips covers a handful of common test and metro zips so resolution
// keeps working when the lookup API is unreachable.
var staticZips = map[string]Location{
	"33101": {City: "Miami", State: "FL", ZipCode: "33101", Latitude: 25.7743, Longitude: -80.1937},
	"33602": {City: "Tampa", State: "FL", ZipCode: "33602", Latitude: 27.9506, Longitude: -82.4572},
	"32801": {City: "Orlando", State: "FL", ZipCode: "32801", Latitude: 28.5421, Longitude: -81.3790},
	"10001": {City: "New York", State: "NY", ZipCode: "10001", Latitude: 40.7506, Longitude: -73.9972},
	"90210": {City: "Beverly Hills", State: "CA", ZipCode: "90210", Latitude: 34.0901, Longitude: -118.4065},
	"60601": {City: "Chicago", State: "IL", ZipCode: "60601", Latitude: 41.8858, Longitude: -87.6229},
	"75201": {City: "Dallas", State: "TX", ZipCode: "75201", Latitude: 32.7877, Longitude: -96.7994},
	"30301": {City: "Atlanta", State: "GA", ZipCode: "30301", Latitude: 33.7490, Longitude: -84.3880},
}

// defaultLocation is returned when nothing else resolves. Resolution must
// never fail outright; searches degrade to the default metro instead.
var defaultLocation = Location{
	City: "Miami", State: "FL", ZipCode: "33101",
	Latitude: 25.7743, Longitude: -80.1937,
}

// Resolver turns zip codes into city/state/coordinates. Lookups go through
// the cache first, then the HTTP API, then the static table, and finally
// the default; Resolve never returns an error.
type Resolver struct {
	apiURL string
	cache  cache.CacheService
	log    *logger.Logger
}

// NewResolver creates a resolver. apiURL is the lookup base without a
// trailing slash, e.g. "https://api.zippopotam.us/us".
func NewResolver(apiURL string, cacheSvc cache.CacheService) *Resolver {
	return &Resolver{
		apiURL: apiURL,
		cache:  cacheSvc,
		log:    logger.ForLocation(),
	}
}

// Resolve maps a zip code to a location
func (r *Resolver) Resolve(zip string) Location {
	if !zipPattern.MatchString(zip) {
		r.log.Debug().Str("zip", zip).Msg("Invalid zip format, using default location")
		return defaultLocation
	}

	key := "location:" + zip
	if r.cache != nil {
		if data, err := r.cache.Get(key); err == nil {
			var loc Location
			if json.Unmarshal(data, &loc) == nil {
				return loc
			}
		}
	}

	loc, err := r.lookup(zip)
	if err != nil {
		if static, ok := staticZips[zip]; ok {
			r.log.Debug().Str("zip", zip).Err(err).Msg("Lookup failed, using static table")
			return static
		}
		r.log.Warn().Str("zip", zip).Err(err).Msg("Lookup failed, using default location")
		return defaultLocation
	}

	if r.cache != nil {
		if data, err := json.Marshal(loc); err == nil {
			if err := r.cache.Set(key, data, cacheTTL); err != nil {
				r.log.Debug().Err(err).Msg("Failed to cache resolved location")
			}
		}
	}
	return loc
}

func (r *Resolver) lookup(zip string) (Location, error) {
	body, err := helpers.FetchSimply(fmt.Sprintf("%s/%s", r.apiURL, zip))
	if err != nil {
		return Location{}, err
	}

	var resp zippopotamResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Location{}, fmt.Errorf("decode lookup response: %w", err)
	}
	if len(resp.Places) == 0 {
		return Location{}, fmt.Errorf("no places for zip %s", zip)
	}

	place := resp.Places[0]
	lat, _ := strconv.ParseFloat(place.Latitude, 64)
	lon, _ := strconv.ParseFloat(place.Longitude, 64)
	return Location{
		City:      place.PlaceName,
		State:     place.State,
		ZipCode:   zip,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
