package scraper

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Devaaron7/garage-sale-finder/helpers"
	"github.com/Devaaron7/garage-sale-finder/internal/listing"
	"github.com/Devaaron7/garage-sale-finder/logger"
)

// DistanceFunc computes the distance in miles from the search origin to a
// listing's location. Implementations return 0 when the distance cannot be
// determined.
type DistanceFunc func(city, state, zip string) float64

// NormalizeContext carries the per-search inputs the normalizer needs
type NormalizeContext struct {
	Source  string
	BaseURL string
	Zip     string
	// Distance may be nil, in which case all listings carry distance 0
	Distance DistanceFunc
}

// Normalizer turns partial listings into canonical records: it filters out
// records missing required identity fields, fills documented defaults, and
// absolutizes relative URLs against the site base. Normalization is pure;
// running it twice over the same input yields the same output.
type Normalizer struct {
	log *logger.Logger
}

func NewNormalizer() *Normalizer {
	return &Normalizer{log: logger.ForScraper()}
}

// Normalize converts extracted partials into listings. Partials that fail
// the validity filter are dropped, never padded into half-empty records.
func (n *Normalizer) Normalize(parts []PartialListing, nc NormalizeContext) []listing.Listing {
	out := make([]listing.Listing, 0, len(parts))
	dropped := 0
	for _, part := range parts {
		rec, ok := n.normalizeOne(part, nc)
		if !ok {
			dropped++
			continue
		}
		out = append(out, rec)
	}
	if dropped > 0 {
		n.log.Debug().Int("dropped", dropped).Msg("Filtered listings missing required fields")
	}
	return out
}

func (n *Normalizer) normalizeOne(part PartialListing, nc NormalizeContext) (listing.Listing, bool) {
	id := part[FieldID]
	title := part[FieldTitle]
	city := part[FieldCity]
	state := part[FieldState]
	address := part[FieldAddress]
	if id == "" || title == "" || city == "" || state == "" || address == "" {
		return listing.Listing{}, false
	}

	prefix := strings.ToLower(strings.ReplaceAll(nc.Source, " ", "")) + "-"
	if !strings.HasPrefix(id, prefix) {
		id = prefix + id
	}

	startDate := part[FieldStartDate]
	if startDate == "" {
		startDate = time.Now().Format("2006-01-02")
	}
	endDate := part[FieldEndDate]
	if endDate == "" {
		endDate = startDate
	}

	description := part[FieldDescription]
	if description == "" {
		description = "No description available"
	}

	rawURL := part[FieldURL]
	if rawURL == "" {
		rawURL = fmt.Sprintf("%s/sale/%s", nc.BaseURL, part[FieldID])
	}

	photoCount := parsePhotoCount(part[FieldPhotoCount])

	var distance float64
	if nc.Distance != nil {
		distance = nc.Distance(city, state, part[FieldZip])
	}

	zip := part[FieldZip]
	if zip == "" {
		zip = nc.Zip
	}

	return listing.Listing{
		ID:           id,
		Title:        title,
		Address:      address,
		City:         city,
		State:        state,
		ZipCode:      zip,
		StartDate:    startDate,
		EndDate:      endDate,
		StartTime:    "09:00",
		EndTime:      "17:00",
		Description:  description,
		Preview:      helpers.FirstSentence(description),
		Source:       nc.Source,
		URL:          absolutize(nc.BaseURL, rawURL),
		ImageURL:     absolutize(nc.BaseURL, part[FieldImage]),
		PhotoCount:   photoCount,
		Distance:     distance,
		DistanceUnit: "mi",
		Price:        "Unknown",
	}, true
}

var leadingDigits = regexp.MustCompile(`^\d+`)

// parsePhotoCount reads the leading integer out of the photo-count text.
// The site renders it with a suffix ("4 Photos"), so a plain conversion of
// the whole string would lose every real count.
func parsePhotoCount(s string) int {
	m := leadingDigits.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// absolutize resolves a possibly-relative ref against the site base. Empty
// refs stay empty and malformed ones are returned as-is rather than lost.
func absolutize(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

const earthRadiusMiles = 3958.8

// Haversine returns the great-circle distance in miles between two points
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}
