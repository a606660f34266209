package sources

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Devaaron7/garage-sale-finder/helpers"
	"github.com/Devaaron7/garage-sale-finder/internal/listing"
	"github.com/Devaaron7/garage-sale-finder/logger"
	"github.com/Devaaron7/garage-sale-finder/services/location"
)

// mockTemplate is one generated listing shape for a marketplace source
type mockTemplate struct {
	title       string
	description string
	price       string
}

// Marketplace sources expose no public search API for local garage-sale
// style lots, so their results are generated from the resolved search area.
// Templates are per-source so the mix looks like each marketplace's actual
// inventory style.
var mockTemplates = map[string][]mockTemplate{
	listing.SourceEbayLocal: {
		{"Estate Sale - Vintage Furniture Lot", "Mid-century dresser, end tables and lamps. Local pickup only.", "$150"},
		{"Garage Cleanout - Tools and Hardware", "Socket sets, power drills, hand tools. Everything priced to move.", "$75"},
		{"Moving Sale - Kitchen Appliance Bundle", "Stand mixer, blender, toaster oven. All working condition.", "$90"},
	},
	listing.SourceMercari: {
		{"Yard Sale Bundle - Kids Toys and Games", "Board games, action figures and puzzles from a weekend yard sale.", "$40"},
		{"Closet Cleanout - Designer Clothing Lot", "Name-brand jackets and jeans, gently used. Sold as a lot.", "$65"},
		{"Book Lot - Fiction and Cookbooks", "Two boxes of paperbacks and hardcovers from a moving sale.", "$25"},
	},
	listing.SourceOfferUp: {
		{"Multi-Family Garage Sale Finds", "Furniture, electronics and decor picked up from a neighborhood sale.", "$50"},
		{"Patio Set from Moving Sale", "Table, four chairs and umbrella. Minor wear, solid frame.", "$120"},
		{"Exercise Equipment - Garage Sale Pickup", "Dumbbell set and adjustable bench. Local meetup preferred.", "$80"},
	},
}

// mockStreets gives generated listings plausible addresses in the area
var mockStreets = []string{
	"Oak Street", "Maple Avenue", "Pine Drive", "Cedar Lane",
	"Elm Court", "Birch Road", "Willow Way", "Palm Boulevard",
}

// MockSource generates marketplace-style listings for the resolved search
// area. Output is seeded per zip so repeated searches for the same area
// return the same records.
type MockSource struct {
	name     string
	siteURL  string
	resolver *location.Resolver
	log      *logger.Logger
}

func NewMockSource(name, siteURL string, resolver *location.Resolver) *MockSource {
	return &MockSource{
		name:     name,
		siteURL:  siteURL,
		resolver: resolver,
		log:      logger.ForSource(name),
	}
}

func (s *MockSource) Name() string {
	return s.name
}

// SiteURL returns the marketplace's homepage
func (s *MockSource) SiteURL() string {
	return s.siteURL
}

// Search generates listings for the zip's resolved city and state
func (s *MockSource) Search(ctx context.Context, zip string, radius int) ([]listing.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc := s.resolver.Resolve(zip)
	templates := mockTemplates[s.name]
	if len(templates) == 0 {
		return nil, nil
	}

	seed := int64(0)
	for _, c := range zip + s.name {
		seed = seed*31 + int64(c)
	}
	rnd := rand.New(rand.NewSource(seed))

	if radius < 1 {
		radius = 1
	}

	prefix := strings.ToLower(strings.ReplaceAll(s.name, " ", "")) + "-"
	today := time.Now().Format("2006-01-02")

	results := make([]listing.Listing, 0, len(templates))
	for i, tpl := range templates {
		street := mockStreets[rnd.Intn(len(mockStreets))]
		number := 100 + rnd.Intn(9900)
		id := fmt.Sprintf("%s%s-%d", prefix, zip, i+1)

		results = append(results, listing.Listing{
			ID:           id,
			Title:        tpl.title,
			Address:      fmt.Sprintf("%d %s", number, street),
			City:         loc.City,
			State:        loc.State,
			ZipCode:      zip,
			StartDate:    today,
			EndDate:      today,
			StartTime:    "09:00",
			EndTime:      "17:00",
			Description:  tpl.description,
			Preview:      helpers.FirstSentence(tpl.description),
			Source:       s.name,
			URL:          fmt.Sprintf("%s/item/%s-%d", s.siteURL, zip, i+1),
			PhotoCount:   rnd.Intn(10),
			Distance:     float64(rnd.Intn(radius*10+1)) / 10,
			DistanceUnit: "mi",
			Price:        tpl.price,
		})
	}

	s.log.Debug().Str("zip", zip).Int("count", len(results)).Msg("Generated area listings")
	return results, nil
}

var _ Source = (*MockSource)(nil)
