package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Devaaron7/garage-sale-finder/helpers"
	"github.com/Devaaron7/garage-sale-finder/internal/listing"
	"github.com/Devaaron7/garage-sale-finder/logger"
	"github.com/Devaaron7/garage-sale-finder/pkg/errors"
	"github.com/Devaaron7/garage-sale-finder/services/location"
)

// CraigslistSource searches the garage-sale section of the regional
// craigslist site. Craigslist serves a static search page, so plain HTTP
// with browser-like headers is enough; no browser session is involved.
type CraigslistSource struct {
	// urlTemplate receives the regional subdomain, e.g.
	// "https://%s.craigslist.org/search/gms"
	urlTemplate string
	resolver    *location.Resolver
	log         *logger.Logger
}

func NewCraigslistSource(urlTemplate string, resolver *location.Resolver) *CraigslistSource {
	return &CraigslistSource{
		urlTemplate: urlTemplate,
		resolver:    resolver,
		log:         logger.ForSource(listing.SourceCraigslist),
	}
}

func (s *CraigslistSource) Name() string {
	return listing.SourceCraigslist
}

// SiteURL returns the craigslist homepage; regional subdomains are derived
// per search.
func (s *CraigslistSource) SiteURL() string {
	return "https://www.craigslist.org"
}

// subdomain derives the regional craigslist subdomain from a city name.
// Craigslist regions are lowercase city names with spaces removed; cities
// without their own region fall through to the nearest metro the site
// redirects to.
func subdomain(city string) string {
	return strings.ToLower(strings.ReplaceAll(city, " ", ""))
}

// Search fetches and parses the regional garage-sale search page
func (s *CraigslistSource) Search(ctx context.Context, zip string, radius int) ([]listing.Listing, error) {
	loc := s.resolver.Resolve(zip)
	url := fmt.Sprintf(s.urlTemplate, subdomain(loc.City))

	s.log.Debug().Str("zip", zip).Str("url", url).Msg("Fetching search page")
	body, err := helpers.FetchWithRandomHeaders(url)
	if err != nil {
		return nil, errors.NewNetwork(listing.SourceCraigslist, "fetch search page", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.NewParsing(listing.SourceCraigslist, "parse search page", err)
	}

	results := s.parse(doc, loc, zip)
	s.log.Info().Str("zip", zip).Int("count", len(results)).Msg("Search complete")
	return results, nil
}

func (s *CraigslistSource) parse(doc *goquery.Document, loc location.Location, zip string) []listing.Listing {
	var results []listing.Listing
	doc.Find("li.cl-static-search-result").Each(func(i int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(".title").Text())
		href, _ := sel.Find("a").First().Attr("href")
		if title == "" || href == "" {
			return
		}

		// Post ids sit in the last path segment of the detail URL.
		trimmed := strings.TrimSuffix(href, ".html")
		id, err := helpers.GetSplitPart(trimmed, "/", strings.Count(trimmed, "/"))
		if err != nil || id == "" {
			id = fmt.Sprintf("%d", i)
		}

		price := strings.TrimSpace(sel.Find(".price").Text())
		if price == "" {
			price = "Unknown"
		}
		loca := strings.TrimSpace(sel.Find(".location").Text())
		if loca == "" {
			loca = loc.City
		}

		results = append(results, listing.Listing{
			ID:           "craigslist-" + id,
			Title:        title,
			Address:      loca,
			City:         loc.City,
			State:        loc.State,
			ZipCode:      zip,
			StartDate:    todayDate(),
			EndDate:      todayDate(),
			StartTime:    "09:00",
			EndTime:      "17:00",
			Description:  title,
			Preview:      helpers.FirstSentence(title),
			Source:       listing.SourceCraigslist,
			URL:          href,
			PhotoCount:   0,
			DistanceUnit: "mi",
			Price:        price,
		})
	})
	return results
}

// todayDate formats today in the ISO form the API surface uses. Craigslist
// posts carry no structured sale dates, so listings default to today.
func todayDate() string {
	return time.Now().Format("2006-01-02")
}

var _ Source = (*CraigslistSource)(nil)
