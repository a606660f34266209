package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Devaaron7/garage-sale-finder/helpers"
	"github.com/Devaaron7/garage-sale-finder/logger"
	"github.com/Devaaron7/garage-sale-finder/pkg/errors"
)

// PartialListing holds the raw extracted field values for one listing node.
// Values are strings exactly as read from the markup; normalization and
// defaulting happen downstream.
type PartialListing map[string]string

// Field names produced by the extractor
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldAddress     = "address"
	FieldCity        = "city"
	FieldState       = "state"
	FieldZip         = "zip"
	FieldStartDate   = "startDate"
	FieldEndDate     = "endDate"
	FieldSaleType    = "saleType"
	FieldDescription = "description"
	FieldURL         = "url"
	FieldImage       = "image"
	FieldPhotoCount  = "photoCount"
)

// extractMode selects how a rule reads its value from the selection
type extractMode int

const (
	modeText extractMode = iota
	modeAttr
)

// fieldRule is one declarative extraction rule. Selectors are tried in
// order; the first that yields a non-empty value wins.
type fieldRule struct {
	field     string
	selectors []string
	mode      extractMode
	attr      string
	fallback  string
	clean     func(string) string
}

// leadingIcon matches the decorative icon token the site prefixes street
// addresses with
var leadingIcon = regexp.MustCompile(`^\s*\S+\s+`)

func gsalrFieldRules() []fieldRule {
	return []fieldRule{
		{field: FieldID, selectors: []string{"[data-id]"}, mode: modeAttr, attr: "data-id"},
		{field: FieldTitle, selectors: []string{"h2 a.sale-title", "a.sale-title"}, mode: modeText},
		{field: FieldAddress, selectors: []string{`span[itemprop="streetAddress"]`}, mode: modeText,
			clean: func(s string) string {
				if strings.Contains(s, " ") {
					return strings.TrimSpace(leadingIcon.ReplaceAllString(s, ""))
				}
				return s
			}},
		{field: FieldCity, selectors: []string{`[itemprop="addressLocality"]`}, mode: modeText},
		{field: FieldState, selectors: []string{`[itemprop="addressRegion"]`}, mode: modeText},
		{field: FieldZip, selectors: []string{`[itemprop="postalCode"]`}, mode: modeText},
		{field: FieldStartDate, selectors: []string{`meta[itemprop="startDate"]`, `[itemprop="startDate"]`}, mode: modeAttr, attr: "content"},
		{field: FieldEndDate, selectors: []string{`meta[itemprop="endDate"]`, `[itemprop="endDate"]`}, mode: modeAttr, attr: "content"},
		{field: FieldSaleType, selectors: []string{".sale-type"}, mode: modeText},
		{field: FieldDescription, selectors: []string{`p[itemprop="description"]`, ".description"}, mode: modeText,
			clean: func(s string) string { return helpers.Truncate(s, 200) }},
		{field: FieldURL, selectors: []string{"h2 a.sale-title", "a.sale-title"}, mode: modeAttr, attr: "href"},
		{field: FieldImage, selectors: []string{".thumb img", "img"}, mode: modeAttr, attr: "src"},
		{field: FieldPhotoCount, selectors: []string{".photo-count"}, mode: modeText, fallback: "0"},
	}
}

// Extractor parses captured listing markup into partial listings. Every
// field is read in isolation: a rule that fails leaves its fallback value
// in place and never aborts the listing or the batch.
type Extractor struct {
	rules []fieldRule
	log   *logger.Logger
}

// NewExtractor creates an extractor with the GSALR field rules
func NewExtractor() *Extractor {
	return &Extractor{rules: gsalrFieldRules(), log: logger.ForScraper()}
}

// ExtractAll parses every captured listing node. Nodes whose markup cannot
// be parsed at all are skipped with a log line; they never poison the batch.
func (e *Extractor) ExtractAll(htmls []string) []PartialListing {
	out := make([]PartialListing, 0, len(htmls))
	for i, html := range htmls {
		part, err := e.Extract(html)
		if err != nil {
			e.log.Warn().Int("index", i).Err(err).Msg("Skipping unparseable listing node")
			continue
		}
		out = append(out, part)
	}
	return out
}

// Extract parses one listing node's markup into a partial listing
func (e *Extractor) Extract(html string) (PartialListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.NewParsing("gsalr", "parse listing markup", err)
	}

	// The captured fragment is wrapped into a full document by the parser;
	// the root element carries the listing's own attributes.
	root := doc.Find("body > *").First()
	if root.Length() == 0 {
		root = doc.Selection
	}

	part := make(PartialListing, len(e.rules))
	for _, rule := range e.rules {
		part[rule.field] = e.extractField(root, rule)
	}
	return part, nil
}

func (e *Extractor) extractField(root *goquery.Selection, rule fieldRule) string {
	for _, selector := range rule.selectors {
		sel := root.Find(selector)
		if sel.Length() == 0 {
			// The rule may target the root node itself (e.g. data-id on
			// the listing container).
			if root.Is(selector) {
				sel = root
			} else {
				continue
			}
		}

		var value string
		switch rule.mode {
		case modeAttr:
			value, _ = sel.First().Attr(rule.attr)
		default:
			value = strings.TrimSpace(sel.First().Text())
		}
		if value == "" {
			continue
		}
		if rule.clean != nil {
			value = rule.clean(value)
		}
		return value
	}
	return rule.fallback
}
