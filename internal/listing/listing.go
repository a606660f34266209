package listing

// Source identifiers. Listing IDs are prefixed with the lowercase source id
// so records from different sources can never collide.
const (
	SourceGSALR      = "GSALR"
	SourceCraigslist = "Craigslist"
	SourceEbayLocal  = "eBay Local"
	SourceMercari    = "Mercari"
	SourceOfferUp    = "OfferUp"
)

// Listing is the canonical garage sale record returned by every source.
// Optional fields absent on the source page carry their documented defaults;
// none are ever left empty of a marker the presentation layer cannot handle.
type Listing struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	ZipCode      string  `json:"zipCode"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	Description  string  `json:"description"`
	Preview      string  `json:"preview,omitempty"`
	Source       string  `json:"source"`
	URL          string  `json:"url,omitempty"`
	ImageURL     string  `json:"imageUrl"`
	PhotoCount   int     `json:"photoCount"`
	Distance     float64 `json:"distance,omitempty"`
	DistanceUnit string  `json:"distanceUnit,omitempty"`
	Price        string  `json:"price,omitempty"`
}

// DataSource describes one search backend exposed to the API
type DataSource struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}
