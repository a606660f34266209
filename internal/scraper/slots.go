package scraper

// SelectorKind identifies how a strategy expression is interpreted
type SelectorKind string

const (
	KindCSS   SelectorKind = "css"
	KindXPath SelectorKind = "xpath"
)

// Strategy is one way of resolving a slot to a concrete element
type Strategy struct {
	Kind       SelectorKind
	Expression string
}

// Slot is a named logical page target resolved through an ordered list of
// strategies. The target site restructures its markup between deployments
// and between first/returning-visitor states, so robustness comes from the
// fallback chain rather than any single selector.
type Slot struct {
	Name       string
	Strategies []Strategy
}

// Slot names used by the navigation flow
const (
	SlotLocationInput    = "LOCATION_INPUT"
	SlotSubmitControl    = "SUBMIT_CONTROL"
	SlotSubscribeForm    = "SUBSCRIBE_FORM"
	SlotPopupClose       = "POPUP_CLOSE"
	SlotListingContainer = "LISTING_CONTAINER"
)

// gsalrSlots returns the slot registry for the GSALR scrape flow. The
// navigator supplies per-step timeouts from its configuration.
func gsalrSlots() map[string]Slot {
	return map[string]Slot{
		SlotLocationInput: {
			Name: SlotLocationInput,
			Strategies: []Strategy{
				{KindCSS, `input.city-loc-set`},
				{KindCSS, `input[placeholder="City or Zip"]`},
				{KindCSS, `#city-loc-set`},
				{KindCSS, `input[type="text"]`},
			},
		},
		SlotSubmitControl: {
			Name: SlotSubmitControl,
			Strategies: []Strategy{
				{KindCSS, `a.button.postfix.radius.button-city-loc-set`},
				{KindCSS, `a.button`},
				{KindCSS, `button[type="submit"]`},
				{KindCSS, `input[type="submit"]`},
			},
		},
		SlotSubscribeForm: {
			Name: SlotSubscribeForm,
			Strategies: []Strategy{
				{KindCSS, `#subscribeForm`},
			},
		},
		SlotPopupClose: {
			Name: SlotPopupClose,
			Strategies: []Strategy{
				{KindXPath, `(//div[@class='close-reveal-modal'])[2]`},
				{KindCSS, `div.close-reveal-modal`},
			},
		},
		SlotListingContainer: {
			Name: SlotListingContainer,
			Strategies: []Strategy{
				{KindCSS, `div[class*="listing"]`},
				{KindCSS, `[itemscope][itemtype*="Event"]`},
			},
		},
	}
}
