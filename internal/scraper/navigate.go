package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Devaaron7/garage-sale-finder/config"
	"github.com/Devaaron7/garage-sale-finder/logger"
	"github.com/Devaaron7/garage-sale-finder/pkg/errors"
)

// NavState is one state of the page-navigation machine
type NavState string

const (
	StateStart                NavState = "Start"
	StateHomepageLoaded       NavState = "HomepageLoaded"
	StateLocationSubmitted    NavState = "LocationSubmitted"
	StateInterstitialResolved NavState = "InterstitialResolved"
	StateResultsReady         NavState = "ResultsReady"
	StateFailed               NavState = "Failed"
)

// Step names carried in failure reasons
const (
	stepHomepage     = "homepage"
	stepSubmit       = "submit-location"
	stepInterstitial = "interstitial"
	stepResults      = "results"
)

// browserOps executes the page operations the navigator sequences. The
// default implementation drives chromedp; tests substitute a recorder the
// same way the locator takes an injected probe.
type browserOps interface {
	// Navigate loads a URL and waits for the document body
	Navigate(ctx context.Context, url string) error

	// Fill clears the target and types the value into it
	Fill(ctx context.Context, target Strategy, value string) error

	// Click activates the target
	Click(ctx context.Context, target Strategy) error

	// Reload reloads the current page
	Reload(ctx context.Context) error

	// Settle waits out a post-action delay
	Settle(ctx context.Context, d time.Duration) error

	// Capture returns the outerHTML of every element matching the target
	Capture(ctx context.Context, target Strategy) ([]string, error)
}

// chromeOps is the live browserOps implementation
type chromeOps struct{}

func (chromeOps) Navigate(ctx context.Context, url string) error {
	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (chromeOps) Fill(ctx context.Context, target Strategy, value string) error {
	return chromedp.Run(ctx,
		chromedp.SetValue(target.Expression, "", queryOption(target.Kind)),
		chromedp.SendKeys(target.Expression, value, queryOption(target.Kind)),
	)
}

func (chromeOps) Click(ctx context.Context, target Strategy) error {
	return chromedp.Run(ctx, chromedp.Click(target.Expression, queryOption(target.Kind)))
}

func (chromeOps) Reload(ctx context.Context) error {
	return chromedp.Run(ctx, chromedp.Reload())
}

func (chromeOps) Settle(ctx context.Context, d time.Duration) error {
	return chromedp.Run(ctx, chromedp.Sleep(d))
}

func (chromeOps) Capture(ctx context.Context, target Strategy) ([]string, error) {
	var htmls []string
	err := chromedp.Run(ctx, chromedp.Evaluate(
		fmt.Sprintf(`Array.from(document.querySelectorAll(%q)).map(el => el.outerHTML)`, target.Expression),
		&htmls,
	))
	return htmls, err
}

// Navigator drives the browser through the target site's multi-step flow:
//
//	Start -> HomepageLoaded -> LocationSubmitted -> InterstitialResolved -> ResultsReady
//
// Any required step exceeding its timeout ends the run in Failed with the
// step name and the underlying cause. The navigator never retries
// internally; retry is the orchestrator's job, applied to the whole run.
//
// A Navigator holds only immutable configuration; per-run state lives on
// the call stack, so one Navigator serves concurrent searches safely.
type Navigator struct {
	url     string
	nav     config.NavigationConfig
	locator *Locator
	slots   map[string]Slot
	ops     browserOps
	log     *logger.Logger
}

// NewNavigator creates a navigator for the GSALR flow
func NewNavigator(url string, nav config.NavigationConfig, locator *Locator) *Navigator {
	return newNavigatorWithOps(url, nav, locator, chromeOps{})
}

// newNavigatorWithOps is the test seam
func newNavigatorWithOps(url string, nav config.NavigationConfig, locator *Locator, ops browserOps) *Navigator {
	return &Navigator{
		url:     url,
		nav:     nav,
		locator: locator,
		slots:   gsalrSlots(),
		ops:     ops,
		log:     logger.ForScraper(),
	}
}

// Run drives one full navigation and returns the outerHTML of every listing
// node on the results page. The session is borrowed, never owned: the caller
// remains responsible for releasing it.
func (n *Navigator) Run(session Session, zip string) ([]string, error) {
	tabCtx := session.Context()
	state := StateStart

	if err := n.loadHomepage(tabCtx); err != nil {
		return nil, n.fail(state, stepHomepage, err)
	}
	state = StateHomepageLoaded

	if err := n.submitLocation(tabCtx, zip); err != nil {
		return nil, n.fail(state, stepSubmit, err)
	}
	state = StateLocationSubmitted

	if err := n.resolveInterstitial(tabCtx, zip); err != nil {
		return nil, n.fail(state, stepInterstitial, err)
	}
	state = StateInterstitialResolved

	htmls, err := n.awaitResults(tabCtx)
	if err != nil {
		return nil, n.fail(state, stepResults, err)
	}
	state = StateResultsReady

	n.log.Info().Str("state", string(state)).Int("listings", len(htmls)).Msg("Results page ready")
	return htmls, nil
}

// fail builds the terminal error for a failed required step
func (n *Navigator) fail(from NavState, step string, err error) error {
	n.log.Warn().
		Str("state", string(from)).
		Str("step", step).
		Err(err).
		Msg("Navigation failed")
	return errors.NewNavigation("gsalr", step, "navigation step failed", err)
}

// loadHomepage navigates to the target URL and waits for the document body
func (n *Navigator) loadHomepage(tabCtx context.Context) error {
	ctx, cancel := context.WithTimeout(tabCtx, n.nav.PageLoadTimeout)
	defer cancel()
	return n.ops.Navigate(ctx, n.url)
}

// submitLocation fills the location input with the zip code and activates
// the submit control. Both controls are resolved through their fallback
// chains because the markup differs between first and returning visits.
func (n *Navigator) submitLocation(tabCtx context.Context, zip string) error {
	input, err := n.locator.LocateFirst(tabCtx, n.slots[SlotLocationInput], n.nav.SlotTimeout)
	if err != nil {
		return fmt.Errorf("location input: %w", err)
	}

	ctx, cancel := context.WithTimeout(tabCtx, n.nav.SlotTimeout)
	err = n.ops.Fill(ctx, input, zip)
	cancel()
	if err != nil {
		return fmt.Errorf("enter zip code: %w", err)
	}

	submit, err := n.locator.LocateFirst(tabCtx, n.slots[SlotSubmitControl], n.nav.SlotTimeout)
	if err != nil {
		return fmt.Errorf("submit control: %w", err)
	}

	ctx, cancel = context.WithTimeout(tabCtx, n.nav.SlotTimeout)
	err = n.ops.Click(ctx, submit)
	if err == nil {
		err = n.ops.Settle(ctx, n.nav.SubmitDelay)
	}
	cancel()
	if err != nil {
		return fmt.Errorf("activate submit: %w", err)
	}
	return nil
}

// resolveInterstitial handles the site's non-deterministic popup behavior.
// When the subscription dialog is present it is dismissed in place. When it
// is absent the page is reloaded to shake off late popups, which drops the
// homepage state, so the location must be submitted again before moving on.
func (n *Navigator) resolveInterstitial(tabCtx context.Context, zip string) error {
	_, err := n.locator.LocateFirst(tabCtx, n.slots[SlotSubscribeForm], n.nav.PopupTimeout)
	if err == nil {
		n.log.Debug().Msg("Subscription dialog detected, dismissing")
		n.dismissPopup(tabCtx)
		return nil
	}

	n.log.Debug().Msg("No subscription dialog, reloading and re-submitting location")
	ctx, cancel := context.WithTimeout(tabCtx, n.nav.PageLoadTimeout)
	err = n.ops.Reload(ctx)
	if err == nil {
		err = n.ops.Settle(ctx, n.nav.ReloadDelay)
	}
	cancel()
	if err != nil {
		return fmt.Errorf("reload page: %w", err)
	}

	if err := n.submitLocation(tabCtx, zip); err != nil {
		return fmt.Errorf("re-submit after reload: %w", err)
	}

	// The popup may still appear after the second submit; its absence is
	// tolerated either way.
	n.dismissPopup(tabCtx)
	return nil
}

// dismissPopup closes the reveal-modal popup when present. Absence of the
// close control is tolerated, never fatal.
func (n *Navigator) dismissPopup(tabCtx context.Context) {
	closeCtl, err := n.locator.LocateFirst(tabCtx, n.slots[SlotPopupClose], n.nav.PopupTimeout)
	if err != nil {
		n.log.Debug().Msg("No popup close control found")
		return
	}
	ctx, cancel := context.WithTimeout(tabCtx, n.nav.PopupTimeout)
	defer cancel()
	if err := n.ops.Click(ctx, closeCtl); err != nil {
		n.log.Debug().Err(err).Msg("Popup close click failed")
		return
	}
	if err := n.ops.Settle(ctx, n.nav.PopupCloseDelay); err != nil {
		return
	}
	n.log.Debug().Msg("Popup dismissed")
}

// awaitResults waits for the listing container slot and captures the
// outerHTML of every matched node. Zero matches after the timeout is fatal
// for this attempt and escalates to the orchestrator.
func (n *Navigator) awaitResults(tabCtx context.Context) ([]string, error) {
	container, err := n.locator.LocateFirst(tabCtx, n.slots[SlotListingContainer], n.nav.ResultsTimeout)
	if err != nil {
		return nil, fmt.Errorf("timeout waiting for listing container: %w", err)
	}

	ctx, cancel := context.WithTimeout(tabCtx, n.nav.SlotTimeout)
	defer cancel()
	htmls, err := n.ops.Capture(ctx, container)
	if err != nil {
		return nil, fmt.Errorf("capture listing nodes: %w", err)
	}
	if len(htmls) == 0 {
		return nil, fmt.Errorf("timeout waiting for listing container: zero nodes captured")
	}
	return htmls, nil
}
