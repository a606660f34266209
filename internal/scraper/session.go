package scraper

import (
	"context"
	"sync"

	"github.com/chromedp/chromedp"

	"github.com/Devaaron7/garage-sale-finder/config"
	"github.com/Devaaron7/garage-sale-finder/logger"
	"github.com/Devaaron7/garage-sale-finder/pkg/errors"
)

// SessionState tracks the lifecycle of a browser session
type SessionState int

const (
	SessionCreated SessionState = iota
	SessionActive
	SessionClosed
)

// Session is one live automation handle. It is exclusively owned by a single
// scrape attempt; the navigator and locator only borrow its context.
type Session interface {
	// Context returns the tab context all page operations run against
	Context() context.Context

	// Release tears the session down. Safe to call more than once; only the
	// first call does work.
	Release()
}

// SessionFactory creates sessions. The retry orchestrator is the only
// component that acquires and releases them.
type SessionFactory interface {
	Acquire(ctx context.Context) (Session, error)
}

// BrowserSession wraps a dedicated Chrome process and tab
type BrowserSession struct {
	tabCtx  context.Context
	cancels []context.CancelFunc
	state   SessionState
	mu      sync.Mutex
}

// Context returns the tab context
func (s *BrowserSession) Context() context.Context {
	return s.tabCtx
}

// Release closes the tab and kills the browser process
func (s *BrowserSession) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionClosed {
		return
	}
	s.state = SessionClosed
	// Cancel in reverse acquisition order: tab first, then allocator
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}

// SessionManager launches browser sessions from a fixed configuration
// snapshot taken at construction time.
type SessionManager struct {
	browser config.BrowserConfig
	log     *logger.Logger
}

// NewSessionManager creates a session manager
func NewSessionManager(browser config.BrowserConfig) *SessionManager {
	return &SessionManager{
		browser: browser,
		log:     logger.ForScraper(),
	}
}

// Acquire launches a fresh Chrome process with a dedicated tab. Every
// successful acquisition must be paired with exactly one Release.
func (m *SessionManager) Acquire(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", m.browser.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(m.browser.UserAgent),
		chromedp.WindowSize(m.browser.WindowWidth, m.browser.WindowHeight),
	)
	if m.browser.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(m.browser.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	session := &BrowserSession{
		tabCtx:  tabCtx,
		cancels: []context.CancelFunc{cancelAlloc, cancelTab},
		state:   SessionCreated,
	}

	// Running an empty task forces the browser process to start, surfacing
	// missing-binary and version-mismatch failures here instead of on the
	// first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		session.Release()
		return nil, errors.NewSession("browser", "failed to launch browser", err)
	}

	session.mu.Lock()
	session.state = SessionActive
	session.mu.Unlock()

	m.log.Debug().
		Bool("headless", m.browser.Headless).
		Int("width", m.browser.WindowWidth).
		Int("height", m.browser.WindowHeight).
		Msg("Browser session acquired")

	return session, nil
}
