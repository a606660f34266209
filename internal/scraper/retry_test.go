package scraper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Devaaron7/garage-sale-finder/internal/listing"
	scraperrors "github.com/Devaaron7/garage-sale-finder/pkg/errors"
)

type fakeSession struct {
	id       int
	mu       sync.Mutex
	released int
}

func (s *fakeSession) Context() context.Context { return context.Background() }

func (s *fakeSession) Release() {
	s.mu.Lock()
	s.released++
	s.mu.Unlock()
}

type fakeFactory struct {
	mu       sync.Mutex
	acquires int
	sessions []*fakeSession
	err      error
}

func (f *fakeFactory) Acquire(ctx context.Context) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquires++
	if f.err != nil {
		return nil, f.err
	}
	s := &fakeSession{id: len(f.sessions) + 1}
	f.sessions = append(f.sessions, s)
	return s, nil
}

func retryableErr() error {
	return scraperrors.NewNavigation("gsalr", "results", "navigation step failed",
		fmt.Errorf("timeout waiting for listing container"))
}

func terminalErr() error {
	return scraperrors.NewParsing("gsalr", "parse listing markup", fmt.Errorf("bad markup"))
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	factory := &fakeFactory{}
	o := NewOrchestrator(factory, 3, time.Millisecond)

	want := []listing.Listing{{ID: "gsalr-1", Title: "Sale"}}
	got, err := o.Run(context.Background(), func(ctx context.Context, s Session) ([]listing.Listing, error) {
		return want, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, factory.sessions, 1)
	assert.Equal(t, 1, factory.sessions[0].released)
}

func TestRetryFreshSessionPerAttempt(t *testing.T) {
	factory := &fakeFactory{}
	o := NewOrchestrator(factory, 3, time.Millisecond)

	var seen []Session
	got, err := o.Run(context.Background(), func(ctx context.Context, s Session) ([]listing.Listing, error) {
		seen = append(seen, s)
		if len(seen) < 3 {
			return nil, retryableErr()
		}
		return []listing.Listing{{ID: "gsalr-1"}}, nil
	})

	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Len(t, factory.sessions, 3)
	assert.NotSame(t, seen[0], seen[1], "each attempt must get a fresh session")
	assert.NotSame(t, seen[1], seen[2])
	for i, s := range factory.sessions {
		assert.Equal(t, 1, s.released, "session %d must be released exactly once", i+1)
	}
}

func TestRetryExhaustsAttemptBudget(t *testing.T) {
	factory := &fakeFactory{}
	o := NewOrchestrator(factory, 3, time.Millisecond)

	attempts := 0
	_, err := o.Run(context.Background(), func(ctx context.Context, s Session) ([]listing.Listing, error) {
		attempts++
		return nil, retryableErr()
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scrape failed")
	assert.Equal(t, 3, attempts)
	assert.Len(t, factory.sessions, 3)
	for _, s := range factory.sessions {
		assert.Equal(t, 1, s.released)
	}
}

func TestRetryTerminalFailureAbortsImmediately(t *testing.T) {
	factory := &fakeFactory{}
	o := NewOrchestrator(factory, 3, time.Millisecond)

	attempts := 0
	_, err := o.Run(context.Background(), func(ctx context.Context, s Session) ([]listing.Listing, error) {
		attempts++
		return nil, terminalErr()
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts, "terminal failures must not consume further attempts")

	var se *scraperrors.ScrapeError
	assert.ErrorAs(t, err, &se, "the underlying failure must survive wrapping")
	assert.Equal(t, scraperrors.ErrorTypeParsing, se.Type)
}

func TestRetrySessionAcquisitionFailureIsClassified(t *testing.T) {
	// A missing browser binary is not retryable; a dropped connection is.
	factory := &fakeFactory{err: scraperrors.NewSession("browser", "failed to launch browser",
		fmt.Errorf("exec: no such file or directory"))}
	o := NewOrchestrator(factory, 3, time.Millisecond)

	_, err := o.Run(context.Background(), func(ctx context.Context, s Session) ([]listing.Listing, error) {
		t.Fatal("attempt must not run without a session")
		return nil, nil
	})
	assert.Error(t, err)
	assert.Equal(t, 1, factory.acquires, "a missing binary never improves on retry")

	factory = &fakeFactory{err: scraperrors.NewSession("browser", "failed to launch browser",
		fmt.Errorf("browser disconnected"))}
	o = NewOrchestrator(factory, 2, time.Millisecond)

	_, err = o.Run(context.Background(), func(ctx context.Context, s Session) ([]listing.Listing, error) {
		return nil, nil
	})
	assert.Error(t, err)
	assert.Equal(t, 2, factory.acquires, "transient launch failures consume the attempt budget")
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	factory := &fakeFactory{}
	o := NewOrchestrator(factory, 3, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := o.Run(ctx, func(ctx context.Context, s Session) ([]listing.Listing, error) {
			attempts++
			cancel()
			return nil, retryableErr()
		})
		assert.Error(t, err)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("orchestrator must abandon the backoff when the context is cancelled")
	}
	assert.Equal(t, 1, attempts)
}

func TestRetryExpiredContextBlocksNewAttempts(t *testing.T) {
	factory := &fakeFactory{}
	o := NewOrchestrator(factory, 3, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, func(ctx context.Context, s Session) ([]listing.Listing, error) {
		t.Fatal("no attempt may start on an expired context")
		return nil, nil
	})
	assert.Error(t, err)
	assert.Empty(t, factory.sessions)
}
