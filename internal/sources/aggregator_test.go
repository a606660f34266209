package sources

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Devaaron7/garage-sale-finder/internal/listing"
)

type stubSource struct {
	name    string
	siteURL string
	results []listing.Listing
	err     error
	delay   time.Duration
	calls   int32
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) SiteURL() string { return s.siteURL }

func (s *stubSource) Search(ctx context.Context, zip string, radius int) ([]listing.Listing, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.results, s.err
}

func TestAggregatorMergesAllSources(t *testing.T) {
	a := NewAggregator(
		&stubSource{name: "GSALR", results: []listing.Listing{{ID: "gsalr-1", Distance: 2.5}}},
		&stubSource{name: "Craigslist", results: []listing.Listing{{ID: "craigslist-1", Distance: 1.0}}},
	)

	got := a.Search(context.Background(), "33101", 10)
	assert.Len(t, got, 2)
}

func TestAggregatorFailingSourceDegradesToEmpty(t *testing.T) {
	good := &stubSource{name: "GSALR", results: []listing.Listing{{ID: "gsalr-1"}}}
	bad := &stubSource{name: "Craigslist", err: fmt.Errorf("fetch failed")}

	a := NewAggregator(good, bad)
	got := a.Search(context.Background(), "33101", 10)

	assert.Len(t, got, 1)
	assert.Equal(t, "gsalr-1", got[0].ID)
}

func TestAggregatorAllSourcesFailYieldsEmptySlice(t *testing.T) {
	a := NewAggregator(
		&stubSource{name: "GSALR", err: fmt.Errorf("scrape failed")},
		&stubSource{name: "Craigslist", err: fmt.Errorf("fetch failed")},
	)

	got := a.Search(context.Background(), "33101", 10)
	assert.NotNil(t, got, "callers must receive an empty slice, never nil")
	assert.Empty(t, got)
}

func TestAggregatorSortsByDistanceUnknownLast(t *testing.T) {
	a := NewAggregator(&stubSource{name: "GSALR", results: []listing.Listing{
		{ID: "far", Distance: 9.5},
		{ID: "unknown-a", Distance: 0},
		{ID: "near", Distance: 1.2},
		{ID: "unknown-b", Distance: 0},
	}})

	got := a.Search(context.Background(), "33101", 10)
	assert.Equal(t, []string{"near", "far", "unknown-a", "unknown-b"},
		[]string{got[0].ID, got[1].ID, got[2].ID, got[3].ID},
		"unknown distances sort last, in stable input order")
}

func TestAggregatorRunsSourcesConcurrently(t *testing.T) {
	delay := 50 * time.Millisecond
	a := NewAggregator(
		&stubSource{name: "A", delay: delay},
		&stubSource{name: "B", delay: delay},
		&stubSource{name: "C", delay: delay},
	)

	start := time.Now()
	a.Search(context.Background(), "33101", 10)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 3*delay, "sources must run in parallel, not sequentially")
}

func TestAggregatorSearchSource(t *testing.T) {
	gsalr := &stubSource{name: "GSALR", results: []listing.Listing{{ID: "gsalr-1"}}}
	ebay := &stubSource{name: "eBay Local", results: []listing.Listing{{ID: "ebaylocal-1"}}}
	a := NewAggregator(gsalr, ebay)

	got := a.SearchSource(context.Background(), "ebaylocal", "33101", 10)
	assert.Len(t, got, 1)
	assert.Equal(t, "ebaylocal-1", got[0].ID)
	assert.Zero(t, atomic.LoadInt32(&gsalr.calls), "only the requested source runs")

	got = a.SearchSource(context.Background(), "nope", "33101", 10)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregatorSources(t *testing.T) {
	a := NewAggregator(
		&stubSource{name: "GSALR", siteURL: "https://www.gsalr.com"},
		&stubSource{name: "eBay Local", siteURL: "https://www.ebay.com"},
	)

	descs := a.Sources()
	assert.Len(t, descs, 2)
	assert.Equal(t, "gsalr", descs[0].ID)
	assert.Equal(t, "ebaylocal", descs[1].ID)
	assert.Equal(t, "https://www.gsalr.com", descs[0].URL)
	assert.Equal(t, "https://www.ebay.com", descs[1].URL)
	assert.True(t, descs[0].Enabled)
}
