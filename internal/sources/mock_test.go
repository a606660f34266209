package sources

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Devaaron7/garage-sale-finder/internal/listing"
)

func TestMockSourceGeneratesAreaListings(t *testing.T) {
	s := NewMockSource(listing.SourceEbayLocal, "https://www.ebay.com", staticResolver(t))

	got, err := s.Search(context.Background(), "33101", 10)
	assert.NoError(t, err)
	assert.Len(t, got, 3)

	for _, l := range got {
		assert.True(t, strings.HasPrefix(l.ID, "ebaylocal-"), "id %q", l.ID)
		assert.Equal(t, "Miami", l.City)
		assert.Equal(t, "FL", l.State)
		assert.Equal(t, "33101", l.ZipCode)
		assert.Equal(t, listing.SourceEbayLocal, l.Source)
		assert.NotEmpty(t, l.Title)
		assert.NotEmpty(t, l.Address)
		assert.NotEmpty(t, l.Price)
		assert.LessOrEqual(t, l.Distance, 10.0)
	}
}

func TestMockSourceDeterministicPerZip(t *testing.T) {
	s := NewMockSource(listing.SourceMercari, "https://www.mercari.com", staticResolver(t))

	first, err := s.Search(context.Background(), "33101", 10)
	assert.NoError(t, err)
	second, err := s.Search(context.Background(), "33101", 10)
	assert.NoError(t, err)
	assert.Equal(t, first, second, "repeated searches for a zip return identical results")

	other, err := s.Search(context.Background(), "60601", 10)
	assert.NoError(t, err)
	assert.NotEqual(t, first[0].Address, other[0].Address)
	assert.Equal(t, "Chicago", other[0].City)
}

func TestMockSourcesDifferPerMarketplace(t *testing.T) {
	ebay := NewMockSource(listing.SourceEbayLocal, "https://www.ebay.com", staticResolver(t))
	offerup := NewMockSource(listing.SourceOfferUp, "https://offerup.com", staticResolver(t))

	a, _ := ebay.Search(context.Background(), "33101", 10)
	b, _ := offerup.Search(context.Background(), "33101", 10)
	assert.NotEqual(t, a[0].Title, b[0].Title)
}

func TestMockSourceCancelledContext(t *testing.T) {
	s := NewMockSource(listing.SourceOfferUp, "https://offerup.com", staticResolver(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Search(ctx, "33101", 10)
	assert.Error(t, err)
}
