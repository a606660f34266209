package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleListingHTML = `
<div class="listing" data-id="12345" itemscope itemtype="http://schema.org/Event">
  <div class="thumb"><img src="/photos/12345-thumb.jpg"></div>
  <span class="photo-count">8</span>
  <h2><a class="sale-title" href="/sale/12345-huge-moving-sale">Huge Moving Sale</a></h2>
  <span class="sale-type">Moving Sale</span>
  <div itemprop="address" itemscope itemtype="http://schema.org/PostalAddress">
    <span itemprop="streetAddress">&#xf041; 123 Main St</span>
    <span itemprop="addressLocality">Miami</span>,
    <span itemprop="addressRegion">FL</span>
    <span itemprop="postalCode">33101</span>
  </div>
  <meta itemprop="startDate" content="2026-08-29">
  <meta itemprop="endDate" content="2026-08-30">
  <p itemprop="description">Everything must go. Furniture, tools, kitchenware and more.</p>
</div>`

func TestExtractAllFields(t *testing.T) {
	part, err := NewExtractor().Extract(sampleListingHTML)
	assert.NoError(t, err)

	assert.Equal(t, "12345", part[FieldID])
	assert.Equal(t, "Huge Moving Sale", part[FieldTitle])
	assert.Equal(t, "123 Main St", part[FieldAddress], "leading icon token should be stripped")
	assert.Equal(t, "Miami", part[FieldCity])
	assert.Equal(t, "FL", part[FieldState])
	assert.Equal(t, "33101", part[FieldZip])
	assert.Equal(t, "2026-08-29", part[FieldStartDate])
	assert.Equal(t, "2026-08-30", part[FieldEndDate])
	assert.Equal(t, "Moving Sale", part[FieldSaleType])
	assert.Equal(t, "Everything must go. Furniture, tools, kitchenware and more.", part[FieldDescription])
	assert.Equal(t, "/sale/12345-huge-moving-sale", part[FieldURL])
	assert.Equal(t, "/photos/12345-thumb.jpg", part[FieldImage])
	assert.Equal(t, "8", part[FieldPhotoCount])
}

func TestExtractMissingFieldsYieldFallbacks(t *testing.T) {
	// A listing with no image, no photo count and no description. Missing
	// fields must default in isolation without affecting the others.
	html := `
<div class="listing" data-id="777">
  <h2><a class="sale-title" href="/sale/777">Yard Sale</a></h2>
  <span itemprop="streetAddress">45 Oak Ave</span>
  <span itemprop="addressLocality">Tampa</span>
  <span itemprop="addressRegion">FL</span>
</div>`

	part, err := NewExtractor().Extract(html)
	assert.NoError(t, err)

	assert.Equal(t, "777", part[FieldID])
	assert.Equal(t, "Yard Sale", part[FieldTitle])
	assert.Equal(t, "", part[FieldImage], "missing image yields empty, never a placeholder path")
	assert.Equal(t, "0", part[FieldPhotoCount])
	assert.Equal(t, "", part[FieldDescription])
	assert.Equal(t, "", part[FieldStartDate])
}

func TestExtractTruncatesLongDescriptions(t *testing.T) {
	long := strings.Repeat("a", 300)
	html := `<div class="listing" data-id="1"><p itemprop="description">` + long + `</p></div>`

	part, err := NewExtractor().Extract(html)
	assert.NoError(t, err)

	assert.Len(t, part[FieldDescription], 203)
	assert.True(t, strings.HasSuffix(part[FieldDescription], "..."))
}

func TestExtractAddressWithoutIconKeptIntact(t *testing.T) {
	// A bare single-token address has nothing to strip.
	html := `<div class="listing" data-id="1"><span itemprop="streetAddress">Downtown</span></div>`

	part, err := NewExtractor().Extract(html)
	assert.NoError(t, err)
	assert.Equal(t, "Downtown", part[FieldAddress])
}

func TestExtractAllSkipsNothingOnGoodInput(t *testing.T) {
	parts := NewExtractor().ExtractAll([]string{sampleListingHTML, sampleListingHTML})
	assert.Len(t, parts, 2)
}

func TestExtractAllEmptyInput(t *testing.T) {
	parts := NewExtractor().ExtractAll(nil)
	assert.Empty(t, parts)
}
