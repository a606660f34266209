package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Devaaron7/garage-sale-finder/internal/listing"
)

type stubAggregator struct {
	results     []listing.Listing
	lastZip     string
	lastRadius  int
	lastSource  string
	sourcesList []listing.DataSource
}

func (a *stubAggregator) Search(ctx context.Context, zip string, radius int) []listing.Listing {
	a.lastZip = zip
	a.lastRadius = radius
	a.lastSource = ""
	return a.results
}

func (a *stubAggregator) SearchSource(ctx context.Context, sourceID, zip string, radius int) []listing.Listing {
	a.lastZip = zip
	a.lastRadius = radius
	a.lastSource = sourceID
	return a.results
}

func (a *stubAggregator) Sources() []listing.DataSource {
	return a.sourcesList
}

func newTestServer(agg *stubAggregator) *httptest.Server {
	return httptest.NewServer(NewServer(agg, 10, time.Minute).Router())
}

func TestSearchReturnsListings(t *testing.T) {
	agg := &stubAggregator{results: []listing.Listing{
		{ID: "gsalr-1", Title: "Sale One", City: "Miami", State: "FL"},
	}}
	server := newTestServer(agg)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/search?zipcode=33101")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got []listing.Listing
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Len(t, got, 1)
	assert.Equal(t, "gsalr-1", got[0].ID)
	assert.Equal(t, "33101", agg.lastZip)
	assert.Equal(t, 10, agg.lastRadius, "radius defaults when not supplied")
}

func TestSearchMissingZipcode(t *testing.T) {
	server := newTestServer(&stubAggregator{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/search")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
	assert.NotEmpty(t, body.Timestamp)
}

func TestSearchMalformedZipcode(t *testing.T) {
	server := newTestServer(&stubAggregator{})
	defer server.Close()

	for _, zip := range []string{"1234", "123456", "abcde", "33101x"} {
		resp, err := http.Get(server.URL + "/api/search?zipcode=" + zip)
		assert.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "zip %q", zip)
	}
}

func TestSearchBadRadius(t *testing.T) {
	server := newTestServer(&stubAggregator{})
	defer server.Close()

	for _, radius := range []string{"0", "-5", "101", "ten"} {
		resp, err := http.Get(server.URL + "/api/search?zipcode=33101&radius=" + radius)
		assert.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "radius %q", radius)
	}
}

func TestSearchCustomRadiusAndSource(t *testing.T) {
	agg := &stubAggregator{}
	server := newTestServer(agg)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/search?zipcode=33101&radius=25&source=gsalr")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 25, agg.lastRadius)
	assert.Equal(t, "gsalr", agg.lastSource)
}

func TestSearchEmptyResultsIsEmptyArray(t *testing.T) {
	// Total downstream failure must surface as 200 with [], never an error
	// status and never JSON null.
	server := newTestServer(&stubAggregator{results: nil})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/search?zipcode=33101")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	buf := make([]byte, 16)
	n, _ := resp.Body.Read(buf)
	assert.Equal(t, "[]", string(buf[:n])[:2])
}

func TestSources(t *testing.T) {
	agg := &stubAggregator{sourcesList: []listing.DataSource{
		{ID: "gsalr", Name: "GSALR", Enabled: true},
	}}
	server := newTestServer(agg)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/sources")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got []listing.DataSource
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Len(t, got, 1)
	assert.Equal(t, "gsalr", got[0].ID)
}

func TestHealth(t *testing.T) {
	server := newTestServer(&stubAggregator{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/health")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestUnknownRouteIs404(t *testing.T) {
	server := newTestServer(&stubAggregator{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/nope")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
