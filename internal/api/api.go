package api

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Devaaron7/garage-sale-finder/internal/listing"
	"github.com/Devaaron7/garage-sale-finder/logger"
)

// Aggregator is the search surface the API exposes
type Aggregator interface {
	Search(ctx context.Context, zip string, radius int) []listing.Listing
	SearchSource(ctx context.Context, sourceID, zip string, radius int) []listing.Listing
	Sources() []listing.DataSource
}

var zipParam = regexp.MustCompile(`^\d{5}$`)

// errorResponse is the envelope for client errors
type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// Server wires the HTTP routes to the aggregator
type Server struct {
	aggregator    Aggregator
	defaultRadius int
	searchTimeout time.Duration
	log           *logger.Logger
}

func NewServer(aggregator Aggregator, defaultRadius int, searchTimeout time.Duration) *Server {
	return &Server{
		aggregator:    aggregator,
		defaultRadius: defaultRadius,
		searchTimeout: searchTimeout,
		log:           logger.ForAPI(),
	}
}

// Router builds the route table
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/search", s.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/api/sources", s.handleSources).Methods(http.MethodGet)
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.Use(s.logRequests)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("Request handled")
	})
}

// handleSearch answers GET /api/search?zipcode=33101&radius=10&source=gsalr.
// A missing or malformed zipcode is the caller's mistake and gets a 400;
// every downstream failure degrades to an empty result list instead.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	zip := r.URL.Query().Get("zipcode")
	if !zipParam.MatchString(zip) {
		s.writeError(w, http.StatusBadRequest, "zipcode must be a 5-digit US zip code")
		return
	}

	radius := s.defaultRadius
	if raw := r.URL.Query().Get("radius"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			s.writeError(w, http.StatusBadRequest, "radius must be an integer between 1 and 100")
			return
		}
		radius = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.searchTimeout)
	defer cancel()

	var results []listing.Listing
	if sourceID := r.URL.Query().Get("source"); sourceID != "" {
		results = s.aggregator.SearchSource(ctx, sourceID, zip, radius)
	} else {
		results = s.aggregator.Search(ctx, zip, radius)
	}
	if results == nil {
		results = []listing.Listing{}
	}

	s.writeJSON(w, http.StatusOK, results)
}

// handleSources answers GET /api/sources with the registered backends
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.aggregator.Sources())
}

// handleHealth answers GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{
		Success:   false,
		Error:     msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn().Err(err).Msg("Failed to encode response")
	}
}
