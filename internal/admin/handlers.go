package admin

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/citiescollective/citycache/internal/cache"
	"github.com/citiescollective/citycache/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// statsResponse is the wire shape of the cache statistics.
type statsResponse struct {
	HitRate      float64 `json:"hitRate"`
	Hits         uint64  `json:"hits"`
	Misses       uint64  `json:"misses"`
	Evictions    uint64  `json:"evictions"`
	TotalQueries uint64  `json:"totalQueries"`
	Entries      int     `json:"entries"`
	// MemoryKB is an estimate, see cache.Stats.
	MemoryKB  float64 `json:"memoryKB"`
	Timestamp string  `json:"timestamp"`
}

func newStatsResponse(stats cache.Stats) statsResponse {
	return statsResponse{
		HitRate:      stats.HitRate(),
		Hits:         stats.Hits,
		Misses:       stats.Misses,
		Evictions:    stats.Evictions,
		TotalQueries: stats.TotalQueries,
		Entries:      stats.Entries,
		MemoryKB:     float64(stats.MemoryBytes) / 1024,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
}

type cityResponse struct {
	ID         string `json:"id"`
	OwnerID    string `json:"ownerId"`
	Name       string `json:"name"`
	Theme      string `json:"theme"`
	Population int64  `json:"population"`
	Rating     string `json:"rating"`
	Downloads  int64  `json:"downloads"`
	CreatedAt  int64  `json:"createdAt"`
}

func newCityResponse(city store.CityRow) cityResponse {
	return cityResponse{
		ID:         city.ID.String(),
		OwnerID:    city.OwnerID.String(),
		Name:       city.Name,
		Theme:      city.Theme,
		Population: city.Population,
		Rating:     city.Rating.String(),
		Downloads:  city.Downloads,
		CreatedAt:  city.CreatedAt,
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, newStatsResponse(s.queries.Cache().Stats()))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.queries.Cache().Clear()
	s.logger.Info("cache cleared via admin API")
	s.writeJSON(w, http.StatusOK, newStatsResponse(s.queries.Cache().Stats()))
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	if tag == "" {
		s.writeError(w, http.StatusBadRequest, "missing tag parameter")
		return
	}
	removed := s.queries.Cache().InvalidateTag(tag)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"tag":     tag,
		"removed": removed,
	})
}

func (s *Server) handlePopularCities(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxListLimit)
	}

	cities, err := s.queries.ListPopularCities(r.Context(), limit)
	if err != nil {
		s.logger.Error("list popular cities", "error", err)
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	out := make([]cityResponse, 0, len(cities))
	for _, city := range cities {
		out = append(out, newCityResponse(city))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid city id")
		return
	}

	city, err := s.queries.GetCity(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		s.writeError(w, http.StatusNotFound, "city not found")
		return
	}
	if err != nil {
		s.logger.Error("get city", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	s.writeJSON(w, http.StatusOK, newCityResponse(city))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
