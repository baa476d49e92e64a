package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ssehuun/telegram-news-bot/internal/listing"
	"github.com/ssehuun/telegram-news-bot/internal/watchlist"
)

// Handlers holds the ops API handlers.
type Handlers struct {
	store     watchlist.Store
	idx       *listing.Index
	backend   string
	version   string
	startedAt time.Time
}

// NewHandlers creates new ops API handlers.
func NewHandlers(store watchlist.Store, idx *listing.Index, backend, version string) *Handlers {
	return &Handlers{
		store:     store,
		idx:       idx,
		backend:   backend,
		version:   version,
		startedAt: time.Now(),
	}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// HealthCheck returns service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "stockbot",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// GetStats returns watchlist and listing statistics.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.store.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"chats":           chats,
		"listing_entries": h.idx.Len(),
		"store_backend":   h.backend,
	})
}
