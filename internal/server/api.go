package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/janpfeifer/GifCentration/internal/game"
	"github.com/janpfeifer/GifCentration/internal/search"
	"k8s.io/klog/v2"
)

// APIKeyHeader carries the key required by the search API.
const APIKeyHeader = "x-api-key"

// HandleSearchAPI serves GET /api/search?q=<query>[&limit=<n>][&rating=<r>],
// answering with the JSON list of images found.
func (s *ServerState) HandleSearchAPI(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(APIKeyHeader)
	if s.cfg.APIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.APIKey)) != 1 {
		klog.Warningf("Search API: forbidden request from %s", r.RemoteAddr)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := r.URL.Query()
	query := strings.TrimSpace(params.Get("q"))
	if query == "" {
		http.Error(w, "missing query parameter q", http.StatusBadRequest)
		return
	}
	limit := s.cfg.Game.DefaultTableauSize / 2
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > s.cfg.Game.MaxCards/2 {
			http.Error(w, "invalid limit "+strconv.Quote(v), http.StatusBadRequest)
			return
		}
		limit = n
	}
	rating := search.ParseRating(params.Get("rating"))

	images, err := s.cfg.Searcher.SearchImages(r.Context(), query, limit, rating)
	if err != nil {
		klog.Errorf("Search API: search %q failed: %v", query, err)
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	if images == nil {
		images = []game.ImageRef{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(images); err != nil {
		klog.Errorf("Search API: failed to write response: %v", err)
	}
}
