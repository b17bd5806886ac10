package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"wayfinder/core-go/internal/search"
)

type searchTruncation struct {
	Returned  int  `json:"returned"`
	Limit     int  `json:"limit"`
	Truncated bool `json:"truncated"`
	Total     int  `json:"total"`
}

type searchResponse struct {
	Query      string           `json:"query"`
	Results    []search.Result  `json:"results"`
	Truncation searchTruncation `json:"truncation"`
}

func (h *Handler) handleSearchNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))

	limit, err := parseLimitParam(q.Get("limit"), h.searchLimit, search.MaxLimit)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid limit", map[string]any{"limit": err.Error()})
		return
	}

	if !h.ensureStores(w) {
		return
	}

	cands, err := h.maps.SearchCandidates(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err, "search nodes")
		return
	}

	// Rank everything first so the response can report the full match count.
	all := search.Rank(cands, query, len(cands))
	results := all
	if len(results) > limit {
		results = results[:limit]
	}
	h.metrics.ObserveSearch(len(results))

	h.writeJSON(w, http.StatusOK, searchResponse{
		Query:   query,
		Results: results,
		Truncation: searchTruncation{
			Returned:  len(results),
			Limit:     limit,
			Truncated: len(all) > len(results),
			Total:     len(all),
		},
	})
}

func (h *Handler) handleNodeByBeacon(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStores(w) {
		return
	}
	node, _, err := h.maps.FindNodeByBeacon(r.Context(), chi.URLParam(r, "beaconId"))
	if err != nil {
		h.writeDomainError(w, r, err, "find node by beacon")
		return
	}
	h.writeJSON(w, http.StatusOK, node)
}

func (h *Handler) handleMapByBeacon(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStores(w) {
		return
	}
	_, m, err := h.maps.FindNodeByBeacon(r.Context(), chi.URLParam(r, "beaconId"))
	if err != nil {
		h.writeDomainError(w, r, err, "find map by beacon")
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}
