package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"wayfinder/core-go/internal/graphview"
	"wayfinder/core-go/internal/grid"
	"wayfinder/core-go/internal/indoor"
)

const (
	defaultFloorRows = 10
	defaultFloorCols = 10
)

type mapCreate struct {
	Name        string  `json:"name"`
	NorthAngle  float64 `json:"north_angle"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description"`
	Rows        *int    `json:"rows,omitempty"`
	Cols        *int    `json:"cols,omitempty"`
}

type rasterizeRequest struct {
	Coordinates []grid.Point `json:"coordinates"`
	FillValue   *int         `json:"fill_value,omitempty"`
}

type rasterizeResponse struct {
	Success bool   `json:"success"`
	SVG     string `json:"svg"`
}

type resizeRequest struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

type floorResponse struct {
	indoor.FloorEntry
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
	SVG  string `json:"svg"`
}

func toFloorResponse(f *indoor.FloorEntry) floorResponse {
	return floorResponse{
		FloorEntry: *f,
		Rows:       f.Grid.Rows(),
		Cols:       f.Grid.Cols(),
		SVG:        f.Grid.SVG(),
	}
}

func (h *Handler) handleListMaps(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStores(w) {
		return
	}

	rows, err := h.maps.ListMaps(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err, "list maps")
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) handleCreateMap(w http.ResponseWriter, r *http.Request) {
	var req mapCreate
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeInvalidBody(w, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "name is required", nil)
		return
	}

	if !h.ensureStores(w) {
		return
	}

	rows, cols := defaultFloorRows, defaultFloorCols
	if req.Rows != nil {
		rows = *req.Rows
	}
	if req.Cols != nil {
		cols = *req.Cols
	}

	m, err := indoor.NewMap(req.Name, req.NorthAngle, rows, cols)
	if err != nil {
		h.writeDomainError(w, r, err, "create map")
		return
	}
	m.Latitude = req.Latitude
	m.Longitude = req.Longitude
	m.Description = req.Description

	saved, err := h.maps.SaveMap(r.Context(), m)
	if err != nil {
		h.writeDomainError(w, r, err, "create map")
		return
	}
	h.writeJSON(w, http.StatusCreated, saved)
}

// loadMap reads the stored map named by the {id} URL param.
func (h *Handler) loadMap(w http.ResponseWriter, r *http.Request) (*indoor.Map, bool) {
	if !h.ensureStores(w) {
		return nil, false
	}
	id, err := parseMapID(r)
	if err != nil {
		h.writeDomainError(w, r, err, "get map")
		return nil, false
	}
	m, err := h.maps.GetMap(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err, "get map")
		return nil, false
	}
	return m, true
}

func (h *Handler) handleGetMap(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMap(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

func (h *Handler) handleDeleteMap(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStores(w) {
		return
	}
	id, err := parseMapID(r)
	if err != nil {
		h.writeDomainError(w, r, err, "delete map")
		return
	}

	unlock := h.locks.Lock(mapLockKey(id))
	defer unlock()

	if err := h.maps.DeleteMap(r.Context(), id); err != nil {
		h.writeDomainError(w, r, err, "delete map")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListExits(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMap(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, m.ExitNodes())
}

func (h *Handler) handleListEntrances(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMap(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, m.EntranceNodes())
}

func (h *Handler) handleMapGraph(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "dot"
	}
	if format != "dot" && format != "svg" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "format must be dot or svg", map[string]any{"format": format})
		return
	}

	m, ok := h.loadMap(w, r)
	if !ok {
		return
	}

	dot := graphview.ToDOT(m)
	if format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(dot))
		return
	}

	svg, err := graphview.RenderSVG(r.Context(), dot)
	if err != nil {
		h.writeDomainError(w, r, err, "render graph")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

func (h *Handler) handleMapFloorSVG(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadMap(w, r)
	if !ok {
		return
	}
	h.writeFloorSVG(w, r, m)
}

func (h *Handler) writeFloorSVG(w http.ResponseWriter, r *http.Request, m *indoor.Map) {
	floor, err := parseFloorParam(r)
	if err != nil {
		h.writeDomainError(w, r, err, "render floor")
		return
	}
	f, err := m.Floors.Get(floor)
	if err != nil {
		h.writeDomainError(w, r, err, "render floor")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(f.Grid.SVG()))
}

func (h *Handler) handleMapRasterize(w http.ResponseWriter, r *http.Request) {
	var req rasterizeRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeInvalidBody(w, err)
		return
	}
	h.editStoredMap(w, r, "rasterize floor", func(m *indoor.Map, floor int) (any, error) {
		return h.rasterize(m, floor, req)
	})
}

func (h *Handler) handleMapResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeInvalidBody(w, err)
		return
	}
	h.editStoredMap(w, r, "resize floor", func(m *indoor.Map, floor int) (any, error) {
		return h.resize(m, floor, req)
	})
}

func (h *Handler) rasterize(m *indoor.Map, floor int, req rasterizeRequest) (any, error) {
	fill := grid.Occupied
	if req.FillValue != nil {
		fill = *req.FillValue
	}
	err := m.RasterizeFloor(floor, req.Coordinates, fill)
	h.metrics.ObserveGridMutation("rasterize", err)
	if err != nil {
		return nil, err
	}
	f, err := m.Floors.Get(floor)
	if err != nil {
		return nil, err
	}
	return rasterizeResponse{Success: true, SVG: f.Grid.SVG()}, nil
}

func (h *Handler) resize(m *indoor.Map, floor int, req resizeRequest) (any, error) {
	err := m.ResizeFloor(floor, req.Rows, req.Cols)
	h.metrics.ObserveGridMutation("resize", err)
	if err != nil {
		return nil, err
	}
	f, err := m.Floors.Get(floor)
	if err != nil {
		return nil, err
	}
	return toFloorResponse(f), nil
}

func mapLockKey(id int64) string {
	return "map:" + strconv.FormatInt(id, 10)
}

// editStoredMap applies fn to a stored map's floor and saves the result. Edits
// of one map are serialized; a failing fn leaves the stored map unchanged.
func (h *Handler) editStoredMap(w http.ResponseWriter, r *http.Request, action string, fn func(m *indoor.Map, floor int) (any, error)) {
	if !h.ensureStores(w) {
		return
	}
	id, err := parseMapID(r)
	if err != nil {
		h.writeDomainError(w, r, err, action)
		return
	}
	floor, err := parseFloorParam(r)
	if err != nil {
		h.writeDomainError(w, r, err, action)
		return
	}

	unlock := h.locks.Lock(mapLockKey(id))
	defer unlock()

	m, err := h.maps.GetMap(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err, action)
		return
	}
	out, err := fn(m, floor)
	if err != nil {
		h.writeDomainError(w, r, err, action)
		return
	}
	if _, err := h.maps.SaveMap(r.Context(), m); err != nil {
		h.writeDomainError(w, r, err, action)
		return
	}

	h.log.Debug().Int64("map_id", id).Int("floor", floor).Msg(action)
	h.writeJSON(w, http.StatusOK, out)
}
