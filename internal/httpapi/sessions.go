package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"wayfinder/core-go/internal/editsession"
	"wayfinder/core-go/internal/indoor"
	"wayfinder/core-go/internal/maperr"
)

const defaultSessionMapName = "Untitled map"

type sessionCreate struct {
	MapID      *int64   `json:"map_id,omitempty"`
	Name       *string  `json:"name,omitempty"`
	NorthAngle *float64 `json:"north_angle,omitempty"`
}

type sessionUpdate struct {
	Name        *string  `json:"name,omitempty"`
	NorthAngle  *float64 `json:"north_angle,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// Numbers stored in INTEGER columns decode as int32 so out-of-range values fail
// at the request boundary.
type floorCreate struct {
	FloorNumber int32  `json:"floor_number"`
	Label       string `json:"label"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
}

type nodeCreate struct {
	Name       string  `json:"name"`
	BeaconID   string  `json:"beacon_id"`
	Floor      int     `json:"floor_number"`
	IsExit     bool    `json:"is_exit"`
	IsEntrance bool    `json:"is_entrance"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Area       [][]int `json:"area,omitempty"`
}

type nodeUpdate struct {
	Name       *string `json:"name,omitempty"`
	BeaconID   *string `json:"beacon_id,omitempty"`
	Floor      *int    `json:"floor_number,omitempty"`
	IsExit     *bool   `json:"is_exit,omitempty"`
	IsEntrance *bool   `json:"is_entrance,omitempty"`
	X          *int    `json:"x,omitempty"`
	Y          *int    `json:"y,omitempty"`
	Area       [][]int `json:"area,omitempty"`
}

type edgeCreate struct {
	From    indoor.Ref `json:"from_node"`
	To      indoor.Ref `json:"to_node"`
	Weight  int32      `json:"weight"`
	Comment string     `json:"comment"`
}

type nodeRemoved struct {
	RemovedEdges int `json:"removed_edges"`
}

func sessionLockKey(id string) string {
	return "session:" + id
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionCreate
	if err := decodeJSONStrict(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.writeInvalidBody(w, err)
		return
	}

	if !h.ensureStores(w) {
		return
	}

	var m *indoor.Map
	if req.MapID != nil {
		stored, err := h.maps.GetMap(r.Context(), *req.MapID)
		if err != nil {
			h.writeDomainError(w, r, err, "create session")
			return
		}
		m = stored
	} else {
		name := defaultSessionMapName
		if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
			name = strings.TrimSpace(*req.Name)
		}
		var north float64
		if req.NorthAngle != nil {
			north = *req.NorthAngle
		}
		fresh, err := indoor.NewMap(name, north, defaultFloorRows, defaultFloorCols)
		if err != nil {
			h.writeDomainError(w, r, err, "create session")
			return
		}
		m = fresh
	}

	sess := editsession.New(m, h.sessionTTL)
	if err := h.sessions.Set(r.Context(), sess); err != nil {
		h.writeDomainError(w, r, err, "create session")
		return
	}

	h.log.Info().Str("session_id", sess.ID).Str("map", m.Ref.String()).Msg("edit session opened")
	h.writeJSON(w, http.StatusCreated, sess)
}

// loadSession returns the live session named by {sid}, writing a 404 when it is
// missing or expired.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request, action string) (*editsession.Session, bool) {
	id := chi.URLParam(r, "sid")
	sess, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err, action)
		return nil, false
	}
	if sess == nil {
		h.writeDomainError(w, r, maperr.New(maperr.CodeSessionNotFound, "session %q not found", id), action)
		return nil, false
	}
	return sess, true
}

// editSession runs fn against the session's working copy and stores the result
// with a renewed expiry. Edits of one session are serialized. When fn fails the
// stored session is left untouched.
func (h *Handler) editSession(w http.ResponseWriter, r *http.Request, action string, status int, fn func(m *indoor.Map) (any, error)) {
	if !h.ensureStores(w) {
		return
	}

	unlock := h.locks.Lock(sessionLockKey(chi.URLParam(r, "sid")))
	defer unlock()

	sess, ok := h.loadSession(w, r, action)
	if !ok {
		return
	}
	out, err := fn(sess.Map)
	if err != nil {
		h.writeDomainError(w, r, err, action)
		return
	}
	sess.Touch(h.sessionTTL)
	if err := h.sessions.Set(r.Context(), sess); err != nil {
		h.writeDomainError(w, r, err, action)
		return
	}

	if out == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, status, out)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStores(w) {
		return
	}
	sess, ok := h.loadSession(w, r, "get session")
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionUpdate
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeInvalidBody(w, err)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "name must not be empty", nil)
		return
	}

	h.editSession(w, r, "update session", http.StatusOK, func(m *indoor.Map) (any, error) {
		if req.Name != nil {
			m.Name = strings.TrimSpace(*req.Name)
		}
		if req.NorthAngle != nil {
			m.NorthAngle = *req.NorthAngle
		}
		if req.Latitude != nil {
			m.Latitude = *req.Latitude
		}
		if req.Longitude != nil {
			m.Longitude = *req.Longitude
		}
		if req.Description != nil {
			m.Description = *req.Description
		}
		return m.Summary(), nil
	})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStores(w) {
		return
	}
	id := chi.URLParam(r, "sid")

	unlock := h.locks.Lock(sessionLockKey(id))
	defer unlock()

	if err := h.sessions.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, r, err, "delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCommitSession saves the working copy and swaps in the stored version so
// later edits start from persisted refs. A session opened on a stored map only
// commits while that map is still at the version it was copied from; otherwise
// the store reports map_conflict and the session is left as it was.
func (h *Handler) handleCommitSession(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStores(w) {
		return
	}

	unlock := h.locks.Lock(sessionLockKey(chi.URLParam(r, "sid")))
	defer unlock()

	sess, ok := h.loadSession(w, r, "commit session")
	if !ok {
		return
	}

	// Drafts have no stored counterpart to contend with.
	if id, persisted := sess.Map.Ref.ID(); persisted {
		unlockMap := h.locks.Lock(mapLockKey(id))
		defer unlockMap()
	}

	saved, err := h.maps.SaveMap(r.Context(), sess.Map)
	if err != nil {
		h.writeDomainError(w, r, err, "commit session")
		return
	}

	sess.Map = saved
	sess.Touch(h.sessionTTL)
	if err := h.sessions.Set(r.Context(), sess); err != nil {
		h.writeDomainError(w, r, err, "commit session")
		return
	}

	h.log.Info().Str("session_id", sess.ID).Str("map", saved.Ref.String()).Msg("edit session committed")
	h.writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) handleSessionAddFloor(w http.ResponseWriter, r *http.Request) {
	var req floorCreate
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeInvalidBody(w, err)
		return
	}
	h.editSession(w, r, "add floor", http.StatusCreated, func(m *indoor.Map) (any, error) {
		f, err := m.Floors.Add(int(req.FloorNumber), req.Label, req.Rows, req.Cols)
		if err != nil {
			return nil, err
		}
		return toFloorResponse(f), nil
	})
}

func (h *Handler) handleSessionFloorSVG(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStores(w) {
		return
	}
	sess, ok := h.loadSession(w, r, "render floor")
	if !ok {
		return
	}
	h.writeFloorSVG(w, r, sess.Map)
}

func (h *Handler) handleSessionRasterize(w http.ResponseWriter, r *http.Request) {
	var req rasterizeRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeInvalidBody(w, err)
		return
	}
	floor, err := parseFloorParam(r)
	if err != nil {
		h.writeDomainError(w, r, err, "rasterize floor")
		return
	}
	h.editSession(w, r, "rasterize floor", http.StatusOK, func(m *indoor.Map) (any, error) {
		return h.rasterize(m, floor, req)
	})
}

func (h *Handler) handleSessionResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeInvalidBody(w, err)
		return
	}
	floor, err := parseFloorParam(r)
	if err != nil {
		h.writeDomainError(w, r, err, "resize floor")
		return
	}
	h.editSession(w, r, "resize floor", http.StatusOK, func(m *indoor.Map) (any, error) {
		return h.resize(m, floor, req)
	})
}

func (h *Handler) handleSessionAddNode(w http.ResponseWriter, r *http.Request) {
	var req nodeCreate
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeInvalidBody(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "name is required", nil)
		return
	}

	h.editSession(w, r, "add node", http.StatusCreated, func(m *indoor.Map) (any, error) {
		n, err := m.AddNode(indoor.Node{
			Name:       req.Name,
			BeaconID:   strings.TrimSpace(req.BeaconID),
			Floor:      req.Floor,
			IsExit:     req.IsExit,
			IsEntrance: req.IsEntrance,
			X:          req.X,
			Y:          req.Y,
			Area:       req.Area,
		})
		if err != nil {
			return nil, err
		}
		return n, nil
	})
}

func (h *Handler) handleSessionUpdateNode(w http.ResponseWriter, r *http.Request) {
	ref, err := indoor.ParseRef(chi.URLParam(r, "ref"))
	if err != nil {
		h.writeDomainError(w, r, err, "update node")
		return
	}
	var req nodeUpdate
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeInvalidBody(w, err)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "name must not be empty", nil)
		return
	}

	h.editSession(w, r, "update node", http.StatusOK, func(m *indoor.Map) (any, error) {
		n, err := m.UpdateNode(ref, indoor.NodePatch{
			Name:       req.Name,
			BeaconID:   req.BeaconID,
			Floor:      req.Floor,
			IsExit:     req.IsExit,
			IsEntrance: req.IsEntrance,
			X:          req.X,
			Y:          req.Y,
			Area:       req.Area,
		})
		if err != nil {
			return nil, err
		}
		return n, nil
	})
}

func (h *Handler) handleSessionDeleteNode(w http.ResponseWriter, r *http.Request) {
	ref, err := indoor.ParseRef(chi.URLParam(r, "ref"))
	if err != nil {
		h.writeDomainError(w, r, err, "delete node")
		return
	}
	h.editSession(w, r, "delete node", http.StatusOK, func(m *indoor.Map) (any, error) {
		removed, err := m.RemoveNode(ref)
		if err != nil {
			return nil, err
		}
		return nodeRemoved{RemovedEdges: removed}, nil
	})
}

func (h *Handler) handleSessionAddEdge(w http.ResponseWriter, r *http.Request) {
	var req edgeCreate
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeInvalidBody(w, err)
		return
	}
	if req.From.IsZero() || req.To.IsZero() {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "from_node and to_node are required", nil)
		return
	}

	h.editSession(w, r, "add edge", http.StatusCreated, func(m *indoor.Map) (any, error) {
		e, err := m.AddEdge(req.From, req.To, int(req.Weight), req.Comment)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
}

func (h *Handler) handleSessionDeleteEdge(w http.ResponseWriter, r *http.Request) {
	ref, err := indoor.ParseRef(chi.URLParam(r, "ref"))
	if err != nil {
		h.writeDomainError(w, r, err, "delete edge")
		return
	}
	h.editSession(w, r, "delete edge", http.StatusNoContent, func(m *indoor.Map) (any, error) {
		return nil, m.RemoveEdge(ref)
	})
}
