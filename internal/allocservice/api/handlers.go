package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/stackhaus/internal/allocservice/models"
	"github.com/marmos91/stackhaus/internal/allocservice/store"
)

type handler struct {
	store *store.Store
}

type nextStackIDResponse struct {
	StackID uint64 `json:"stack_id"`
}

func (h *handler) nextStackID(w http.ResponseWriter, r *http.Request) {
	id, err := h.store.NextStackID(r.Context())
	if err != nil {
		writeProblem(w, err)
		return
	}
	writeJSONOK(w, nextStackIDResponse{StackID: id})
}

type locationsRequest struct {
	Locations []string `json:"locations"`
}

func (h *handler) registerSource(w http.ResponseWriter, r *http.Request) {
	stackID, err := parseStackID(r)
	if err != nil {
		writeProblem(w, err)
		return
	}

	var req locationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, err)
		return
	}

	if err := h.store.RegisterStackSource(r.Context(), stackID, req.Locations); err != nil {
		writeProblem(w, err)
		return
	}
	writeJSONOK(w, map[string]string{"status": "ok"})
}

func (h *handler) deregisterSource(w http.ResponseWriter, r *http.Request) {
	stackID, err := parseStackID(r)
	if err != nil {
		writeProblem(w, err)
		return
	}

	var req locationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, err)
		return
	}

	if err := h.store.DeRegisterStackSource(r.Context(), stackID, req.Locations); err != nil {
		writeProblem(w, err)
		return
	}
	writeJSONOK(w, map[string]string{"status": "ok"})
}

func (h *handler) querySource(w http.ResponseWriter, r *http.Request) {
	stackID, err := parseStackID(r)
	if err != nil {
		writeProblem(w, err)
		return
	}

	locations, err := h.store.QueryRegisteredSource(r.Context(), stackID)
	if err != nil {
		writeProblem(w, err)
		return
	}
	writeJSONOK(w, locationsRequest{Locations: locations})
}

func (h *handler) locateStack(w http.ResponseWriter, r *http.Request) {
	stackID, err := parseStackID(r)
	if err != nil {
		writeProblem(w, err)
		return
	}

	assignments, err := h.store.LocateStack(r.Context(), stackID)
	if err != nil {
		writeProblem(w, err)
		return
	}
	writeJSONOK(w, assignments)
}

type preLoadRequest struct {
	Replicas int `json:"replicas"`
}

func (h *handler) preLoad(w http.ResponseWriter, r *http.Request) {
	stackID, err := parseStackID(r)
	if err != nil {
		writeProblem(w, err)
		return
	}

	var req preLoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, err)
		return
	}

	assignments, err := h.store.PreLoad(r.Context(), stackID, req.Replicas)
	if err != nil {
		writeProblem(w, err)
		return
	}
	writeJSONOK(w, assignments)
}

func (h *handler) unPreLoad(w http.ResponseWriter, r *http.Request) {
	stackID, err := parseStackID(r)
	if err != nil {
		writeProblem(w, err)
		return
	}

	if err := h.store.UnPreLoad(r.Context(), stackID); err != nil {
		writeProblem(w, err)
		return
	}
	writeJSONOK(w, map[string]string{"status": "ok"})
}

type assignmentStateRequest struct {
	State models.PreloadState `json:"state"`
}

// updateAssignmentState lets the preload worker fleet report progress on
// an assignment it owns (Init -> Loading -> Loaded).
func (h *handler) updateAssignmentState(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "assignment_id")

	var req assignmentStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, err)
		return
	}

	if err := h.store.UpdateAssignmentState(r.Context(), assignmentID, req.State); err != nil {
		writeProblem(w, err)
		return
	}
	writeJSONOK(w, map[string]string{"status": "ok"})
}
