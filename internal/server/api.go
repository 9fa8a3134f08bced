package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arloliu/grouper"
	"github.com/arloliu/grouper/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

type groupsResponse struct {
	Groups []types.Group `json:"groups"`
}

type refreshResponse struct {
	State string `json:"state"`
}

// handlePeople serves the loaded roster as a JSON array.
func (s *Server) handlePeople(w http.ResponseWriter, _ *http.Request) {
	snap := s.svc.Snapshot()

	switch snap.State {
	case types.RosterStateLoading:
		writeError(w, http.StatusServiceUnavailable, types.ErrRosterLoading)
	case types.RosterStateFailed:
		writeError(w, http.StatusBadGateway, snap.Err)
	default:
		people := snap.People
		if people == nil {
			people = []types.Person{}
		}
		writeJSON(w, http.StatusOK, people)
	}
}

// handleGroups forms groups from the loaded roster.
//
// Query parameters:
//   - count: Raw group count text; missing uses the configured default
//   - strategy: Strategy name; missing uses the service default
func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	count := s.defaultGroupCount
	if query.Has("count") {
		count = grouper.ParseGroupCount(query.Get("count"))
	}

	groups, err := s.svc.ShuffleWith(query.Get("strategy"), count)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	writeJSON(w, http.StatusOK, groupsResponse{Groups: groups})
}

// handleRefresh starts a background roster reload.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Refresh(r.Context()); err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	writeJSON(w, http.StatusAccepted, refreshResponse{State: "loading"})
}

// statusForError maps service errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrUnknownStrategy):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrRosterLoading), errors.Is(err, types.ErrNotStarted):
		return http.StatusServiceUnavailable
	case errors.Is(err, types.ErrRosterUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	msg := http.StatusText(code)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, code, errorResponse{Error: msg})
}
