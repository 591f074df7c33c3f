package web

import (
	"net/http"

	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/store"
)

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var e domain.Event
	if err := decodeJSON(w, r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.deps.Events.Create(r.Context(), &e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.EventFilter{
		EventType: q.Get("event_type"),
		Severity:  domain.Severity(q.Get("severity")),
	}
	if q.Get("device_id") != "" {
		id, err := queryInt(r, "device_id", 0)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		deviceID := int64(id)
		f.DeviceID = &deviceID
	}
	var err error
	if f.Limit, err = queryInt(r, "limit", 0); err != nil {
		s.writeError(w, r, err)
		return
	}

	events, err := s.deps.Events.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleDeviceEvents(w http.ResponseWriter, r *http.Request) {
	deviceID, err := parseID(r, "device_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	events, err := s.deps.Events.ForDevice(r.Context(), deviceID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.deps.Events.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Events.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, message("Event deleted"))
}

// handleEventStream upgrades to a websocket that receives every new event.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	if s.deps.Hub == nil {
		s.writeError(w, r, errUnavailable)
		return
	}
	s.deps.Hub.ServeHTTP(w, r)
}
