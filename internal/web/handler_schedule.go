package web

import (
	"net/http"
)

func (s *Server) handleRegisterExpo(w http.ResponseWriter, r *http.Request) {
	if s.deps.Push == nil {
		s.writeError(w, r, errUnavailable)
		return
	}
	if err := s.deps.Push.Register(r.Context(), r.URL.Query().Get("token")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, message("Token registered"))
}

func (s *Server) handleScheduleTasks(w http.ResponseWriter, r *http.Request) {
	if s.deps.Scheduler == nil {
		s.writeError(w, r, errUnavailable)
		return
	}
	s.writeJSON(w, http.StatusOK, s.deps.Scheduler.Tasks())
}

func (s *Server) handleScheduleEnable(w http.ResponseWriter, r *http.Request) {
	if s.deps.Scheduler == nil {
		s.writeError(w, r, errUnavailable)
		return
	}
	task, err := s.deps.Scheduler.Enable(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleScheduleDisable(w http.ResponseWriter, r *http.Request) {
	if s.deps.Scheduler == nil {
		s.writeError(w, r, errUnavailable)
		return
	}
	task, err := s.deps.Scheduler.Disable(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}
