package web

import (
	"net/http"

	"github.com/vbonduro/everything/internal/commute"
)

func (s *Server) commuteClient() (*commute.Client, error) {
	if s.deps.Commute == nil || !s.deps.Commute.Configured() {
		return nil, commute.ErrNotConfigured
	}
	return s.deps.Commute, nil
}

func (s *Server) handleCommuteStatus(w http.ResponseWriter, r *http.Request) {
	c, err := s.commuteClient()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := c.Status(r.Context(), r.URL.Query().Get("stop_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCommuteSummary(w http.ResponseWriter, r *http.Request) {
	c, err := s.commuteClient()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := c.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}
