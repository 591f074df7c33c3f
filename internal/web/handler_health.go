package web

import (
	"net/http"
	"time"
)

type checkInResponse struct {
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

func (s *Server) handleGymCheckIn(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Health.CheckIn(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, checkInResponse{Message: "Checked in", Time: c.Timestamp})
}

func (s *Server) handleGymSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.deps.Health.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sum)
}
