package web

import (
	"net/http"

	"github.com/vbonduro/everything/internal/domain"
)

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var a domain.Appointment
	if err := decodeJSON(w, r, &a); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.deps.Appointments.Create(r.Context(), &a)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := domain.AppointmentStatus(r.URL.Query().Get("status"))
	appts, err := s.deps.Appointments.List(r.Context(), status, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, appts)
}

func (s *Server) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.deps.Appointments.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var a domain.Appointment
	if err := decodeJSON(w, r, &a); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.deps.Appointments.Update(r.Context(), id, &a)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Appointments.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, message("Appointment deleted"))
}

func (s *Server) handleAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := domain.AppointmentStatus(r.PathValue("status"))
	a, err := s.deps.Appointments.SetStatus(r.Context(), id, status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}
