package web

import (
	"net/http"

	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/service"
)

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var d domain.Device
	if err := decodeJSON(w, r, &d); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.deps.Home.Create(r.Context(), &d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.deps.Home.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.deps.Home.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Home.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, message("Device deleted"))
}

func (s *Server) handleDeviceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.deps.Home.SetStatus(r.Context(), id, r.PathValue("status"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleNamedDeviceStatus(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Home.SetStatusByName(r.Context(), r.PathValue("name"), r.PathValue("status"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeviceSettings(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch map[string]any
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.deps.Home.MergeSettings(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleHomeStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Home.Status(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleArrive(w http.ResponseWriter, r *http.Request) {
	var (
		opts service.ArrivalOptions
		err  error
	)
	if opts.AutoLights, err = queryFlag(r, "auto_lights", true); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.DisarmSecurity, err = queryFlag(r, "disarm_security", true); err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.deps.Home.Arrive(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}
