package web

import (
	"net/http"

	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/store"
)

// reminderRequest decodes a reminder body. Priority defaults to 1.
func reminderRequest(w http.ResponseWriter, r *http.Request) (*domain.Reminder, error) {
	rem := &domain.Reminder{Priority: domain.MinPriority}
	if err := decodeJSON(w, r, rem); err != nil {
		return nil, err
	}
	return rem, nil
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	rem, err := reminderRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.deps.Reminders.Create(r.Context(), rem)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	var (
		f   store.ReminderFilter
		err error
	)
	if f.Completed, err = queryBool(r, "completed"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if v := r.URL.Query().Get("priority"); v != "" {
		p, err := queryInt(r, "priority", 0)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		f.Priority = &p
	}
	if f.Limit, err = queryInt(r, "limit", 0); err != nil {
		s.writeError(w, r, err)
		return
	}

	reminders, err := s.deps.Reminders.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reminders)
}

func (s *Server) handleUpcomingReminders(w http.ResponseWriter, r *http.Request) {
	hours, err := queryInt(r, "hours", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	reminders, err := s.deps.Reminders.Upcoming(r.Context(), hours)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reminders)
}

func (s *Server) handleGetReminder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rem, err := s.deps.Reminders.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rem)
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rem, err := reminderRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.deps.Reminders.Update(r.Context(), id, rem)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Reminders.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, message("Reminder deleted"))
}

func (s *Server) handleCompleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rem, err := s.deps.Reminders.Complete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rem)
}
