package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/vbonduro/everything/internal/auth"
	"github.com/vbonduro/everything/internal/commute"
	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/speech"
	"github.com/vbonduro/everything/internal/sysinfo"
	"github.com/vbonduro/everything/internal/voice"
)

const maxJSONBody = 1 << 20

var errUnavailable = errors.New("service not configured")

type detail struct {
	Detail string `json:"detail"`
}

type messageBody struct {
	Message string `json:"message"`
}

func message(format string, args ...any) messageBody {
	return messageBody{Message: fmt.Sprintf(format, args...)}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) writeDetail(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, detail{Detail: msg})
}

// writeError maps err to a status code and writes it as {"detail": ...}.
// Unexpected errors are logged and reported without their text.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		sttErr  *voice.STTError
		feedErr *commute.FeedError
	)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeDetail(w, http.StatusNotFound, err.Error())
	case domain.IsValidation(err):
		s.writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		s.writeDetail(w, http.StatusUnauthorized, rootCause(err))
	case errors.Is(err, auth.ErrForbidden), errors.Is(err, sysinfo.ErrForbidden):
		s.writeDetail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, sysinfo.ErrTimeout):
		s.writeDetail(w, http.StatusRequestTimeout, "Process timed out")
	case errors.Is(err, speech.ErrUnavailable), errors.Is(err, commute.ErrNotConfigured), errors.Is(err, errUnavailable):
		s.writeDetail(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &feedErr):
		s.logger.Warn("commute feed failed", "error", err, "request_id", requestID(r.Context()))
		s.writeDetail(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &sttErr):
		s.logger.Error("speech recognition failed", "error", err, "request_id", requestID(r.Context()))
		s.writeDetail(w, http.StatusInternalServerError, err.Error())
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"request_id", requestID(r.Context()),
		)
		s.writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

// rootCause returns the sentinel text for auth errors so token parser
// details are not echoed to clients.
func rootCause(err error) string {
	for _, sentinel := range []error{auth.ErrMissingToken, auth.ErrInvalidToken, auth.ErrInvalidCredentials} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Invalid("", "request body required")
		}
		return domain.Invalid("", "invalid request body: %v", err)
	}
	return nil
}

func parseID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, domain.Invalid(name, "must be an integer")
	}
	return id, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, domain.Invalid(name, "must be a boolean")
	}
	return &b, nil
}

// queryFlag is queryBool with a default for an absent parameter.
func queryFlag(r *http.Request, name string, def bool) (bool, error) {
	b, err := queryBool(r, name)
	if err != nil || b == nil {
		return def, err
	}
	return *b, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domain.Invalid(name, "must be an integer")
	}
	return n, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates.
func queryTime(r *http.Request, name string) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Invalid(name, "must be a date or RFC 3339 timestamp")
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
