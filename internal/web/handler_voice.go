package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/vbonduro/everything/internal/domain"
)

const maxAudioSize = 25 * 1024 * 1024 // 25 MB, the cloud transcription limit

type voiceTextRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleVoiceCommand(w http.ResponseWriter, r *http.Request) {
	if s.deps.Voice == nil {
		s.writeError(w, r, errUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioSize+1<<20)
	if err := r.ParseMultipartForm(maxAudioSize); err != nil {
		s.writeDetail(w, http.StatusBadRequest, "failed to parse form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeDetail(w, http.StatusBadRequest, "audio file required")
		return
	}
	defer closeWithLog(file, "voice upload", s.logger)

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Voice.HandleAudio(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleVoiceText(w http.ResponseWriter, r *http.Request) {
	if s.deps.Voice == nil {
		s.writeError(w, r, errUnavailable)
		return
	}
	var req voiceTextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, r, domain.Invalid("text", "required"))
		return
	}

	res, err := s.deps.Voice.HandleText(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}
