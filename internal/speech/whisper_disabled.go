//go:build !whisper

package speech

import (
	"errors"
	"log/slog"
)

// NewWhisperTranscriber reports that offline transcription was not compiled
// in. Build with -tags whisper to enable it.
func NewWhisperTranscriber(string, *slog.Logger) (Transcriber, error) {
	return nil, errors.New("whisper support not compiled in (build with -tags whisper)")
}
