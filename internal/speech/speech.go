// Package speech holds the speech-to-text and text-to-speech backends used by
// the voice pipeline.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/everything/internal/config"
)

// ErrUnavailable is returned by backends that are not configured.
var ErrUnavailable = errors.New("speech backend not configured")

type Transcriber interface {
	Transcribe(ctx context.Context, clip *Clip) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// NewTranscriber builds the STT backend named by cfg.STTBackend.
func NewTranscriber(cfg *config.Config, logger *slog.Logger) (Transcriber, error) {
	switch cfg.STTBackend {
	case "", "none":
		return Unavailable{}, nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for STT_BACKEND=openai")
		}
		return NewOpenAITranscriber(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), nil
	case "whisper":
		return NewWhisperTranscriber(cfg.WhisperModelPath, logger)
	}
	return nil, fmt.Errorf("unknown STT backend %q", cfg.STTBackend)
}

// NewSynthesizer builds the TTS backend named by cfg.TTSBackend. A nil
// Synthesizer means speech output is disabled.
func NewSynthesizer(cfg *config.Config) (Synthesizer, error) {
	switch cfg.TTSBackend {
	case "", "none":
		return nil, nil
	case "espeak":
		return NewEspeak(cfg.EspeakPath, cfg.EspeakVoice), nil
	}
	return nil, fmt.Errorf("unknown TTS backend %q", cfg.TTSBackend)
}

// Unavailable is the STT backend used when none is configured.
type Unavailable struct{}

func (Unavailable) Transcribe(context.Context, *Clip) (string, error) {
	return "", ErrUnavailable
}
