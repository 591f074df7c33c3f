//go:build whisper

package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperTranscriber runs whisper.cpp in-process. A model context is not safe
// for concurrent use, so calls are serialised.
type WhisperTranscriber struct {
	mu     sync.Mutex
	model  whisper.Model
	logger *slog.Logger
}

func NewWhisperTranscriber(modelPath string, logger *slog.Logger) (Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("WHISPER_MODEL_PATH is required for STT_BACKEND=whisper")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load whisper model: %w", err)
	}
	logger.Info("whisper model loaded", "path", modelPath)
	return &WhisperTranscriber{model: m, logger: logger}, nil
}

func (t *WhisperTranscriber) Close() error {
	return t.model.Close()
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, clip *Clip) (string, error) {
	if len(clip.Samples) == 0 {
		return "", errors.New("no audio samples")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	wctx, err := t.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("failed to create whisper context: %w", err)
	}
	if err := wctx.SetLanguage("en"); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	wctx.SetThreads(uint(runtime.NumCPU()))

	if err := wctx.Process(clip.Samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process failed: %w", err)
	}

	var parts []string
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read segment: %w", err)
		}
		parts = append(parts, strings.TrimSpace(seg.Text))
	}
	t.logger.Debug("whisper transcription complete", "segments", len(parts), "duration", clip.Duration())
	return strings.Join(parts, " "), nil
}
