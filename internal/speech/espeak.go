package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Espeak synthesizes WAV audio with the espeak-ng command line tool.
type Espeak struct {
	path  string
	voice string
}

func NewEspeak(path, voice string) *Espeak {
	return &Espeak{path: path, voice: voice}
}

func (e *Espeak) args(text string) []string {
	args := []string{"--stdout"}
	if e.voice != "" {
		args = append(args, "-v", e.voice)
	}
	return append(args, "--", text)
}

func (e *Espeak) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.path, e.args(text)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("espeak failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("espeak failed: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, errors.New("espeak produced no audio")
	}
	return stdout.Bytes(), nil
}
