// Package voice runs spoken commands end to end: transcription, intent
// parsing, dispatch against the application's own routes and speech output.
package voice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/goccy/go-json"

	"github.com/vbonduro/everything/internal/metrics"
	"github.com/vbonduro/everything/internal/nlu"
	"github.com/vbonduro/everything/internal/speech"
)

// Result is the outcome of one voice command.
type Result struct {
	Transcript string            `json:"transcript"`
	Intent     string            `json:"intent"`
	Params     map[string]string `json:"params"`
	Status     int               `json:"status"`
	Response   string            `json:"response"`
	Audio      []byte            `json:"audio,omitempty"`
}

// STTError wraps a transcription failure.
type STTError struct {
	Err error
}

func (e *STTError) Error() string { return "STT error: " + e.Err.Error() }
func (e *STTError) Unwrap() error { return e.Err }

type Pipeline struct {
	stt     speech.Transcriber
	tts     speech.Synthesizer
	handler http.Handler
	now     func() time.Time
	logger  *slog.Logger
}

// NewPipeline returns a pipeline without a dispatch target. SetHandler must be
// called before commands are processed. tts may be nil.
func NewPipeline(stt speech.Transcriber, tts speech.Synthesizer, logger *slog.Logger) *Pipeline {
	return &Pipeline{stt: stt, tts: tts, now: time.Now, logger: logger}
}

// SetHandler sets the router dispatched calls are served by. The router
// usually mounts this pipeline too, hence the late binding.
func (p *Pipeline) SetHandler(h http.Handler) {
	p.handler = h
}

// HandleAudio transcribes an uploaded recording and runs it as a command.
func (p *Pipeline) HandleAudio(ctx context.Context, data []byte) (*Result, error) {
	clip, err := speech.Decode(data)
	if err != nil {
		return nil, &STTError{Err: err}
	}
	transcript, err := p.stt.Transcribe(ctx, clip)
	if err != nil {
		return nil, &STTError{Err: err}
	}
	p.logger.Info("voice command transcribed", "format", clip.Format, "duration", clip.Duration(), "transcript", transcript)
	return p.HandleText(ctx, transcript)
}

// HandleText parses text, dispatches the resulting call and speaks the reply.
func (p *Pipeline) HandleText(ctx context.Context, text string) (*Result, error) {
	in := nlu.Parse(text)
	metrics.VoiceCommands.WithLabelValues(in.Name).Inc()

	res := &Result{
		Transcript: text,
		Intent:     in.Name,
		Params:     in.Params,
		Status:     http.StatusOK,
	}

	var body []byte
	if call, ok := nlu.Plan(in, p.now()); ok {
		status, reply, err := p.dispatch(ctx, call)
		if err != nil {
			return nil, err
		}
		res.Status, body = status, reply
		p.logger.Info("voice command dispatched", "intent", in.Name, "method", call.Method, "path", call.Path, "status", status)
	}
	res.Response = nlu.Respond(in, res.Status, body)

	if p.tts != nil {
		audio, err := p.tts.Synthesize(ctx, res.Response)
		if err != nil {
			p.logger.Warn("failed to synthesize response", "error", err)
		} else {
			res.Audio = audio
		}
	}
	return res, nil
}

func (p *Pipeline) dispatch(ctx context.Context, call nlu.Call) (int, []byte, error) {
	if p.handler == nil {
		return 0, nil, fmt.Errorf("voice pipeline has no dispatch handler")
	}

	var body io.Reader = http.NoBody
	if call.Payload != nil {
		b, err := json.Marshal(call.Payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, call.Path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	p.handler.ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes(), nil
}
