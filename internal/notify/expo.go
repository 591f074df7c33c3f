package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/vbonduro/everything/internal/domain"
)

// expoBatchSize is the most messages the push API accepts per request.
const expoBatchSize = 100

// TokenStore persists registered Expo push tokens.
type TokenStore interface {
	Add(ctx context.Context, token string) error
	List(ctx context.Context) ([]string, error)
}

type expoMessage struct {
	To    string `json:"to"`
	Sound string `json:"sound"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Expo struct {
	url    string
	tokens TokenStore
	client *http.Client
	logger *slog.Logger
}

func NewExpo(url string, tokens TokenStore, logger *slog.Logger) *Expo {
	return &Expo{url: url, tokens: tokens, client: &http.Client{Timeout: 5 * time.Second}, logger: logger}
}

func (e *Expo) Name() string { return "expo" }

// Register remembers a device token. Registering twice is harmless.
func (e *Expo) Register(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Invalid("token", "required")
	}
	if err := e.tokens.Add(ctx, token); err != nil {
		return err
	}
	e.logger.Info("expo push token registered")
	return nil
}

// Notify pushes msg to every registered token.
func (e *Expo) Notify(ctx context.Context, msg Message) error {
	tokens, err := e.tokens.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list push tokens: %w", err)
	}
	for start := 0; start < len(tokens); start += expoBatchSize {
		batch := make([]expoMessage, 0, expoBatchSize)
		for _, tok := range tokens[start:min(start+expoBatchSize, len(tokens))] {
			batch = append(batch, expoMessage{To: tok, Sound: "default", Title: msg.Title, Body: msg.Body})
		}
		if err := e.send(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

func (e *Expo) send(ctx context.Context, batch []expoMessage) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode expo push: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build expo request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("send expo push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("expo returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
