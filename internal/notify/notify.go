// Package notify delivers push notifications through ntfy and Expo.
package notify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/vbonduro/everything/internal/config"
	"github.com/vbonduro/everything/internal/metrics"
)

const userAgent = "Everything-Go/1.0"

type Message struct {
	Title    string
	Body     string
	Tags     []string
	Priority string
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Channel is a Notifier with a name for metrics and logs.
type Channel interface {
	Notifier
	Name() string
}

// New builds the notifier for cfg. Expo is always present so registered
// devices receive pushes; ntfy is added when a topic is configured.
func New(cfg *config.Config, tokens TokenStore, logger *slog.Logger) (*Multi, *Expo) {
	expo := NewExpo(cfg.ExpoPushURL, tokens, logger)
	channels := []Channel{expo}
	if topic := strings.TrimSpace(cfg.NtfyTopic); topic != "" {
		channels = append(channels, NewNtfy(topic))
	}
	return &Multi{channels: channels, logger: logger}, expo
}

// Multi sends every message on each channel. A failing channel does not stop
// the others; all failures are returned together.
type Multi struct {
	channels []Channel
	logger   *slog.Logger
}

func NewMulti(logger *slog.Logger, channels ...Channel) *Multi {
	return &Multi{channels: channels, logger: logger}
}

func (m *Multi) Notify(ctx context.Context, msg Message) error {
	var errs *multierror.Error
	for _, c := range m.channels {
		err := c.Notify(ctx, msg)
		metrics.NotificationsSent.WithLabelValues(c.Name(), metrics.Result(err)).Inc()
		if err != nil {
			m.logger.Warn("notification failed", "channel", c.Name(), "title", msg.Title, "error", err)
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// Channels lists the configured channel names.
func (m *Multi) Channels() []string {
	names := make([]string, len(m.channels))
	for i, c := range m.channels {
		names[i] = c.Name()
	}
	return names
}

// Noop discards every message.
type Noop struct{}

func (Noop) Notify(context.Context, Message) error { return nil }
