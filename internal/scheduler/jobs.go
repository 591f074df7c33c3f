package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/vbonduro/everything/internal/commute"
	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/notify"
)

const (
	UpcomingJobID  = "upcoming"
	LowStockJobID  = "low_stock"
	CommuteJobID   = "commute_update"
	upcomingWindow = 10 * time.Minute
)

type reminderSource interface {
	DueSoon(ctx context.Context, window time.Duration) ([]*domain.Reminder, error)
	MarkNotified(ctx context.Context, id int64) error
}

type appointmentSource interface {
	StartingSoon(ctx context.Context, window time.Duration) ([]*domain.Appointment, error)
	MarkNotified(ctx context.Context, id int64) error
}

type lowStockSource interface {
	LowStock(ctx context.Context) ([]*domain.Item, error)
}

type commuteSource interface {
	Configured() bool
	Summary(ctx context.Context) (*commute.Status, error)
}

// UpcomingJob notifies once for each appointment starting, and each
// reminder due, within the next ten minutes. An item is marked notified only
// after its message was sent, so a failed send is retried on the next run.
func UpcomingJob(reminders reminderSource, appointments appointmentSource, n notify.Notifier) Job {
	return Job{
		ID:       UpcomingJobID,
		Interval: 60 * time.Second,
		Run: func(ctx context.Context) error {
			var errs *multierror.Error

			appts, err := appointments.StartingSoon(ctx, upcomingWindow)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("failed to list upcoming appointments: %w", err))
			}
			for _, a := range appts {
				msg := notify.Message{
					Title: "Upcoming appointment",
					Body:  fmt.Sprintf("%s at %s", a.Title, a.StartTime.Format(time.Kitchen)),
					Tags:  []string{"calendar"},
				}
				if err := deliver(ctx, n, msg, appointments.MarkNotified, a.ID); err != nil {
					errs = multierror.Append(errs, err)
				}
			}

			rems, err := reminders.DueSoon(ctx, upcomingWindow)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("failed to list due reminders: %w", err))
			}
			for _, r := range rems {
				msg := notify.Message{
					Title: "Reminder due",
					Body:  fmt.Sprintf("%s at %s", r.Title, r.DueDate.Format(time.Kitchen)),
					Tags:  []string{"alarm_clock"},
				}
				if r.Priority >= 4 {
					msg.Priority = "high"
				}
				if err := deliver(ctx, n, msg, reminders.MarkNotified, r.ID); err != nil {
					errs = multierror.Append(errs, err)
				}
			}
			return errs.ErrorOrNil()
		},
	}
}

func deliver(ctx context.Context, n notify.Notifier, msg notify.Message, mark func(context.Context, int64) error, id int64) error {
	if err := n.Notify(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %q: %w", msg.Body, err)
	}
	if err := mark(ctx, id); err != nil {
		return fmt.Errorf("failed to mark %q notified: %w", msg.Body, err)
	}
	return nil
}

// lowStockWatch remembers the last low-stock set so unchanged sets are not
// re-announced.
type lowStockWatch struct {
	mu   sync.Mutex
	last []string
}

// LowStockJob notifies when the set of items needing restock changes.
func LowStockJob(items lowStockSource, n notify.Notifier) Job {
	w := &lowStockWatch{}
	return Job{
		ID:       LowStockJobID,
		Interval: 300 * time.Second,
		Run: func(ctx context.Context) error {
			low, err := items.LowStock(ctx)
			if err != nil {
				return fmt.Errorf("failed to list low stock: %w", err)
			}
			names := make([]string, len(low))
			for i, it := range low {
				names[i] = it.Name
			}
			slices.Sort(names)

			w.mu.Lock()
			changed := !slices.Equal(names, w.last)
			w.last = names
			w.mu.Unlock()

			if !changed || len(names) == 0 {
				return nil
			}
			return n.Notify(ctx, notify.Message{
				Title: "Low stock",
				Body:  "Running low on " + strings.Join(names, ", "),
				Tags:  []string{"shopping_cart"},
			})
		},
	}
}

// CommuteJob logs the commute summary when a feed is configured.
func CommuteJob(c commuteSource, logger *slog.Logger) Job {
	return Job{
		ID:       CommuteJobID,
		Interval: 600 * time.Second,
		Run: func(ctx context.Context) error {
			if !c.Configured() {
				return nil
			}
			st, err := c.Summary(ctx)
			if err != nil {
				return err
			}
			logger.Info("commute update", "stop_id", st.StopID, "delayed", st.Delayed, "summary", st.Summary)
			return nil
		},
	}
}
