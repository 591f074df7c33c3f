package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/store"
)

func newTestReminderService(t *testing.T) *ReminderService {
	t.Helper()
	svc := NewReminderService(store.NewReminderStore(openTestDB(t)), testLogger())
	svc.now = fixedClock
	return svc
}

func TestReminderServiceCreateValidates(t *testing.T) {
	svc := newTestReminderService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &domain.Reminder{Title: "late", DueDate: testNow.Add(-time.Minute), Priority: 1})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Create(ctx, &domain.Reminder{Title: "loud", DueDate: testNow.Add(time.Hour), Priority: 6})
	assert.True(t, domain.IsValidation(err))

	r, err := svc.Create(ctx, &domain.Reminder{Title: "call mom", DueDate: testNow.Add(time.Hour), Priority: 2})
	require.NoError(t, err)
	assert.NotZero(t, r.ID)
	assert.False(t, r.Completed)
}

func TestReminderServiceGetMissing(t *testing.T) {
	svc := newTestReminderService(t)

	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReminderServiceListRejectsBadLimit(t *testing.T) {
	svc := newTestReminderService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, store.ReminderFilter{Limit: 101})
	assert.True(t, domain.IsValidation(err))

	bad := 9
	_, err = svc.List(ctx, store.ReminderFilter{Priority: &bad})
	assert.True(t, domain.IsValidation(err))
}

func TestReminderServiceCompleteAndUpcoming(t *testing.T) {
	svc := newTestReminderService(t)
	ctx := context.Background()

	soon, err := svc.Create(ctx, &domain.Reminder{Title: "soon", DueDate: testNow.Add(2 * time.Hour), Priority: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &domain.Reminder{Title: "later", DueDate: testNow.Add(48 * time.Hour), Priority: 1})
	require.NoError(t, err)

	upcoming, err := svc.Upcoming(ctx, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "soon", upcoming[0].Title)

	done, err := svc.Complete(ctx, soon.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)

	upcoming, err = svc.Upcoming(ctx, 24)
	require.NoError(t, err)
	assert.Empty(t, upcoming)

	_, err = svc.Complete(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReminderServiceDueSoonNotifiesOnce(t *testing.T) {
	svc := newTestReminderService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &domain.Reminder{Title: "stretch", DueDate: testNow.Add(5 * time.Minute), Priority: 3})
	require.NoError(t, err)

	due, err := svc.DueSoon(ctx, 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "stretch", due[0].Title)

	again, err := svc.DueSoon(ctx, 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, again, 1, "listing must not consume the notification")

	require.NoError(t, svc.MarkNotified(ctx, due[0].ID))
	again, err = svc.DueSoon(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestReminderServiceUpdate(t *testing.T) {
	svc := newTestReminderService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, &domain.Reminder{Title: "old", DueDate: testNow.Add(time.Hour), Priority: 1})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, r.ID, &domain.Reminder{Title: "new", DueDate: testNow.Add(3 * time.Hour), Priority: 4})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, 4, updated.Priority)
	assert.True(t, updated.DueDate.Equal(testNow.Add(3*time.Hour)))

	_, err = svc.Update(ctx, 999, &domain.Reminder{Title: "x", DueDate: testNow.Add(time.Hour), Priority: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
