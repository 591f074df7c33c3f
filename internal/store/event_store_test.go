package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/everything/internal/domain"
)

func TestEventStoreCreateDefaults(t *testing.T) {
	s := NewEventStore(openTestDB(t))
	ctx := context.Background()

	e, err := s.Create(ctx, &domain.Event{EventType: "motion", Metadata: map[string]any{"zone": "porch"}})
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityInfo, e.Severity)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, "porch", e.Metadata["zone"])

	got, err := s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestEventStoreListReturnsLastMatchesOldestFirst(t *testing.T) {
	s := NewEventStore(openTestDB(t))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := s.Create(ctx, &domain.Event{DeviceID: 7, EventType: "motion", Description: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, &domain.Event{DeviceID: 8, EventType: "door", Severity: domain.SeverityWarning})
	require.NoError(t, err)

	device := int64(7)
	got, err := s.List(ctx, EventFilter{DeviceID: &device, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m4", got[0].Description)
	assert.Equal(t, "m5", got[1].Description)

	warnings, err := s.List(ctx, EventFilter{Severity: domain.SeverityWarning})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "door", warnings[0].EventType)

	motion, err := s.List(ctx, EventFilter{EventType: "motion"})
	require.NoError(t, err)
	assert.Len(t, motion, 5)
}

func TestEventStoreDelete(t *testing.T) {
	s := NewEventStore(openTestDB(t))
	ctx := context.Background()

	e, err := s.Create(ctx, &domain.Event{EventType: "arrival"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, e.ID))

	got, err := s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, s.Delete(ctx, e.ID), domain.ErrNotFound)
}
