package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/everything/internal/db"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return d
}

// at returns a UTC time offset from a fixed future base so validation-free
// store tests stay deterministic.
func at(offset time.Duration) time.Time {
	return time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC).Add(offset)
}
