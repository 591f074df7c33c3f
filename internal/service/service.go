package service

import (
	"time"
)

// clock is swapped out in tests.
type clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// pageLimit applies a default and checks the allowed range for list limits.
func pageLimit(limit, def, max int) (int, bool) {
	if limit == 0 {
		return def, true
	}
	if limit < 1 || limit > max {
		return 0, false
	}
	return limit, true
}
