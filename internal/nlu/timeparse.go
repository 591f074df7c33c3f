package nlu

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	relativeRe = regexp.MustCompile(`^in ([1-9]\d*|an?|one) (minute|minutes|min|mins|hour|hours)$`)
	clockRe    = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.?|p\.m\.?)?$`)
)

// ParseTime resolves a spoken time relative to now. It understands "5pm",
// "5:30 pm", "17:00", "noon", "midnight", "in 20 minutes", "in an hour" and
// "tomorrow at 9am". A clock time already past today moves to tomorrow.
// Anything else resolves to one hour from now.
func ParseTime(s string, now time.Time) time.Time {
	s = strings.ToLower(cleanParam(s))
	fallback := now.Add(time.Hour)

	if m := relativeRe.FindStringSubmatch(s); m != nil {
		n := 1
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
		unit := time.Minute
		if strings.HasPrefix(m[2], "hour") {
			unit = time.Hour
		}
		return now.Add(time.Duration(n) * unit)
	}

	tomorrow := false
	if rest, ok := strings.CutPrefix(s, "tomorrow"); ok {
		tomorrow = true
		s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "at"))
		s = strings.TrimSpace(s)
	}

	hour, minute, ok := parseClock(s)
	if !ok {
		if tomorrow {
			return fallback.AddDate(0, 0, 1)
		}
		return fallback
	}

	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if tomorrow || t.Before(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func parseClock(s string) (hour, minute int, ok bool) {
	switch s {
	case "noon", "midday":
		return 12, 0, true
	case "midnight":
		return 0, 0, true
	}

	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if minute > 59 {
		return 0, 0, false
	}

	switch strings.ReplaceAll(m[3], ".", "") {
	case "am":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}
