// Package nlu turns a spoken command into an intent and the HTTP call that
// carries it out.
package nlu

import (
	"regexp"
	"strings"
)

const (
	IntentSetReminder  = "set_reminder"
	IntentListSnacks   = "list_snacks"
	IntentTrainStatus  = "train_status"
	IntentTurnOnLight  = "turn_on_light"
	IntentTurnOffLight = "turn_off_light"
	IntentGymCheckIn   = "gym_check_in"
	IntentHomeStatus   = "home_status"
	IntentCommute      = "commute"
	IntentUnknown      = "unknown"
)

// Intent is the result of parsing a transcript.
type Intent struct {
	Name   string            `json:"intent"`
	Params map[string]string `json:"params"`
}

type pattern struct {
	name string
	re   *regexp.Regexp
}

// patterns are tried in order; the first match wins.
var patterns = []pattern{
	{IntentSetReminder, regexp.MustCompile(`(?i)remind me to (?P<title>.+) at (?P<time>.+)`)},
	{IntentListSnacks, regexp.MustCompile(`(?i)what.*snacks`)},
	{IntentTrainStatus, regexp.MustCompile(`(?i)train.*(delayed|status)`)},
	{IntentTurnOnLight, regexp.MustCompile(`(?i)turn on the (?P<device>.+)`)},
	{IntentTurnOffLight, regexp.MustCompile(`(?i)turn off the (?P<device>.+)`)},
	{IntentGymCheckIn, regexp.MustCompile(`(?i)gym`)},
	{IntentHomeStatus, regexp.MustCompile(`(?i)house|home status`)},
	{IntentCommute, regexp.MustCompile(`(?i)commute`)},
}

// Intents lists the recognised intent names in match order.
func Intents() []string {
	names := make([]string, 0, len(patterns))
	for _, p := range patterns {
		names = append(names, p.name)
	}
	return names
}

// Parse matches text against the intent table. Unmatched text yields
// IntentUnknown with no params.
func Parse(text string) Intent {
	text = strings.TrimSpace(text)
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		params := map[string]string{}
		for i, name := range p.re.SubexpNames() {
			if name == "" {
				continue
			}
			if v := cleanParam(m[i]); v != "" {
				params[name] = v
			}
		}
		return Intent{Name: p.name, Params: params}
	}
	return Intent{Name: IntentUnknown, Params: map[string]string{}}
}

// cleanParam drops the trailing punctuation transcribers add to sentences.
func cleanParam(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ".!?,"))
}
