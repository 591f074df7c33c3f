package nlu

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const NotUnderstood = "Sorry, I didn't understand"

// Respond renders the sentence spoken back for an intent given the status and
// JSON body of the call that served it.
func Respond(in Intent, status int, body []byte) string {
	if in.Name == IntentUnknown {
		return NotUnderstood
	}
	reply := gjson.ParseBytes(body)

	if status >= http.StatusBadRequest {
		if status == http.StatusNotFound && in.Params["device"] != "" {
			return fmt.Sprintf("I couldn't find the %s", in.Params["device"])
		}
		if detail := reply.Get("detail").String(); detail != "" {
			return "Sorry, that didn't work: " + detail
		}
		return "Sorry, that didn't work"
	}

	switch in.Name {
	case IntentSetReminder:
		return "Reminder created: " + reply.Get("title").String()
	case IntentListSnacks:
		var names []string
		for _, n := range reply.Get("#.name").Array() {
			names = append(names, strings.ToLower(n.String()))
		}
		if len(names) == 0 {
			return "You have no snacks"
		}
		return "You have " + joinAnd(names)
	case IntentTrainStatus:
		if reply.Get("delayed").Bool() {
			return "Your train is delayed"
		}
		return "Your train is on time"
	case IntentTurnOnLight:
		return "Turned on the " + in.Params["device"]
	case IntentTurnOffLight:
		return "Turned off the " + in.Params["device"]
	case IntentGymCheckIn:
		return "Gym check-in recorded"
	case IntentHomeStatus:
		on, total := reply.Get("devices_on").Int(), reply.Get("total_devices").Int()
		if total == 1 {
			return fmt.Sprintf("%d of 1 device is on", on)
		}
		return fmt.Sprintf("%d of %d devices are on", on, total)
	case IntentCommute:
		if s := reply.Get("summary").String(); s != "" {
			return s
		}
		return "No commute information available"
	}
	return NotUnderstood
}

// joinAnd renders a list as "a", "a and b" or "a, b and c".
func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
