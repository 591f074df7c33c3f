package nlu

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Call is an HTTP request against the application's own API.
type Call struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Payload any    `json:"payload,omitempty"`
}

// Plan maps an intent to the call that carries it out. It reports false for
// intents that need no call, such as IntentUnknown.
func Plan(in Intent, now time.Time) (Call, bool) {
	switch in.Name {
	case IntentSetReminder:
		return Call{
			Method: http.MethodPost,
			Path:   "/reminders",
			Payload: map[string]any{
				"title":    in.Params["title"],
				"due_date": ParseTime(in.Params["time"], now).Format(time.RFC3339),
				"priority": 1,
			},
		}, true
	case IntentListSnacks:
		return Call{Method: http.MethodGet, Path: "/inventory/snacks"}, true
	case IntentTrainStatus:
		return Call{Method: http.MethodGet, Path: "/commute/status"}, true
	case IntentTurnOnLight:
		return deviceCall(in.Params["device"], "on"), true
	case IntentTurnOffLight:
		return deviceCall(in.Params["device"], "off"), true
	case IntentGymCheckIn:
		return Call{Method: http.MethodPost, Path: "/health/gym/check-in"}, true
	case IntentHomeStatus:
		return Call{Method: http.MethodGet, Path: "/home/status"}, true
	case IntentCommute:
		return Call{Method: http.MethodGet, Path: "/commute/summary"}, true
	}
	return Call{}, false
}

func deviceCall(device, status string) Call {
	return Call{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/home/devices/named/%s/status/%s", url.PathEscape(device), status),
	}
}
