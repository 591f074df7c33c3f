package nlu

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespond(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		status int
		body   string
		want   string
	}{
		{"reminder", "remind me to call mom at 5pm", http.StatusCreated, `{"id":1,"title":"call mom"}`, "Reminder created: call mom"},
		{"snacks", "what snacks", http.StatusOK, `[{"name":"Chips"},{"name":"Pretzels"}]`, "You have chips and pretzels"},
		{"three snacks", "what snacks", http.StatusOK, `[{"name":"a"},{"name":"b"},{"name":"c"}]`, "You have a, b and c"},
		{"no snacks", "what snacks", http.StatusOK, `[]`, "You have no snacks"},
		{"train delayed", "train delayed?", http.StatusOK, `{"delayed":true}`, "Your train is delayed"},
		{"train on time", "train status", http.StatusOK, `{"delayed":false}`, "Your train is on time"},
		{"light on", "turn on the lamp", http.StatusOK, `{"status":"on"}`, "Turned on the lamp"},
		{"light missing", "turn on the lamp", http.StatusNotFound, `{"detail":"device \"lamp\": not found"}`, "I couldn't find the lamp"},
		{"light off", "turn off the lamp", http.StatusOK, `{}`, "Turned off the lamp"},
		{"gym", "gym", http.StatusCreated, `{"message":"Checked in"}`, "Gym check-in recorded"},
		{"home", "home status", http.StatusOK, `{"total_devices":3,"devices_on":2}`, "2 of 3 devices are on"},
		{"commute", "commute", http.StatusOK, `{"summary":"All trains on time"}`, "All trains on time"},
		{"commute unconfigured", "commute", http.StatusServiceUnavailable, `{"detail":"commute feed not configured"}`, "Sorry, that didn't work: commute feed not configured"},
		{"unknown", "blah", http.StatusOK, ``, NotUnderstood},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Respond(Parse(tt.text), tt.status, []byte(tt.body)))
		})
	}
}
