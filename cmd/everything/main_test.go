package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeIntent(t *testing.T) {
	now := time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

	out := describeIntent("turn off the porch light", now)
	assert.Contains(t, out, "turn_off_light")
	assert.Contains(t, out, "porch light")
	assert.Contains(t, out, "PUT /home/devices/named/")

	out = describeIntent("what's for dinner", now)
	assert.Contains(t, out, "unknown")
	assert.Contains(t, out, "none")
}

func TestRoutesCommand(t *testing.T) {
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"routes"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "/reminders/upcoming")
	assert.Contains(t, buf.String(), "/voice/command")
}

func TestIntentCommandRequiresText(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"intent"})
	assert.Error(t, cmd.Execute())
}
