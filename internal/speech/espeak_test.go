package speech

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEspeak writes a shell script that echoes its arguments to stdout.
func fakeEspeak(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "espeak-ng")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestEspeakSynthesize(t *testing.T) {
	e := NewEspeak(fakeEspeak(t, `echo "$@"`), "en-us")

	out, err := e.Synthesize(context.Background(), "Welcome home!")
	require.NoError(t, err)
	assert.Equal(t, "--stdout -v en-us -- Welcome home!\n", string(out))
}

func TestEspeakSkipsEmptyText(t *testing.T) {
	e := NewEspeak("/does/not/exist", "")

	out, err := e.Synthesize(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEspeakFailure(t *testing.T) {
	e := NewEspeak(fakeEspeak(t, `echo "no voice" >&2; exit 1`), "")

	_, err := e.Synthesize(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no voice")
}

func TestEspeakNoOutput(t *testing.T) {
	e := NewEspeak(fakeEspeak(t, `exit 0`), "")

	_, err := e.Synthesize(context.Background(), "hello")
	assert.Error(t, err)
}
