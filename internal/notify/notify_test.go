package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/everything/internal/config"
	"github.com/vbonduro/everything/internal/domain"
)

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

type memTokens struct {
	mu     sync.Mutex
	tokens []string
}

func (m *memTokens) Add(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t == token {
			return nil
		}
	}
	m.tokens = append(m.tokens, token)
	return nil
}

func (m *memTokens) List(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...), nil
}

type fakeChannel struct {
	name string
	err  error
	got  []Message
}

func (f *fakeChannel) Name() string { return f.name }
func (f *fakeChannel) Notify(_ context.Context, msg Message) error {
	f.got = append(f.got, msg)
	return f.err
}

func TestNtfyFormatsRequest(t *testing.T) {
	var got *http.Request
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		b, _ := io.ReadAll(r.Body)
		body = string(b)
	}))
	defer server.Close()

	n := NewNtfy(server.URL + "/home")
	err := n.Notify(context.Background(), Message{Title: "Reminder due", Body: "stretch", Tags: []string{"reminder", "clock"}, Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, "/home", got.URL.Path)
	assert.Equal(t, "Reminder due", got.Header.Get("Title"))
	assert.Equal(t, "reminder,clock", got.Header.Get("Tags"))
	assert.Equal(t, "high", got.Header.Get("Priority"))
	assert.Equal(t, "stretch", body)
}

func TestNtfyBareTopic(t *testing.T) {
	assert.Equal(t, "https://ntfy.sh/my-house", NewNtfy("my-house").endpoint)
}

func TestNtfyErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic locked", http.StatusForbidden)
	}))
	defer server.Close()

	err := NewNtfy(server.URL).Notify(context.Background(), Message{Body: "x"})
	assert.ErrorContains(t, err, "ntfy returned 403: topic locked")
}

func TestExpoRegisterAndNotify(t *testing.T) {
	var batches [][]expoMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var batch []expoMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
		batches = append(batches, batch)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	tokens := &memTokens{}
	expo := NewExpo(server.URL, tokens, testLogger())
	ctx := context.Background()

	assert.True(t, domain.IsValidation(expo.Register(ctx, "  ")))
	require.NoError(t, expo.Register(ctx, "ExponentPushToken[a]"))
	require.NoError(t, expo.Register(ctx, "ExponentPushToken[a]"))
	require.NoError(t, expo.Register(ctx, "ExponentPushToken[b]"))

	require.NoError(t, expo.Notify(ctx, Message{Title: "Upcoming appointment", Body: "dentist"}))
	require.Len(t, batches, 1)
	assert.Equal(t, []expoMessage{
		{To: "ExponentPushToken[a]", Sound: "default", Title: "Upcoming appointment", Body: "dentist"},
		{To: "ExponentPushToken[b]", Sound: "default", Title: "Upcoming appointment", Body: "dentist"},
	}, batches[0])
}

func TestExpoWithoutTokensSendsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("unexpected push request")
	}))
	defer server.Close()

	expo := NewExpo(server.URL, &memTokens{}, testLogger())
	assert.NoError(t, expo.Notify(context.Background(), Message{Title: "x"}))
}

func TestExpoBatches(t *testing.T) {
	var sizes []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var batch []expoMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
		sizes = append(sizes, len(batch))
	}))
	defer server.Close()

	tokens := &memTokens{}
	for i := range expoBatchSize + 5 {
		tokens.tokens = append(tokens.tokens, fmt.Sprintf("ExponentPushToken[%d]", i))
	}
	require.NoError(t, NewExpo(server.URL, tokens, testLogger()).Notify(context.Background(), Message{}))
	assert.Equal(t, []int{expoBatchSize, 5}, sizes)
}

func TestMultiCollectsErrors(t *testing.T) {
	ok := &fakeChannel{name: "ok"}
	bad := &fakeChannel{name: "bad", err: errors.New("down")}
	m := NewMulti(testLogger(), bad, ok)

	err := m.Notify(context.Background(), Message{Title: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Len(t, ok.got, 1)
	assert.Len(t, bad.got, 1)

	assert.NoError(t, NewMulti(testLogger(), ok).Notify(context.Background(), Message{}))
}

func TestNewChannels(t *testing.T) {
	cfg := config.Default()
	m, expo := New(&cfg, &memTokens{}, testLogger())
	require.NotNil(t, expo)
	assert.Equal(t, []string{"expo"}, m.Channels())

	cfg.NtfyTopic = "house"
	m, _ = New(&cfg, &memTokens{}, testLogger())
	assert.Equal(t, []string{"expo", "ntfy"}, m.Channels())
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Notify(context.Background(), Message{}))
}
