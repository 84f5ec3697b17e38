package openaichat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ouuuuuuuuuuu/poli/core"
	"github.com/Ouuuuuuuuuuu/poli/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect drains a reply stream into deltas and the terminal event.
func collect(t *testing.T, ch <-chan core.StreamEvent) ([]string, core.StreamEvent) {
	t.Helper()
	var deltas []string
	var terminal core.StreamEvent
	for ev := range ch {
		switch e := ev.(type) {
		case core.Delta:
			require.Nil(t, terminal, "delta after terminal event")
			deltas = append(deltas, e.Text)
		default:
			require.Nil(t, terminal, "more than one terminal event")
			terminal = ev
		}
	}
	require.NotNil(t, terminal, "stream ended without terminal event")
	return deltas, terminal
}

func newStreamServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range frames {
			_, _ = w.Write([]byte(frame))
			flusher.Flush()
		}
	}))
}

func newClient(baseURL string) *Client {
	return New(func(o *Options) {
		o.BaseURL = baseURL
		o.APIKey = "test-key"
		o.Model = "test-model"
	})
}

func TestClient_StreamReply(t *testing.T) {
	srv := newStreamServer(t, []string{
		"data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\", panel\"}}]}\n\n",
		"data: [DONE]\n\n",
	})
	defer srv.Close()

	deltas, terminal := collect(t, newClient(srv.URL).StreamReply(context.Background(), model.Request{
		Messages: []model.Message{{Role: model.RoleUser, Content: "hi"}},
	}))

	assert.Equal(t, []string{"Hello", ", panel"}, deltas)
	assert.IsType(t, core.Done{}, terminal)
}

func TestClient_AbruptCloseStillDone(t *testing.T) {
	srv := newStreamServer(t, []string{
		"data: {\"choices\":[{\"delta\":{\"content\":\"cut\"}}]}\n\n",
		// connection closes without [DONE]
	})
	defer srv.Close()

	deltas, terminal := collect(t, newClient(srv.URL).StreamReply(context.Background(), model.Request{}))

	assert.Equal(t, []string{"cut"}, deltas)
	assert.IsType(t, core.Done{}, terminal)
}

func TestClient_NonSuccessStatusIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	deltas, terminal := collect(t, newClient(srv.URL).StreamReply(context.Background(), model.Request{}))

	assert.Empty(t, deltas)
	failed, ok := terminal.(core.Failed)
	require.True(t, ok, "expected Failed, got %+v", terminal)

	var upstream *core.UpstreamError
	require.True(t, errors.As(failed.Cause, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
	assert.Contains(t, upstream.Body, "rate limited")
}

func TestClient_ConnectionRefusedIsConnectionError(t *testing.T) {
	// Port from a closed test server: nothing is listening.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	deltas, terminal := collect(t, newClient(url).StreamReply(context.Background(), model.Request{}))

	assert.Empty(t, deltas)
	failed, ok := terminal.(core.Failed)
	require.True(t, ok)

	var connErr *core.ConnectionError
	assert.True(t, errors.As(failed.Cause, &connErr))
}
