package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSONBody(r *http.Request, v any) error {
	defer r.Body.Close() //nolint:errcheck
	return json.NewDecoder(r.Body).Decode(v)
}

func sseServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClientStream(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	srv := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, decodeJSONBody(r, &gotBody))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"Hello", " there", "!"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", delta)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	c := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4.1-nano"})

	var fragments []string
	full, err := c.Stream(context.Background(), []Message{
		{Role: RoleSystem, Content: "reply in English"},
		{Role: RoleUser, Content: "hello"},
	}, func(f string) error {
		fragments = append(fragments, f)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello there!", full)
	assert.Equal(t, []string{"Hello", " there", "!"}, fragments)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.True(t, gotBody.Stream)
	assert.Equal(t, "gpt-4.1-nano", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, RoleSystem, gotBody.Messages[0].Role)
}

func TestOpenAIClientMissingKey(t *testing.T) {
	c := NewOpenAIClient(OpenAIConfig{Model: "gpt-4.1-nano"})
	_, err := c.Stream(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, func(string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestOpenAIClientHTTPError(t *testing.T) {
	srv := sseServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"model overloaded"}}`, http.StatusServiceUnavailable)
	})

	c := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	_, err := c.Stream(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, func(string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestOpenAIClientMidStreamError(t *testing.T) {
	srv := sseServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"error\":{\"message\":\"stream aborted\"}}\n\n")
	})

	c := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})

	var fragments []string
	partial, err := c.Stream(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, func(f string) error {
		fragments = append(fragments, f)
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream aborted")
	// Fragments already forwarded are not retracted.
	assert.Equal(t, []string{"partial"}, fragments)
	assert.Equal(t, "partial", partial)
}

func TestMockClientRecordsCalls(t *testing.T) {
	m := &MockClient{Replies: []string{"one two three"}}

	var fragments []string
	full, err := m.Stream(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, func(f string) error {
		fragments = append(fragments, f)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "one two three", full)
	assert.Equal(t, []string{"one", " two", " three"}, fragments)
	require.Len(t, m.Calls(), 1)
	assert.Equal(t, "hi", m.Calls()[0][0].Content)
}

func TestMockClientFailure(t *testing.T) {
	m := &MockClient{
		Replies:            []string{"ok", "will fail midway"},
		FailOnCall:         2,
		FailAfterFragments: 1,
	}

	_, err := m.Stream(context.Background(), []Message{{Role: RoleUser, Content: "a"}}, func(string) error { return nil })
	require.NoError(t, err)

	var got int
	partial, err := m.Stream(context.Background(), []Message{{Role: RoleUser, Content: "b"}}, func(string) error {
		got++
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, "will", partial)
}
