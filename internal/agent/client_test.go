// ABOUTME: Tests for the agent gateway client
// ABOUTME: Covers bearer attachment, 401 refresh-retry-once, and response shapes

package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient wires a client against a token manager whose store starts
// empty and whose provider mints "refreshed-token".
func newTestClient(t *testing.T, serverURL, bootstrap string, source *fakeTokenSource) (*Client, *fakeTokenSource) {
	t.Helper()
	if source == nil {
		source = &fakeTokenSource{token: "refreshed-token"}
	}
	tm := NewTokenManager(NewCipher("secret"), &fakeCredentialStore{}, source, bootstrap, nil)
	// The client appends Vertex-style ":query" verb suffixes, which require a
	// base URL that already carries a resource path.
	return NewClient(serverURL+"/v1/reasoningEngines/1", tm, 5*time.Second, nil), source
}

func TestCreateSession_AttachesBearer(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"session_id": "sess-1"})
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, "boot-token", nil)

	sessionID, err := client.CreateSession(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sessionID)
	assert.Equal(t, "Bearer boot-token", gotAuth)
	assert.Equal(t, "create_session", gotBody["class_method"])

	input, ok := gotBody["input"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "user-1", input["user_id"])
}

func TestCreateSession_NoTokenProceedsWithoutHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"session_id": "sess-1"})
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, "", nil)

	_, err := client.CreateSession(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestCreateSession_SessionIDShapes(t *testing.T) {
	tests := []struct {
		name     string
		response map[string]any
		want     string
	}{
		{"top-level session_id", map[string]any{"session_id": "a"}, "a"},
		{"top-level camelCase", map[string]any{"sessionId": "b"}, "b"},
		{"top-level id", map[string]any{"id": "c"}, "c"},
		{"numeric id", map[string]any{"id": float64(7231)}, "7231"},
		{"under output", map[string]any{"output": map[string]any{"session_id": "d"}}, "d"},
		{"under session", map[string]any{"session": map[string]any{"id": "e"}}, "e"},
		{"under output.session", map[string]any{"output": map[string]any{"session": map[string]any{"id": "f"}}}, "f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(tt.response)
			}))
			defer srv.Close()

			client, _ := newTestClient(t, srv.URL, "tok", nil)
			sessionID, err := client.CreateSession(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, sessionID)
		})
	}
}

func TestCreateSession_MissingSessionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"output": map[string]any{"status": "ok"}})
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, "tok", nil)

	_, err := client.CreateSession(context.Background(), "user-1")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
	assert.Contains(t, upstream.Reason, "missing session id")
}

func TestSendMessage_RetryOnceAfter401(t *testing.T) {
	var requests atomic.Int32
	var secondAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		secondAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]any{"parts": []map[string]any{{"text": "hello back"}}},
		})
	}))
	defer srv.Close()

	client, source := newTestClient(t, srv.URL, "stale-token", nil)

	reply, err := client.SendMessage(context.Background(), "user-1", "sess-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)
	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, int32(1), source.calls.Load())
	assert.Equal(t, "Bearer refreshed-token", secondAuth, "retry must carry the refreshed token")
}

func TestSendMessage_SecondUnauthorizedSurfaced(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, source := newTestClient(t, srv.URL, "stale-token", nil)

	_, err := client.SendMessage(context.Background(), "user-1", "sess-1", "hello")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Equal(t, int32(2), requests.Load(), "exactly one retry, never a loop")
	assert.Equal(t, int32(1), source.calls.Load(), "exactly one refresh attempt")
}

func TestSendMessage_RefreshFailureSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	source := &fakeTokenSource{err: assert.AnError}
	client, _ := newTestClient(t, srv.URL, "stale-token", source)

	_, err := client.SendMessage(context.Background(), "user-1", "sess-1", "hello")

	var refreshErr *TokenRefreshError
	require.ErrorAs(t, err, &refreshErr)
}

func TestSendMessage_NonAuthFailureNotRetried(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, source := newTestClient(t, srv.URL, "tok", nil)

	_, err := client.SendMessage(context.Background(), "user-1", "sess-1", "hello")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Equal(t, int32(1), requests.Load())
	assert.Equal(t, int32(0), source.calls.Load())
}

func TestSendMessage_EmptyMessageRejectedBeforeNetwork(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, "tok", nil)

	_, err := client.SendMessage(context.Background(), "user-1", "sess-1", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Equal(t, int32(0), requests.Load())
}

func TestSendMessage_MalformedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"content": map[string]any{}})
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, "tok", nil)

	_, err := client.SendMessage(context.Background(), "user-1", "sess-1", "hello")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, upstream.Reason, "missing reply text")
}
