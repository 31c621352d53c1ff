// ABOUTME: HTTP gateway client for the external conversational agent API
// ABOUTME: Attaches bearer tokens and retries exactly once after a 401 refresh

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	queryPath       = ":query"
	streamQueryPath = ":streamQuery?alt=sse"
)

// Client talks to the external agent API. All calls attach the current
// bearer token via the TokenManager; on a 401 the token is refreshed and the
// request retried exactly once.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  *TokenManager
	logger  *slog.Logger
}

// NewClient creates an agent API client for the given base URL.
func NewClient(baseURL string, tokens *TokenManager, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger.With("component", "agent-client"),
	}
}

// agentRequest is the JSON envelope both agent endpoints accept.
type agentRequest struct {
	ClassMethod string `json:"class_method"`
	Input       any    `json:"input"`
}

// CreateSession asks the agent to create a conversation session for the user
// and returns the agent-assigned session id.
func (c *Client) CreateSession(ctx context.Context, userID string) (string, error) {
	body, err := c.do(ctx, queryPath, agentRequest{
		ClassMethod: "create_session",
		Input:       map[string]any{"user_id": userID},
	})
	if err != nil {
		return "", err
	}

	sessionID := extractSessionID(body)
	if sessionID == "" {
		// Contract violation by the upstream, not a transport failure.
		c.logger.Error("agent response missing session id")
		return "", &UpstreamError{StatusCode: http.StatusBadGateway, Reason: "missing session id in agent response"}
	}

	return sessionID, nil
}

// SendMessage sends a message on an existing session and returns the raw
// text of the agent's reply. The stream endpoint is consumed as a single
// synchronous JSON response.
func (c *Client) SendMessage(ctx context.Context, userID, sessionID, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	body, err := c.do(ctx, streamQueryPath, agentRequest{
		ClassMethod: "async_stream_query",
		Input: map[string]any{
			"user_id":    userID,
			"session_id": sessionID,
			"message":    message,
		},
	})
	if err != nil {
		return "", err
	}

	var reply struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &reply); err != nil || len(reply.Content.Parts) == 0 {
		c.logger.Error("agent reply missing content parts")
		return "", &UpstreamError{StatusCode: http.StatusBadGateway, Reason: "missing reply text in agent response"}
	}

	return reply.Content.Parts[0].Text, nil
}

// do executes one agent API call with the retry-once-on-401 policy.
func (c *Client) do(ctx context.Context, path string, reqBody agentRequest) ([]byte, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encoding agent request: %w", err)
	}

	status, body, err := c.post(ctx, path, payload, c.tokens.EnsureToken(ctx))
	if err != nil {
		return nil, &UpstreamError{Reason: "agent request failed", Err: err}
	}

	if status == http.StatusUnauthorized {
		token, err := c.tokens.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		status, body, err = c.post(ctx, path, payload, token)
		if err != nil {
			return nil, &UpstreamError{Reason: "agent request failed", Err: err}
		}
	}

	if status < 200 || status >= 300 {
		// Response bodies stay in the logs; callers only see the status.
		c.logger.Error("agent API error", "path", path, "status", status, "body", string(body))
		return nil, &UpstreamError{StatusCode: status}
	}

	return body, nil
}

// post issues a single HTTP request. The bearer header is omitted when no
// token is available; the upstream rejection is surfaced as a status code.
func (c *Client) post(ctx context.Context, path string, payload []byte, token string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}

	return resp.StatusCode, body, nil
}

// extractSessionID locates a session identifier in the shapes the agent is
// known to return: top-level, nested under "output", nested under "session",
// or under "output.session".
func extractSessionID(raw []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}

	sources := []any{payload, payload["output"], payload["session"]}
	if output, ok := payload["output"].(map[string]any); ok {
		sources = append(sources, output["session"])
	}

	for _, source := range sources {
		m, ok := source.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range []string{"session_id", "sessionId", "id"} {
			if id := stringValue(m[key]); id != "" {
				return id
			}
		}
		if session, ok := m["session"].(map[string]any); ok {
			for _, key := range []string{"id", "session_id"} {
				if id := stringValue(session[key]); id != "" {
					return id
				}
			}
		}
	}

	return ""
}

// stringValue renders string and numeric JSON values as identifiers.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}
