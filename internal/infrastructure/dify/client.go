// Package dify is the conversation gateway to the Dify chat API.
package dify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/entity"
)

const maxErrorBodyBytes = 2048

// Client implements the chat-messages and conversation-variables endpoints
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a new Dify client. A zero timeout keeps the transport default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatMessageRequest struct {
	Query          string         `json:"query"`
	User           string         `json:"user"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Inputs         map[string]any `json:"inputs"`
	ResponseMode   string         `json:"response_mode"`
}

type chatMessageResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	CreatedAt      int64  `json:"created_at"`
}

type variablesResponse struct {
	Data []struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	} `json:"data"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// SendMessage posts a blocking chat message
func (c *Client) SendMessage(ctx context.Context, req *entity.ChatRequest) (*entity.ChatReply, error) {
	inputs := req.Inputs
	if inputs == nil {
		inputs = map[string]any{}
	}

	body, err := json.Marshal(chatMessageRequest{
		Query:          req.Query,
		User:           req.UserID,
		ConversationID: req.ConversationID,
		Inputs:         inputs,
		ResponseMode:   "blocking",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	var out chatMessageResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/chat-messages", body, &out); err != nil {
		return nil, err
	}

	return &entity.ChatReply{
		Answer:         out.Answer,
		ConversationID: out.ConversationID,
		MessageID:      out.MessageID,
		CreatedAt:      time.Unix(out.CreatedAt, 0).UTC(),
	}, nil
}

// GetVariables lists the conversation variables in upstream order
func (c *Client) GetVariables(ctx context.Context, conversationID, userID string) ([]entity.ConversationVariable, error) {
	endpoint := fmt.Sprintf("%s/conversations/%s/variables?user=%s",
		c.baseURL, url.PathEscape(conversationID), url.QueryEscape(userID))

	var out variablesResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}

	vars := make([]entity.ConversationVariable, 0, len(out.Data))
	for _, v := range out.Data {
		vars = append(vars, entity.ConversationVariable{Name: v.Name, Value: variableText(v.Value)})
	}

	return vars, nil
}

// variableText renders a variable value: strings verbatim, null as empty, anything else as JSON.
func variableText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}

	return string(trimmed)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	if strings.TrimSpace(c.apiKey) == "" {
		return apperror.ErrGatewayNotConfigured
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("dify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return upstreamError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode dify response: %w", err)
	}

	return nil
}

func upstreamError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	msg := strings.TrimSpace(string(raw))
	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			msg = parsed.Message
		case parsed.Error != "":
			msg = parsed.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &apperror.UpstreamError{StatusCode: resp.StatusCode, Message: msg}
}
