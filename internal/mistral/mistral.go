// Package mistral is a minimal client for the Mistral chat-completions API.
// It performs exactly one attempt per call and classifies every possible
// outcome instead of returning an opaque error, so the summarization
// pipeline can pick a precise fallback reason.
package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"grnews/internal/logger"
)

const defaultBaseURL = "https://api.mistral.ai/v1/chat/completions"

// defaultTimeout bounds a completion call when no timeout is configured.
// Generating twelve structured entries is slow; generous but bounded.
const defaultTimeout = 120 * time.Second

// Generation settings match the digest use case: low temperature for
// factual output, enough tokens for twelve structured story blocks.
const (
	temperature = 0.2
	maxTokens   = 3072
)

// maxErrorBody caps how much of an error response is retained for the log.
const maxErrorBody = 4 << 10

type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given credential. An empty apiKey is
// allowed; Complete then short-circuits without touching the network. A
// non-positive timeout falls back to the default.
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Request is the prompt pair for a single completion call.
type Request struct {
	System string
	User   string
}

// OutcomeKind classifies what happened to a completion attempt.
type OutcomeKind int

const (
	KindSuccess OutcomeKind = iota
	KindMissingKey
	KindAPIError
	KindNetworkError
	KindBadPayload
)

// Outcome is the normalized result of one completion attempt. Exactly the
// fields relevant to its Kind are populated.
type Outcome struct {
	Kind OutcomeKind

	// Success
	Content      string
	FinishReason string
	Truncated    bool // finish reason reported a length cutoff

	// APIError
	StatusCode int
	Body       string

	// NetworkError / BadPayload
	Reason  string
	Timeout bool
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// apiErrorBody is the structured error shape Mistral returns on non-200.
type apiErrorBody struct {
	Message string `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete issues a single synchronous completion call. It never retries;
// retry policy, if any, belongs to the caller.
func (c *Client) Complete(ctx context.Context, req Request) Outcome {
	if c.apiKey == "" {
		logger.Warn("mistral: no API key configured, skipping request")
		return Outcome{Kind: KindMissingKey, Reason: "API key is not configured"}
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature:    temperature,
		MaxTokens:      maxTokens,
		ResponseFormat: &responseFormat{Type: "text"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Outcome{Kind: KindBadPayload, Reason: fmt.Sprintf("encoding request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return Outcome{Kind: KindNetworkError, Reason: fmt.Sprintf("creating request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		timeout := isTimeout(err)
		logger.Error("mistral: request failed", "timeout", timeout, "error", err)
		return Outcome{Kind: KindNetworkError, Reason: err.Error(), Timeout: timeout}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("mistral: failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		errBody := string(raw)
		if msg := parseErrorMessage(raw); msg != "" {
			errBody = msg
		}
		// Principal diagnostic surface; always retained in the log even
		// though only a short reason reaches the user.
		logger.Error("mistral: API error", "status", resp.StatusCode, "body", errBody)
		return Outcome{Kind: KindAPIError, StatusCode: resp.StatusCode, Body: errBody}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return Outcome{Kind: KindBadPayload, Reason: fmt.Sprintf("decoding response: %v", err)}
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return Outcome{Kind: KindBadPayload, Reason: "no choices in response"}
	}

	choice := chatResp.Choices[0]
	truncated := choice.FinishReason == "length"
	if truncated {
		// Warning only; whether the output is still usable is the
		// validator's call.
		logger.Warn("mistral: completion was cut off for length")
	}

	return Outcome{
		Kind:         KindSuccess,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Truncated:    truncated,
	}
}

func parseErrorMessage(raw []byte) string {
	var eb apiErrorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error.Message
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
