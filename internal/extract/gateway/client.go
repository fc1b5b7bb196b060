package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/invoiceflow/invoice-server/internal/extract"
)

// chatRequest is the chat-completions payload the gateway expects. Invoice
// extraction always sends exactly one system and one user message.
type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float32       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete implements extract.Completer. Non-2xx gateway statuses map to the
// typed kinds the orchestrator surfaces: 429 → RateLimited, 402 →
// QuotaExhausted, anything else → ServiceError with the upstream status.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("gateway.complete.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(userPrompt),
	)

	req := chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	raw, status, err := c.post(ctx, rid, req)
	if err != nil {
		c.log.Error("gateway.complete.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", classifyStatus(status, err)
	}

	var cc chatResponse
	if derr := json.Unmarshal(raw, &cc); derr != nil {
		c.log.Error("gateway.complete.decode_error",
			"req_id", rid, "error", derr, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", &extract.Error{Kind: extract.KindServiceError, Cause: fmt.Errorf("decode gateway response: %w", derr)}
	}
	if len(cc.Choices) == 0 {
		c.log.Error("gateway.complete.no_choices", "req_id", rid, "raw_bytes", len(raw))
		return "", &extract.Error{Kind: extract.KindServiceError, Cause: fmt.Errorf("no choices in gateway response")}
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.log.Info("gateway.complete.ok",
		"req_id", rid,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

// post sends one chat-completions request and returns the raw body and
// status. The status is returned even on failure so the caller can classify
// 429/402 upstream responses.
func (c *Client) post(ctx context.Context, rid string, body chatRequest) ([]byte, int, error) {
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bs))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("gateway.response_body_close_error", "req_id", rid, "error", cerr)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("gateway status %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}

func classifyStatus(status int, cause error) *extract.Error {
	switch status {
	case http.StatusTooManyRequests:
		return &extract.Error{Kind: extract.KindRateLimited, Status: status, Cause: cause}
	case http.StatusPaymentRequired:
		return &extract.Error{Kind: extract.KindQuotaExhausted, Status: status, Cause: cause}
	default:
		return &extract.Error{Kind: extract.KindServiceError, Status: status, Cause: cause}
	}
}
