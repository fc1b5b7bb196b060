package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceflow/invoice-server/internal/extract"
	"github.com/invoiceflow/invoice-server/internal/invoice"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCompleter struct {
	content string
	err     error
}

func (s *stubCompleter) Complete(context.Context, string, string) (string, error) {
	return s.content, s.err
}

func extractServer(c extract.Completer) *Server {
	norm := invoice.NewNormalizer(nil)
	return New(extract.NewOrchestrator(c, norm, nil), norm, nil, nil, nil, nil)
}

func postExtract(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHandleExtractAccepted(t *testing.T) {
	srv := extractServer(&stubCompleter{content: `{
		"vendor": {"name": "Acme"},
		"client": {"name": "Wayne"},
		"items": [{"description": "Widget", "quantity": 2, "unitPrice": 100, "taxRate": 13}],
		"shipping": 50
	}`})

	w := postExtract(t, srv, `{"text":"Invoice from Acme to Wayne"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		State  string `json:"state"`
		Draft  struct {
			Vendor struct {
				Name string `json:"name"`
			} `json:"vendor"`
		} `json:"draft"`
		Totals struct {
			GrandTotal string `json:"grand_total"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp.State)
	assert.Equal(t, "Acme", resp.Draft.Vendor.Name)
	assert.Equal(t, "276.00", resp.Totals.GrandTotal)
}

func TestHandleExtractStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		completer  *stubCompleter
		text       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "empty input",
			completer:  &stubCompleter{content: "{}"},
			text:       "   ",
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Please provide invoice text.",
		},
		{
			name:       "rate limited",
			completer:  &stubCompleter{err: &extract.Error{Kind: extract.KindRateLimited, Status: 429}},
			text:       "some text",
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "AI rate limit exceeded. Please try again later.",
		},
		{
			name:       "quota exhausted",
			completer:  &stubCompleter{err: &extract.Error{Kind: extract.KindQuotaExhausted, Status: 402}},
			text:       "some text",
			wantStatus: http.StatusPaymentRequired,
			wantMsg:    "AI credits exhausted. Please add credits to continue.",
		},
		{
			name:       "service error",
			completer:  &stubCompleter{err: &extract.Error{Kind: extract.KindServiceError, Status: 500}},
			text:       "some text",
			wantStatus: http.StatusBadGateway,
			wantMsg:    "AI extraction failed. Please try again.",
		},
		{
			name:       "missing vendor",
			completer:  &stubCompleter{content: `{"vendor":{},"client":{"name":"Acme"},"items":[]}`},
			text:       "some text",
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Could not extract vendor information. Please provide clearer invoice data.",
		},
		{
			name:       "malformed response",
			completer:  &stubCompleter{content: "no json here"},
			text:       "some text",
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Failed to parse extracted data. Please try with clearer invoice text.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := extractServer(tt.completer)
			body, err := json.Marshal(gin.H{"text": tt.text})
			require.NoError(t, err)

			w := postExtract(t, srv, string(body))

			require.Equal(t, tt.wantStatus, w.Code)
			var resp struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMsg, resp.Error)
		})
	}
}

func TestHandleExtractBadBody(t *testing.T) {
	srv := extractServer(&stubCompleter{content: "{}"})
	w := postExtract(t, srv, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
