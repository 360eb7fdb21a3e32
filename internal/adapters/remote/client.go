// Package remote implements the evaluation contract over HTTP: a client that
// satisfies secondary.Evaluator and a handler that serves it.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kdougan/js-notebook/internal/ports/secondary"
)

// ValidatePath is the evaluation endpoint.
const ValidatePath = "/api/validate"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 16 << 20

// Client implements secondary.Evaluator against a remote evaluation service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new remote evaluator client. A nil httpClient uses
// http.DefaultClient; deadlines come from the request context.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Evaluate posts the script and decodes the service's response.
func (c *Client) Evaluate(ctx context.Context, req secondary.EvaluateRequest) (*secondary.EvaluateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ValidatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to reach evaluator: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read evaluator response: %w", err)
	}

	var out secondary.EvaluateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("evaluator returned %s", resp.Status)
		}
		return nil, fmt.Errorf("failed to decode evaluator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && out.Error == "" {
		return nil, fmt.Errorf("evaluator returned %s", resp.Status)
	}
	return &out, nil
}
