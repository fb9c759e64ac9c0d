package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/marcos777-ux/Newsick-public/pkg/idx"
)

// maxResponseBytes caps how much of a reply we read, the gateway never
// sends more than a few hundred bytes.
const maxResponseBytes = 1 << 20

// HeaderRequestID carries the request id to the gateway logs.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID attaches a request id that doRequest sends as X-Request-ID.
// Without one a fresh id is generated per request.
func WithRequestID(ctx context.Context, id idx.ID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by WithRequestID, if any.
func RequestIDFromContext(ctx context.Context) (idx.ID, bool) {
	id, ok := ctx.Value(requestIDKey{}).(idx.ID)
	return id, ok && !id.IsZero()
}

func requestIDFrom(ctx context.Context) idx.ID {
	if id, ok := RequestIDFromContext(ctx); ok {
		return id
	}
	return idx.New()
}

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doRequest performs an HTTP request with the SDKClient's HTTP client.
// Any failure is returned as a *TransportError tagged with op.
func (c *SDKClient) doRequest(
	ctx context.Context,
	op, method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestIDFrom(ctx).String())
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to send request: %w", err)}
	}

	return resp, nil
}

// postJSON encodes payload and POSTs it to path.
func (c *SDKClient) postJSON(ctx context.Context, op, path string, payload any) (*http.Response, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	return c.doRequest(ctx, op, http.MethodPost, path, bytes.NewReader(raw), map[string]string{
		"Content-Type": "application/json",
	})
}

// readBody reads and closes the response body.
func readBody(resp *http.Response, op string) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}
	return body, nil
}

// decodeOutcome turns a login/register reply into an AuthOutcome. Any status
// is accepted as long as the body carries a "success" flag; a body without
// one (proxy error pages, empty replies) is a transport failure.
func decodeOutcome(resp *http.Response, op string) (*AuthOutcome, error) {
	body, err := readBody(resp, op)
	if err != nil {
		return nil, err
	}

	var wire outcomeWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}
	if wire.Success == nil {
		return nil, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        errors.New("response is missing the success flag"),
		}
	}

	return &AuthOutcome{
		Success:    *wire.Success,
		Token:      wire.Token,
		Message:    wire.Message,
		StatusCode: resp.StatusCode,
	}, nil
}

// decodeJSON decodes a JSON response into target when the status matches.
// A mismatched status with an outcome-shaped body becomes a *RejectionError,
// anything else a *TransportError.
func decodeJSON(resp *http.Response, op string, target any, expectedStatus int) error {
	body, err := readBody(resp, op)
	if err != nil {
		return err
	}

	if resp.StatusCode != expectedStatus {
		var wire outcomeWire
		if err := json.Unmarshal(body, &wire); err == nil && wire.Success != nil {
			out := AuthOutcome{Success: *wire.Success, Message: wire.Message, StatusCode: resp.StatusCode}
			if rejErr := out.Err(); rejErr != nil {
				return rejErr
			}
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return &RejectionError{StatusCode: resp.StatusCode}
		}
		return &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", http.StatusText(resp.StatusCode)),
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}

	return nil
}
