// Package client holds the HTTP clients for the four remote services the
// engine consumes: auth, directory, catalog and orders. Each call either
// succeeds, fails with a classified error carrying backend detail, or
// surfaces a transport failure. All payloads cross internal/wire.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"storefront-engine/internal/domain"
)

// Client is the shared transport for the service clients.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *log.Logger
}

// New builds a client for the backend at baseURL. Timeouts surface to
// callers as Transport errors.
func New(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do performs one JSON round trip. in and out may be nil. Headers may be
// nil; Content-Type and Accept are always set.
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Printf("client: %s %s transport error: %v", method, path, err)
		return domain.Wrap(domain.KindTransport, fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		detail := eb.Message
		if detail == "" {
			detail = eb.Error
		}
		c.logger.Printf("client: %s %s status=%d detail=%q", method, path, resp.StatusCode, detail)
		return classify(resp.StatusCode, detail)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Wrap(domain.KindTransport, fmt.Sprintf("decode %s %s", method, path), err)
	}
	return nil
}

// classify maps a remote status code onto the error taxonomy.
func classify(status int, detail string) error {
	switch {
	case status == http.StatusBadRequest:
		return domain.E(domain.KindValidationRejected, detail)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.E(domain.KindUnauthorized, detail)
	case status == http.StatusNotFound:
		return domain.E(domain.KindNotFound, detail)
	case status >= 500:
		return domain.E(domain.KindServerError, detail)
	default:
		return domain.E(domain.KindValidationRejected, fmt.Sprintf("unexpected status %d: %s", status, detail))
	}
}
