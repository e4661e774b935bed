package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ssgreg/repeat"

	"shmboard/models"
)

// HTTPError is a non-2xx answer from an upstream REST API
type HTTPError struct {
	URL     string
	Code    int
	Message string // "error" field of the body, when present
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned %d: %s", e.URL, e.Code, e.Message)
	}
	return fmt.Sprintf("%s returned %d", e.URL, e.Code)
}

func (e *HTTPError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

type jsonClient struct {
	httpClient *http.Client
	maxTries   int
	baseDelay  time.Duration
}

func newJSONClient(timeout time.Duration, maxTries int) *jsonClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxTries <= 0 {
		maxTries = 1
	}
	return &jsonClient{
		httpClient: &http.Client{Timeout: timeout},
		maxTries:   maxTries,
		baseDelay:  250 * time.Millisecond,
	}
}

// do sends body (if any) as JSON and decodes the response into out (if any).
// GETs are retried on transient failures, writes are sent once.
func (c *jsonClient) do(ctx context.Context, method, url string, creds *models.Credentials, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	tries := 1
	if method == http.MethodGet {
		tries = c.maxTries
	}

	var lastErr error
	_ = repeat.Repeat(
		repeat.Fn(func() error {
			if ctx.Err() != nil {
				lastErr = ctx.Err()
				return lastErr
			}
			lastErr = c.once(ctx, method, url, creds, payload, out)
			if lastErr == nil {
				return nil
			}
			var he *HTTPError
			if errors.As(lastErr, &he) && !he.Temporary() {
				return lastErr
			}
			return repeat.HintTemporary(lastErr)
		}),
		repeat.StopOnSuccess(),
		repeat.LimitMaxTries(tries),
		repeat.WithDelay(
			repeat.SetContextHintStop(),
			(&repeat.FullJitterBackoffBuilder{
				BaseDelay: c.baseDelay,
				MaxDelay:  4 * c.baseDelay,
			}).Set(),
		),
	)
	return lastErr
}

func (c *jsonClient) once(ctx context.Context, method, url string, creds *models.Credentials, payload []byte, out interface{}) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds != nil {
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		he := &HTTPError{URL: url, Code: resp.StatusCode}
		var msg struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &msg) == nil {
			he.Message = msg.Error
		}
		return he
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
