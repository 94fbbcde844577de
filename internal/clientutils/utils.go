package clientutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/anikutusu/anikutusu/internal/sse"
)

// JSONRequestConfig holds configuration for JSON requests
type JSONRequestConfig struct {
	URL     string
	Headers map[string]string
	Body    any
}

// SSERequestConfig holds configuration for SSE requests
type SSERequestConfig struct {
	URL     string
	Headers map[string]string
	Body    any
}

// DoJSON performs a JSON POST request and unmarshals the response
func DoJSON[T any](ctx context.Context, client *http.Client, config JSONRequestConfig) (*T, error) {
	reqBody, err := json.Marshal(config.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", config.URL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result T
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// SSEStream decodes JSON payloads from data lines of a server-sent event
// stream. It follows the pull model: Next advances, Current returns the
// decoded event, Err reports the terminal error.
type SSEStream[T any] struct {
	response *http.Response
	scanner  *sse.Scanner

	curr *T
	err  error
}

// Next advances to the next data line, decoding it into the current event.
func (s *SSEStream[T]) Next() bool {
	for s.scanner.Scan() {
		data, ok := sse.IsDataLine(s.scanner.Text())
		if !ok {
			continue
		}
		var event T
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			s.err = fmt.Errorf("failed to unmarshal sse event: %w", err)
			return false
		}
		s.curr = &event
		return true
	}
	if err := s.scanner.Err(); err != nil {
		s.err = fmt.Errorf("scanner error: %w", err)
	}
	return false
}

// Current returns the last decoded event.
func (s *SSEStream[T]) Current() *T {
	return s.curr
}

// Err returns the error encountered during streaming, if any.
func (s *SSEStream[T]) Err() error {
	return s.err
}

// Close closes the underlying response body.
func (s *SSEStream[T]) Close() error {
	return s.response.Body.Close()
}

// DoSSE performs a streaming SSE POST request and returns a decoded stream
func DoSSE[T any](ctx context.Context, client *http.Client, config SSERequestConfig) (*SSEStream[T], error) {
	reqBody, err := json.Marshal(config.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", config.URL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for key, value := range config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return &SSEStream[T]{
		response: resp,
		scanner:  sse.NewScanner(resp.Body),
	}, nil
}
