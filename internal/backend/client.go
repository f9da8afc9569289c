package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the bearer credential attached to protected requests.
// An empty token means the caller is anonymous.
type TokenSource interface {
	Token() string
}

// Error is a normalized request failure: the server-provided message when
// one exists, a fallback otherwise. Callers surface Message verbatim.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// envelope is the response shape every endpoint answers with.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the shop REST backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
	tokens  TokenSource
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger enables request logging.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTokenSource wires the session gate in as the credential provider.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one request and decodes the response envelope. Any transport
// failure, non-2xx status, or success=false envelope comes back as an error;
// server messages are preserved, fallback is used when the body is unusable.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, authed bool, fallback string) (envelope, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return envelope{}, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("backend: %s %s error=%v", method, path, err)
		return envelope{}, &Error{Message: fallback}
	}
	defer res.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(res.Body).Decode(&env)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = fallback
		}
		c.logger.Printf("backend: %s %s status=%d message=%q", method, path, res.StatusCode, msg)
		return envelope{}, &Error{Status: res.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		c.logger.Printf("backend: %s %s decode error=%v", method, path, decodeErr)
		return envelope{}, &Error{Status: res.StatusCode, Message: fallback}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fallback
		}
		return envelope{}, &Error{Status: res.StatusCode, Message: msg}
	}
	c.logger.Printf("backend: %s %s status=%d", method, path, res.StatusCode)
	return env, nil
}
