package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"cqwealth-client/internal/config"

	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

// User-facing messages for failures that never reached the server. The
// backend's own message wins whenever it sent one.
const (
	msgTimeout = "Request timeout. Please check your connection."
	msgNetwork = "Network error. Please check your internet connection."
	msgGeneric = "An error occurred"
)

// TokenSource supplies the current bearer token, empty when signed out.
type TokenSource interface {
	Token() string
}

// Envelope is the normalized result of every backend call: either a success
// with the response's data payload, or a classified failure with a
// user-facing message.
type Envelope struct {
	Success bool
	Message string
	Data    json.RawMessage
	Kind    Kind
	Status  int // HTTP status when the server answered

	// ServerSuccess is the body's own success flag when the response carried
	// one. Success above follows the HTTP status; some endpoints (payment
	// verification) report their decision here instead.
	ServerSuccess *bool
}

// Err returns nil on success, otherwise the envelope as a structured *Error.
func (e *Envelope) Err() error {
	if e.Success {
		return nil
	}
	return &Error{Kind: e.Kind, Status: e.Status, Message: e.Message}
}

type Backend struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	log        *zap.Logger
}

func NewBackend(cfg *config.Backend, tokens TokenSource, log *zap.Logger) *Backend {
	return &Backend{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tokens:  tokens,
		log:     log,
	}
}

// wire is the backend's response convention: {success, message?, data?, error?}.
type wire struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Do performs one backend call and normalizes the outcome. It never panics
// and never returns a bare error.
func (b *Backend) Do(ctx context.Context, method, path string, body any) *Envelope {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &Envelope{Message: msgGeneric, Kind: KindUnknown}
		}
		reqBody = bytes.NewReader(raw)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return &Envelope{Message: msgGeneric, Kind: KindUnknown}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := b.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return b.transportFailure(ctx, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return b.transportFailure(ctx, method, path, err)
	}

	b.log.Debug("backend response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))

	var parsed wire
	jsonBody := json.Unmarshal(raw, &parsed) == nil

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := msgGeneric
		if jsonBody {
			if parsed.Message != "" {
				msg = parsed.Message
			} else if parsed.Error != "" {
				msg = parsed.Error
			}
		}
		return &Envelope{
			Message: msg,
			Kind:    KindHTTPStatus,
			Status:  resp.StatusCode,
		}
	}

	env := &Envelope{
		Success: true,
		Status:  resp.StatusCode,
	}
	if jsonBody {
		env.ServerSuccess = parsed.Success
	}
	switch {
	case jsonBody && len(parsed.Data) > 0:
		env.Message = parsed.Message
		env.Data = parsed.Data
	case jsonBody:
		// no data field, hand back the whole body
		env.Message = parsed.Message
		env.Data = json.RawMessage(raw)
	default:
		// plain-text endpoint
		env.Message = strings.TrimSpace(string(raw))
	}
	return env
}

func (b *Backend) transportFailure(ctx context.Context, method, path string, err error) *Envelope {
	kind := KindNetwork
	msg := msgNetwork
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		kind = KindTimeout
		msg = msgTimeout
	}

	b.log.Warn("backend request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("kind", kind.String()),
		zap.Error(err))

	return &Envelope{Message: msg, Kind: kind}
}
