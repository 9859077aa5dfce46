package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// ContentTypeMultipart marks a request whose Data is a *Form.
const ContentTypeMultipart = "multipart/form-data"

// Request describes one call against the backend.
type Request struct {
	URL         string // path appended to the base URL
	Method      string // defaults to GET
	Data        any    // *Form for multipart, anything else is sent as JSON
	Token       string // adds a bearer Authorization header when set
	ContentType string
}

// Doer is implemented by Client and by test doubles.
type Doer interface {
	Do(ctx context.Context, req Request) Response
}

// Client represents an HTTP client for the portfolio backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new API client. A zero timeout disables the client timeout.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "apiclient").Logger(),
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// Do performs req and always returns an envelope. Transport failures,
// non-2xx statuses and undecodable bodies all come back as Success=false.
func (c *Client) Do(ctx context.Context, req Request) Response {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	requestID := ulid.Make().String()

	log := c.logger.With().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", req.URL).
		Logger()

	body, contentType, err := encodeBody(req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode request body")
		return Failure(KindInvalid, err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.resolve(req.URL), body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create request")
		return Failure(KindInvalid, fmt.Sprintf("failed to create request: %v", err))
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", req.Token))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Debug().Err(ctxErr).Msg("Request cancelled")
			return Failure(KindCancelled, fmt.Sprintf("request cancelled: %v", ctxErr))
		}
		log.Warn().Err(err).Msg("Request failed without a response")
		return Failure(KindNetwork, fmt.Sprintf("failed to send request: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn().Err(err).Int("status", resp.StatusCode).Msg("Failed to read response body")
		if ctx.Err() != nil {
			return Failure(KindCancelled, fmt.Sprintf("request cancelled: %v", ctx.Err()))
		}
		return Failure(KindNetwork, fmt.Sprintf("failed to read response: %v", err))
	}

	out := buildResponse(resp, raw)

	log.Debug().
		Int("status", out.Status).
		Bool("success", out.Success).
		Dur("duration", time.Since(start)).
		Msg("HTTP request")

	return out
}

func (c *Client) resolve(path string) string {
	if path == "" {
		return c.baseURL
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func encodeBody(req Request) (io.Reader, string, error) {
	switch data := req.Data.(type) {
	case nil:
		if req.ContentType == ContentTypeMultipart {
			return nil, "", errors.New("multipart content type requires a form body")
		}
		return nil, "", nil
	case *Form:
		var buf bytes.Buffer
		ct, err := data.encode(&buf)
		if err != nil {
			return nil, "", err
		}
		return &buf, ct, nil
	default:
		if req.ContentType == ContentTypeMultipart {
			return nil, "", errors.New("multipart content type requires a form body")
		}
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request: %w", err)
		}
		return bytes.NewReader(payload), "application/json", nil
	}
}

func buildResponse(resp *http.Response, raw []byte) Response {
	out := Response{
		Status:  resp.StatusCode,
		Success: resp.StatusCode >= 200 && resp.StatusCode < 300,
		Raw:     raw,
	}

	if len(bytes.TrimSpace(raw)) > 0 {
		var parsed any
		if err := json.Unmarshal(raw, &parsed); err != nil {
			if strings.Contains(resp.Header.Get("Content-Type"), "json") {
				out.Success = false
				out.Kind = KindInvalid
				out.Message = fmt.Sprintf("failed to decode response: %v", err)
				return out
			}
			out.Data = string(raw)
		} else {
			out.Data = parsed
		}
	}

	out.Message = messageFrom(out.Data)
	if out.Success {
		out.Kind = KindOK
		return out
	}

	if out.Message == "" {
		out.Message = http.StatusText(resp.StatusCode)
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		out.Kind = KindUnauthorized
	case http.StatusNotFound:
		out.Kind = KindNotFound
	default:
		out.Kind = KindHTTP
	}
	return out
}

// messageFrom picks the human readable message out of a decoded body.
func messageFrom(data any) string {
	obj, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"message", "error", "msg"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
