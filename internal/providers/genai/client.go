package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stager/internal/infra"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash-image"

	defaultTimeout = 120 * time.Second
	maxErrorBody   = 16 << 10
)

var (
	// ErrNoImage is returned when a response carries no inline image part.
	ErrNoImage      = errors.New("genai: response contained no image part")
	errNoCredential = errors.New("genai: api key not configured")
)

// Options controls how the Gemini clients are configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

func (o Options) model() string {
	if m := strings.TrimSpace(o.Model); m != "" {
		return m
	}
	return DefaultModel
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

func (o Options) logger() *infra.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	l := zerolog.New(io.Discard)
	return &l
}

// InlineImage is a base64 encoded image payload as carried on the wire.
type InlineImage struct {
	Data     string
	MIMEType string
}

// EditRequest asks the model to produce one image from a source image and an
// instruction.
type EditRequest struct {
	Instruction string
	Image       InlineImage
	RequestID   string
}

// Client calls the generateContent REST endpoint directly.
type Client struct {
	apiKey   string
	endpoint string
	model    string
	http     *http.Client
	logger   *infra.Logger
}

func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("genai: invalid base url: %w", err)
	}
	model := opts.model()
	return &Client{
		apiKey:   strings.TrimSpace(opts.APIKey),
		endpoint: base + "/models/" + url.PathEscape(model) + ":generateContent",
		model:    model,
		http:     opts.httpClient(),
		logger:   opts.logger(),
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// EditImage sends the source image followed by the instruction and returns
// the first inline image of the response.
func (c *Client) EditImage(ctx context.Context, req EditRequest) (*InlineImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := c.logger.With().Str("request_id", req.RequestID).Str("model", c.model).Logger()

	start := time.Now()
	resp, err := c.generate(ctx, newEditRequest(req))
	if err != nil {
		log.Warn().Err(err).Dur("duration", time.Since(start)).Msg("genai: image edit failed")
		return nil, err
	}
	img, ok := resp.image()
	if !ok {
		log.Warn().
			Int("candidates", len(resp.Candidates)).
			Str("block_reason", resp.blockReason()).
			Msg("genai: response carried no image")
		return nil, ErrNoImage
	}
	log.Debug().
		Str("mime_type", img.MIMEType).
		Int("payload_bytes", len(img.Data)).
		Dur("duration", time.Since(start)).
		Msg("genai: image edit succeeded")
	return img, nil
}

func (c *Client) generate(ctx context.Context, payload generateRequest) (generateResponse, error) {
	var out generateResponse
	body, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return out, fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return out, statusError(resp.StatusCode, data)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode gemini response: %w", err)
	}
	return out, nil
}
