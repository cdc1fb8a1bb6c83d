package genai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	gsdk "google.golang.org/genai"

	"stager/internal/infra"
)

// SDKClient performs the same image edit through the official Go SDK.
type SDKClient struct {
	client *gsdk.Client
	model  string
	hasKey bool
	logger *infra.Logger
}

// NewSDKClient builds an SDK-backed client. Without a key no SDK client is
// created and the missing credential surfaces through HasAPIKey.
func NewSDKClient(ctx context.Context, opts Options) (*SDKClient, error) {
	cfg := &gsdk.ClientConfig{
		APIKey:      strings.TrimSpace(opts.APIKey),
		Backend:     gsdk.BackendGeminiAPI,
		HTTPClient:  opts.httpClient(),
		HTTPOptions: sdkHTTPOptions(opts.BaseURL),
	}
	c := &SDKClient{model: opts.model(), hasKey: cfg.APIKey != "", logger: opts.logger()}
	if !c.hasKey {
		return c, nil
	}

	client, err := gsdk.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai: create sdk client: %w", err)
	}
	c.client = client
	return c, nil
}

// sdkHTTPOptions splits a REST base such as ".../v1beta" into the host part
// and API version the SDK expects separately.
func sdkHTTPOptions(base string) gsdk.HTTPOptions {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" || base == DefaultBaseURL {
		return gsdk.HTTPOptions{}
	}
	if i := strings.LastIndex(base, "/"); i > len("https://") {
		if version := base[i+1:]; strings.HasPrefix(version, "v1") {
			return gsdk.HTTPOptions{BaseURL: base[:i+1], APIVersion: version}
		}
	}
	return gsdk.HTTPOptions{BaseURL: base + "/"}
}

func (c *SDKClient) Model() string {
	return c.model
}

func (c *SDKClient) HasAPIKey() bool {
	return c.hasKey
}

// EditImage sends the source image followed by the instruction and returns
// the first inline image of the response.
func (c *SDKClient) EditImage(ctx context.Context, req EditRequest) (*InlineImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.client == nil {
		return nil, errNoCredential
	}
	raw, err := base64.StdEncoding.DecodeString(req.Image.Data)
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}

	parts := []*gsdk.Part{
		{InlineData: &gsdk.Blob{MIMEType: req.Image.MIMEType, Data: raw}},
		gsdk.NewPartFromText(req.Instruction),
	}
	contents := []*gsdk.Content{gsdk.NewContentFromParts(parts, gsdk.RoleUser)}

	start := time.Now()
	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, &gsdk.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("request_id", req.RequestID).
			Str("model", c.model).
			Dur("duration", time.Since(start)).
			Msg("genai: sdk image edit failed")
		return nil, err
	}

	for _, candidate := range res.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				c.logger.Debug().
					Str("request_id", req.RequestID).
					Str("model", c.model).
					Dur("duration", time.Since(start)).
					Msg("genai: sdk image edit succeeded")
				return &InlineImage{
					Data:     base64.StdEncoding.EncodeToString(part.InlineData.Data),
					MIMEType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}
	return nil, ErrNoImage
}
