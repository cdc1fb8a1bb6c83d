package image

import (
	"context"
	"fmt"

	"stager/internal/infra"
	"stager/internal/providers/genai"
)

// syntheticSize is the edge length of placeholder images.
const syntheticSize = 1024

// FromConfig builds the generator selected by IMAGE_PROVIDER.
func FromConfig(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (Generator, error) {
	opts := genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  logger,
	}
	switch cfg.ImageProvider {
	case infra.ProviderSynthetic:
		return NewSynthetic(syntheticSize, syntheticSize, 0), nil
	case infra.ProviderGeminiSDK:
		client, err := genai.NewSDKClient(ctx, opts)
		if err != nil {
			return nil, err
		}
		return NewSDKGenerator(client), nil
	case infra.ProviderGemini:
		client, err := genai.NewClient(opts)
		if err != nil {
			return nil, err
		}
		return NewGeminiGenerator(client), nil
	default:
		return nil, fmt.Errorf("image: unknown provider %q", cfg.ImageProvider)
	}
}
