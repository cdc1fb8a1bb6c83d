package image

import (
	"context"

	"stager/internal/providers/genai"
)

// imageEditor is satisfied by both the REST and SDK Gemini clients.
type imageEditor interface {
	HasAPIKey() bool
	EditImage(ctx context.Context, req genai.EditRequest) (*genai.InlineImage, error)
}

// GeminiGenerator stages products through a Gemini image model.
type GeminiGenerator struct {
	client imageEditor
}

// NewGeminiGenerator wraps the REST client.
func NewGeminiGenerator(client *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

// NewSDKGenerator wraps the official SDK client.
func NewSDKGenerator(client *genai.SDKClient) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req SceneRequest) (*Asset, error) {
	if !g.client.HasAPIKey() {
		return nil, errMissingKey()
	}
	img, err := g.client.EditImage(ctx, genai.EditRequest{
		Instruction: BuildScenePrompt(req.Prompt, req.ShouldModifyItem),
		Image:       genai.InlineImage{Data: req.ImageBase64, MIMEType: req.MIMEType},
		RequestID:   req.RequestID,
	})
	if err != nil {
		return nil, wrapFailure(err)
	}
	return &Asset{Base64: img.Data, MIMEType: normalizeMIME(img.MIMEType)}, nil
}

var _ Generator = (*GeminiGenerator)(nil)
