package image

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	stdimage "image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"time"
)

// SyntheticGenerator renders a deterministic striped PNG instead of calling a
// model. It exists for local development without credentials.
type SyntheticGenerator struct {
	width  int
	height int
	delay  time.Duration
}

// NewSynthetic returns a generator producing width x height placeholders after
// delay.
func NewSynthetic(width, height int, delay time.Duration) *SyntheticGenerator {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 512
	}
	return &SyntheticGenerator{width: width, height: height, delay: delay}
}

func (s *SyntheticGenerator) Generate(ctx context.Context, req SceneRequest) (*Asset, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seed := deterministicSeed(req.Prompt, req.ShouldModifyItem, req.MIMEType, len(req.ImageBase64))
	data, err := renderSyntheticImage(s.width, s.height, seed)
	if err != nil {
		return nil, wrapFailure(err)
	}
	return &Asset{Base64: base64.StdEncoding.EncodeToString(data), MIMEType: "image/png"}, nil
}

func renderSyntheticImage(width, height int, seed string) ([]byte, error) {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &stdimage.Uniform{base}, stdimage.Point{}, draw.Src)

	stripeHeight := max(16, height/12)
	for y := 0; y < height; y += stripeHeight * 2 {
		stripe := stdimage.Rect(0, y, width, min(height, y+stripeHeight))
		draw.Draw(img, stripe, &stdimage.Uniform{accent}, stdimage.Point{}, draw.Over)
	}

	diagonal := colorFromSeed(seed, 2)
	for x := 0; x < max(width, height); x += max(16, width/32) {
		for y := 0; y < height && x+y < width; y++ {
			img.Set(x+y, y, diagonal)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode synthetic image: %w", err)
	}
	return buf.Bytes(), nil
}

func colorFromSeed(seed string, shift int) color.RGBA {
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{R: hexByte(segment[0:2]), G: hexByte(segment[2:4]), B: hexByte(segment[4:6]), A: 255}
}

func hexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(hasher, "%v|", part)
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

var _ Generator = (*SyntheticGenerator)(nil)
