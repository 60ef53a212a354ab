package ai

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"regexp"

	"go-facecraft/internal/storage"
)

// MockClient is an offline provider for local development. It describes every
// photo the same way and paints a flat square whose colour is derived from the
// prompt's style.
type MockClient struct {
	Size int
}

func NewMockClient() *MockClient {
	return &MockClient{Size: 64}
}

func (m *MockClient) Describe(ctx context.Context, imageRef string, instruction string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "An oval face with short dark hair, brown eyes, light stubble and a relaxed smile.", nil
}

var stylePattern = regexp.MustCompile(`A (.+?)-style avatar`)

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	style := prompt
	if match := stylePattern.FindStringSubmatch(prompt); match != nil {
		style = match[1]
	}

	h := fnv.New32a()
	h.Write([]byte(style))
	sum := h.Sum32()
	fill := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, m.Size, m.Size))
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode mock avatar: %w", err)
	}
	return storage.EncodeDataURL("image/png", buf.Bytes()), nil
}

var (
	_ Describer = (*MockClient)(nil)
	_ Generator = (*MockClient)(nil)
)
