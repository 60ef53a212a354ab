package ai

import "context"

// Describer turns an image reference plus an instruction into a
// natural-language description. An empty string with a nil error means the
// service answered without usable text.
type Describer interface {
	Describe(ctx context.Context, imageRef string, instruction string) (string, error)
}

// Generator produces a single image for a prompt and returns a reference to
// it. References are short-lived: an http(s) URL that expires soon after the
// call, or an inline data URL. An empty reference with a nil error means the
// service produced no image.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
