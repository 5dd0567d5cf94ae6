// Package textgen defines the boundary between the report pipeline and the
// remote text-generation services that write the prose.
package textgen

import "context"

// Sampling holds the decoding parameters sent with every completion.
type Sampling struct {
	Temperature float32
	MaxTokens   int
	TopP        float32
}

// DefaultSampling returns the parameters used for police report drafting.
func DefaultSampling() Sampling {
	return Sampling{
		Temperature: 0.3,
		MaxTokens:   2500,
		TopP:        0.9,
	}
}

// Request is a single system+user completion.
type Request struct {
	System string
	User   string
	Sampling
}

// Generator turns a Request into generated text.
// Implementations must be safe for concurrent use and must return a *Error
// for every failure so callers can tell credential, rate-limit and model
// problems apart without inspecting messages.
type Generator interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
