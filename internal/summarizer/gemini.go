package summarizer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiRewriter calls the Gemini API. The client is created once in the constructor.
type GeminiRewriter struct {
	client   *genai.Client
	model    string
	sampling Sampling
}

// GeminiOption adjusts the client configuration.
type GeminiOption func(*genai.ClientConfig)

// WithGeminiBaseURL points the client at another API endpoint.
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions.BaseURL = baseURL
	}
}

func NewGeminiRewriter(
	ctx context.Context,
	apiKey string,
	model string,
	sampling Sampling,
	opts ...GeminiOption,
) (*GeminiRewriter, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &GeminiRewriter{
		client:   client,
		model:    model,
		sampling: sampling,
	}, nil
}

func (r *GeminiRewriter) Rewrite(ctx context.Context, input Input) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", ErrEmptyInput
	}

	maxOutputTokens := max(int64(input.MaxLength)*tokensPerWord, minMaxOutputTokens)

	result, err := r.client.Models.GenerateContent(
		ctx,
		r.model,
		genai.Text(text),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instructions(input)}}},
			Temperature:       genai.Ptr(float32(r.sampling.Temperature)),
			TopP:              genai.Ptr(float32(r.sampling.TopP)),
			TopK:              genai.Ptr(float32(r.sampling.TopK)),
			MaxOutputTokens:   int32(maxOutputTokens),
			ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
		},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	summary := strings.TrimSpace(result.Text())
	if summary == "" {
		return "", fmt.Errorf("%w (model = %s)", ErrEmptyOutput, r.model)
	}

	return summary, nil
}
