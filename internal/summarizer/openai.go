package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	minMaxOutputTokens   int64 = 256
	limitMaxOutputTokens int64 = 2048
	tokensPerWord        int64 = 2
)

// OpenAIRewriter calls OpenAI's Responses API.
type OpenAIRewriter struct {
	client   openai.Client
	model    openai.ChatModel
	sampling Sampling
}

func NewOpenAIRewriter(
	apiKey string,
	model string,
	sampling Sampling,
	opts ...option.RequestOption,
) *OpenAIRewriter {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &OpenAIRewriter{
		client:   openai.NewClient(opts...),
		model:    openai.ChatModel(model),
		sampling: sampling,
	}
}

func (r *OpenAIRewriter) Rewrite(ctx context.Context, input Input) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", ErrEmptyInput
	}

	maxOutputTokens := max(int64(input.MaxLength)*tokensPerWord, minMaxOutputTokens)
	for {
		resp, err := r.client.Responses.New(ctx, responses.ResponseNewParams{
			Model:           r.model,
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Temperature:     openai.Float(r.sampling.Temperature),
			TopP:            openai.Float(r.sampling.TopP),
			Instructions:    openai.String(instructions(input)),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(text),
			},
		})
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens = min(maxOutputTokens*2, limitMaxOutputTokens)
				continue
			}
			return "", fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				resp.IncompleteDetails.Reason,
				maxOutputTokens,
			)
		}

		summary := strings.TrimSpace(resp.OutputText())
		if summary == "" {
			return "", fmt.Errorf("%w (status = %s)", ErrEmptyOutput, resp.Status)
		}
		return summary, nil
	}
}
