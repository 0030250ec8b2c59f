package summarizer

import (
	"context"
	"fmt"
	"log/slog"

	"tldrbot/internal/config"
)

// FromConfig builds the configured rewriter. Construction is the one-time
// initialization cost (API clients, connection pools); reuse the result.
func FromConfig(ctx context.Context, cfg *config.Config, log *slog.Logger) (Rewriter, error) {
	provider := cfg.ResolvedProvider()

	var (
		next Rewriter
		err  error
	)

	switch provider {
	case config.ProviderOpenAI:
		next = NewOpenAIRewriter(cfg.OpenAI.APIKey, cfg.OpenAI.Model, DefaultSampling)
	case config.ProviderGemini:
		next, err = NewGeminiRewriter(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, DefaultSampling)
	case config.ProviderHuggingFace:
		next = NewHuggingFaceRewriter(cfg.HF.BaseURL, cfg.HF.Model, cfg.HF.APIToken, DefaultSampling, cfg.Rewriter.Timeout)
	case config.ProviderPassthrough:
		log.WarnContext(ctx, "No abstractive model is configured so input will be echoed",
			"provider", provider)

		return Passthrough{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s rewriter: %w", provider, err)
	}

	log.InfoContext(ctx, "Rewriter is initialized",
		"provider", provider,
		"rpm", cfg.Rewriter.RPM,
		"timeout", cfg.Rewriter.Timeout.String())

	return NewGuarded(next, cfg.Rewriter.RPM, cfg.Rewriter.Timeout, log), nil
}
