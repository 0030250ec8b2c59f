package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const geminiResponse = `{
  "candidates": [{
    "content": {"role": "model", "parts": [{"text": " Pets rested and barked. "}]},
    "finishReason": "STOP"
  }]
}`

type geminiRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	SystemInstruction struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"systemInstruction"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		TopP            float64 `json:"topP"`
		TopK            float64 `json:"topK"`
		MaxOutputTokens int64   `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

func newGeminiServer(t *testing.T, response string, got *geminiRequest) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("X-Goog-Api-Key") != "test-key" {
			t.Errorf("missing API key header")
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestGeminiRewriter(t *testing.T, srv *httptest.Server) *GeminiRewriter {
	t.Helper()

	r, err := NewGeminiRewriter(context.Background(), "test-key", "gemini-test", DefaultSampling,
		WithGeminiBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewGeminiRewriter() error = %v", err)
	}

	return r
}

func TestGeminiRewriterSendsSamplingAndInstructions(t *testing.T) {
	var got geminiRequest
	srv := newGeminiServer(t, geminiResponse, &got)

	input := Input{
		Text:      " The cat slept. The dog barked. ",
		MaxLength: 60,
		MinLength: 40,
	}

	summary, err := newTestGeminiRewriter(t, srv).Rewrite(context.Background(), input)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if summary != "Pets rested and barked." {
		t.Fatalf("summary = %q", summary)
	}

	if len(got.Contents) != 1 || len(got.Contents[0].Parts) != 1 ||
		got.Contents[0].Parts[0].Text != "The cat slept. The dog barked." {
		t.Fatalf("unexpected contents: %+v", got.Contents)
	}

	if len(got.SystemInstruction.Parts) != 1 || got.SystemInstruction.Parts[0].Text != instructions(input) {
		t.Fatalf("unexpected system instruction: %+v", got.SystemInstruction)
	}

	cfg := got.GenerationConfig
	const tolerance = 1e-6
	if math.Abs(cfg.Temperature-DefaultSampling.Temperature) > tolerance ||
		math.Abs(cfg.TopP-DefaultSampling.TopP) > tolerance ||
		math.Abs(cfg.TopK-float64(DefaultSampling.TopK)) > tolerance {
		t.Fatalf("unexpected sampling: %+v", cfg)
	}
	if cfg.MaxOutputTokens != minMaxOutputTokens {
		t.Fatalf("maxOutputTokens = %d, want %d", cfg.MaxOutputTokens, minMaxOutputTokens)
	}
}

func TestGeminiRewriterEmptyCandidate(t *testing.T) {
	srv := newGeminiServer(t, `{"candidates": [{"content": {"role": "model", "parts": []}}]}`, nil)

	_, err := newTestGeminiRewriter(t, srv).Rewrite(context.Background(), Input{
		Text:      "The cat slept.",
		MaxLength: 20,
	})
	if !errors.Is(err, ErrEmptyOutput) {
		t.Fatalf("Rewrite() error = %v, want ErrEmptyOutput", err)
	}
}

func TestGeminiRewriterEmptyInput(t *testing.T) {
	srv := newGeminiServer(t, geminiResponse, nil)

	if _, err := newTestGeminiRewriter(t, srv).Rewrite(context.Background(), Input{Text: "  "}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("Rewrite() error = %v, want ErrEmptyInput", err)
	}
}

func TestGeminiRewriterAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "bad request", "status": "INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	_, err := newTestGeminiRewriter(t, srv).Rewrite(context.Background(), Input{Text: "The cat slept.", MaxLength: 20})
	if err == nil || !strings.Contains(err.Error(), "generate content") {
		t.Fatalf("Rewrite() error = %v, want a generate content error", err)
	}
}
