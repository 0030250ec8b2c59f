package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBodyBytes = 4 << 10

// HuggingFaceRewriter calls a summarization model (t5-small by default) on the
// Hugging Face Inference API.
type HuggingFaceRewriter struct {
	client   *http.Client
	endpoint string
	token    string
	sampling Sampling
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	MaxLength   int     `json:"max_length"`
	MinLength   int     `json:"min_length"`
	DoSample    bool    `json:"do_sample"`
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
	TopP        float64 `json:"top_p"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

type hfError struct {
	Error string `json:"error"`
}

func NewHuggingFaceRewriter(
	baseURL string,
	model string,
	token string,
	sampling Sampling,
	timeout time.Duration,
) *HuggingFaceRewriter {
	return &HuggingFaceRewriter{
		client:   &http.Client{Timeout: timeout},
		endpoint: strings.TrimRight(baseURL, "/") + "/" + strings.Trim(model, "/"),
		token:    strings.TrimSpace(token),
		sampling: sampling,
	}
}

func (r *HuggingFaceRewriter) Rewrite(ctx context.Context, input Input) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", ErrEmptyInput
	}

	body, err := json.Marshal(hfRequest{
		Inputs: text,
		Parameters: hfParameters{
			MaxLength:   input.MaxLength,
			MinLength:   input.MinLength,
			DoSample:    true,
			Temperature: r.sampling.Temperature,
			TopK:        r.sampling.TopK,
			TopP:        r.sampling.TopP,
		},
		Options: hfOptions{WaitForModel: true},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var summaries []hfSummary
	if err = json.NewDecoder(resp.Body).Decode(&summaries); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(summaries) == 0 || strings.TrimSpace(summaries[0].SummaryText) == "" {
		return "", fmt.Errorf("%w (endpoint = %s)", ErrEmptyOutput, r.endpoint)
	}

	return strings.TrimSpace(summaries[0].SummaryText), nil
}

func statusError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return fmt.Errorf("unexpected status %s: read body: %w", resp.Status, err)
	}

	var apiErr hfError
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("unexpected status %s: %w", resp.Status, errors.New(apiErr.Error))
	}

	return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(raw)))
}
