// Command summarize prints the extractive and abstractive summaries of a
// text file, standard input or a link.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tldrbot/internal/config"
	"tldrbot/internal/fetch"
	"tldrbot/internal/pipeline"
	"tldrbot/internal/ranker"
	"tldrbot/internal/summarizer"
)

const (
	exitFailure    = 1
	exitEmptyInput = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		return exitFailure
	}

	var (
		lines         = flag.Int("lines", cfg.Defaults.ExtractiveLines, "extractive summary lines (1-10)")
		abstractLines = flag.Int("abstract-lines", cfg.Defaults.AbstractiveLines, "abstractive summary lines, approximate (1-10)")
		file          = flag.String("file", "", "read text from `path` instead of standard input")
		link          = flag.String("url", "", "summarize the page, feed or channel at `url`")
		provider      = flag.String("provider", cfg.Rewriter.Provider, "rewriter: auto, openai, gemini, huggingface or passthrough")
		verbose       = flag.Bool("v", false, "log debug output to standard error")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg.Rewriter.Provider = *provider
	if err = cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	text, err := readInput(ctx, &cfg, *file, *link, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	rewriter, err := summarizer.FromConfig(ctx, &cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	splitter, err := ranker.NewPunktSplitter()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	p := pipeline.New(ranker.New(splitter), rewriter, log)

	result, err := p.Run(ctx, pipeline.Request{
		Text:             text,
		ExtractiveLines:  *lines,
		AbstractiveLines: *abstractLines,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, pipeline.UserMessage(err))
		if pipeline.KindOf(err) == pipeline.KindEmptyInput {
			return exitEmptyInput
		}
		return exitFailure
	}

	fmt.Printf("Extractive Summary\n\n%s\n\nAbstractive Summary\n\n%s\n", result.Extractive, result.Abstractive)

	return 0
}

func readInput(ctx context.Context, cfg *config.Config, file string, link string, log *slog.Logger) (string, error) {
	switch {
	case link != "" && file != "":
		return "", errors.New("use either -file or -url")
	case link != "":
		doc, err := fetch.NewFetcher(cfg.Fetch.Timeout, nil, 0, log, cfg.FetchOptions()...).Fetch(ctx, link)
		if err != nil {
			return "", fmt.Errorf("fetch %s: %w", link, err)
		}
		return doc.Text, nil
	case file != "" && file != "-":
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(raw), nil
	default:
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(raw), "\n"), nil
	}
}
