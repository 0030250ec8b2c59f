package bot

import (
	"strings"
	"unicode/utf8"

	"tldrbot/internal/pipeline"
)

const (
	telegramMessageMaxLength = 4096

	extractiveHeader  = "📝 *Extractive summary*\n\n"
	abstractiveHeader = "✨ *Abstractive summary*\n\n"
)

// formatResult renders both summaries as MarkdownV2 messages, each within
// Telegram's message size limit.
func formatResult(title string, result pipeline.Result) []string {
	var titleLine string
	if title = strings.TrimSpace(title); title != "" {
		titleLine = "📰 *" + escapeMarkdownV2(title) + "*\n\n"
	}

	abstractive := escapeMarkdownV2(result.Abstractive)
	if result.Status != pipeline.StatusGenerated {
		abstractive = "_" + abstractive + "_"
	}

	single := titleLine +
		extractiveHeader + escapeMarkdownV2(result.Extractive) + "\n\n" +
		abstractiveHeader + abstractive
	if len(single) <= telegramMessageMaxLength {
		return []string{single}
	}

	var messages []string

	header := titleLine + extractiveHeader
	for i, chunk := range chunkText(result.Extractive, (telegramMessageMaxLength-len(header))/2) {
		if i > 0 {
			header = extractiveHeader
		}
		messages = append(messages, header+escapeMarkdownV2(chunk))
	}

	for _, chunk := range chunkText(result.Abstractive, (telegramMessageMaxLength-len(abstractiveHeader)-2)/2) {
		text := escapeMarkdownV2(chunk)
		if result.Status != pipeline.StatusGenerated {
			text = "_" + text + "_"
		}
		messages = append(messages, abstractiveHeader+text)
	}

	return messages
}

// chunkText splits text into pieces of at most maxBytes bytes, preferring to
// break at whitespace. Escaping at most doubles a piece, so callers pass half
// of the space left in a message.
func chunkText(text string, maxBytes int) []string {
	text = strings.TrimSpace(text)
	if text == "" || maxBytes <= 0 {
		return nil
	}

	var chunks []string
	for len(text) > maxBytes {
		cut := maxBytes
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}

		if space := strings.LastIndexAny(text[:cut], " \n\t"); space > 0 {
			cut = space
		}

		if cut == 0 {
			_, size := utf8.DecodeRuneInString(text)
			cut = size
		}

		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}

	if text != "" {
		chunks = append(chunks, text)
	}

	return chunks
}
