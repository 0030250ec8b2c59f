package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-telegram/bot/models"

	"tldrbot/internal/domain"
	"tldrbot/internal/pipeline"
)

func TestEscapeMarkdownV2(t *testing.T) {
	got := escapeMarkdownV2(`a_b*c [d](e) 1.5! C:\dir`)
	want := `a\_b\*c \[d\]\(e\) 1\.5\! C:\\dir`

	if got != want {
		t.Fatalf("escapeMarkdownV2() = %q, want %q", got, want)
	}

	if got = escapeMarkdownV2("plain text"); got != "plain text" {
		t.Fatalf("unexpected escaping of plain text: %q", got)
	}
}

func TestCommand(t *testing.T) {
	tests := map[string]string{
		"/start":                 "/start",
		"/settings@tldr_bot now": "/settings",
		"/HELP":                  "/help",
		"The cat slept.":         "",
		"":                       "",
	}

	for text, want := range tests {
		if got := command(text); got != want {
			t.Fatalf("command(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestRouteMessage(t *testing.T) {
	tests := []struct {
		text string
		want messageAction
	}{
		{"", actionIgnore},
		{"/start", actionStart},
		{"/menu@tldr_bot", actionMenu},
		{"/help", actionHelp},
		{"/settings", actionSettings},
		{"/foo", actionHelp},
		{"/FOO bar", actionHelp},
		{"The cat slept. The dog barked.", actionSummarize},
		{"https://example.com/post", actionSummarize},
	}

	for _, tt := range tests {
		if got := routeMessage(tt.text); got != tt.want {
			t.Errorf("routeMessage(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestParseLinesCallback(t *testing.T) {
	lines, ok, err := parseLinesCallback(settingsExtractiveCallbackPrefix+"7", settingsExtractiveCallbackPrefix)
	if err != nil || !ok || lines != 7 {
		t.Fatalf("parseLinesCallback() = %d, %v, %v", lines, ok, err)
	}

	if _, ok, _ = parseLinesCallback(settingsAbstractiveCallbackPrefix+"7", settingsExtractiveCallbackPrefix); ok {
		t.Fatalf("expected other prefix not to match")
	}

	for _, data := range []string{"0", "11", "x"} {
		if _, ok, err = parseLinesCallback(settingsAbstractiveCallbackPrefix+data, settingsAbstractiveCallbackPrefix); !ok || err == nil {
			t.Fatalf("expected error for %q", data)
		}
	}
}

func TestGetSettingsKeyboardMarksCurrentValues(t *testing.T) {
	kb := getSettingsKeyboard(&domain.UserSettings{ExtractiveLines: 3, AbstractiveLines: 10})

	// Two rows per setting plus the return row.
	if len(kb.InlineKeyboard) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(kb.InlineKeyboard))
	}

	var marked []models.InlineKeyboardButton
	for _, row := range kb.InlineKeyboard {
		for _, button := range row {
			if strings.HasPrefix(button.Text, "✅") {
				marked = append(marked, button)
			}
		}
	}

	if len(marked) != 2 {
		t.Fatalf("expected 2 marked buttons, got %d", len(marked))
	}
	if marked[0].CallbackData != settingsExtractiveCallbackPrefix+"3" {
		t.Fatalf("unexpected extractive button: %+v", marked[0])
	}
	if marked[1].CallbackData != settingsAbstractiveCallbackPrefix+"10" {
		t.Fatalf("unexpected abstractive button: %+v", marked[1])
	}
}

func TestFormatResult(t *testing.T) {
	messages := formatResult("Cats & Dogs", pipeline.Result{
		Extractive:  "The cat slept. The dog barked.",
		Abstractive: pipeline.TooSimilarMessage,
		Status:      pipeline.StatusTooSimilar,
	})

	if len(messages) != 1 {
		t.Fatalf("expected a single message, got %d", len(messages))
	}

	want := "📰 *Cats & Dogs*\n\n" +
		extractiveHeader + "The cat slept\\. The dog barked\\.\n\n" +
		abstractiveHeader + "_The abstractive summary is too similar to the extractive summary\\._"
	if messages[0] != want {
		t.Fatalf("unexpected message:\n%s", messages[0])
	}
}

func TestFormatResultSplitsLongSummaries(t *testing.T) {
	extractive := strings.Repeat("The cat slept. ", 400)

	messages := formatResult("", pipeline.Result{
		Extractive:  extractive,
		Abstractive: "Pets rested.",
		Status:      pipeline.StatusGenerated,
	})

	if len(messages) < 3 {
		t.Fatalf("expected the summary to be split, got %d messages", len(messages))
	}

	for i, m := range messages {
		if len(m) > telegramMessageMaxLength {
			t.Fatalf("message %d is %d bytes long", i, len(m))
		}
	}

	if messages[len(messages)-1] != abstractiveHeader+"Pets rested\\." {
		t.Fatalf("unexpected last message: %q", messages[len(messages)-1])
	}
}

func TestChunkText(t *testing.T) {
	chunks := chunkText("один два три", 9)

	if strings.Join(chunks, "|") != "один|два|три" {
		t.Fatalf("unexpected chunks: %q", chunks)
	}

	chunks = chunkText("четыре", 9)
	for _, c := range chunks {
		if len(c) > 9 || !utf8.ValidString(c) {
			t.Fatalf("invalid chunk %q", c)
		}
	}
	if strings.Join(chunks, "") != "четыре" {
		t.Fatalf("unexpected chunks: %q", chunks)
	}

	if chunkText("  ", 10) != nil {
		t.Fatalf("expected no chunks for blank text")
	}
}

func TestUserAllowed(t *testing.T) {
	open := &Bot{}
	if !open.userAllowed(1) {
		t.Fatalf("empty allow list must allow everyone")
	}

	closed := &Bot{allowedUsers: []int64{7}}
	if !closed.userAllowed(7) || closed.userAllowed(8) {
		t.Fatalf("unexpected allow list result")
	}
}

func TestUpdateUserID(t *testing.T) {
	msg := &models.Update{Message: &models.Message{From: &models.User{ID: 5}}}
	cb := &models.Update{CallbackQuery: &models.CallbackQuery{From: models.User{ID: 6}}}

	if updateUserID(msg) != 5 || updateUserID(cb) != 6 || updateUserID(&models.Update{}) != 0 {
		t.Fatalf("unexpected user IDs")
	}
}
