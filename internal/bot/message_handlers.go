package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"tldrbot/internal/fetch"
	"tldrbot/internal/pipeline"
)

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID

	var userID int64
	if message.From != nil {
		userID = message.From.ID
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		text = strings.TrimSpace(message.Caption)
	}

	switch action := routeMessage(text); action {
	case actionIgnore:
		return nil
	case actionStart:
		return b.handleStartCommand(ctx, chatID)
	case actionMenu:
		return b.handleMenuCommand(ctx, chatID)
	case actionHelp:
		return b.handleHelpCommand(ctx, chatID)
	case actionSettings:
		return b.handleSettingsCommand(ctx, chatID, userID)
	case actionSummarize:
		return b.withSpinner(ctx, chatID, func() error {
			return b.handleSummarize(ctx, text, chatID, userID)
		})
	default:
		return fmt.Errorf("unexpected message action %d", action)
	}
}

type messageAction int

const (
	actionIgnore messageAction = iota
	actionStart
	actionMenu
	actionHelp
	actionSettings
	actionSummarize
)

// routeMessage decides what a message asks for. Messages without text or
// caption (stickers, service messages) are ignored, unknown commands get help.
func routeMessage(text string) messageAction {
	if text == "" {
		return actionIgnore
	}

	switch command(text) {
	case "":
		return actionSummarize
	case "/start":
		return actionStart
	case "/menu":
		return actionMenu
	case "/settings":
		return actionSettings
	default:
		return actionHelp
	}
}

func (b *Bot) handleSummarize(ctx context.Context, text string, chatID int64, userID int64) error {
	lines := b.defaults
	if settings, err := b.db.GetUserSettingsWithDefault(ctx, userID, b.defaults); err != nil {
		b.log.WarnContext(ctx, "Falling back to default settings",
			"error", err,
			"userID", userID)
	} else {
		lines.ExtractiveLines = settings.ExtractiveLines
		lines.AbstractiveLines = settings.AbstractiveLines
	}

	var title string
	if link, ok := fetch.SingleURL(text); ok {
		doc, fetchErr := b.fetcher.Fetch(ctx, link)
		if fetchErr != nil {
			errs := []error{fmt.Errorf("fetch document: %w", fetchErr)}

			sendErr := b.sendMessageWithKeyboard(ctx, chatID, "❌ Failed to read the link\\.", nil)
			if sendErr != nil {
				errs = append(errs, fmt.Errorf("send message with keyboard: %w", sendErr))
			}

			return errors.Join(errs...)
		}

		text = doc.Text
		title = doc.Title
	}

	result, err := b.pipeline.Run(ctx, pipeline.Request{
		Text:             text,
		ExtractiveLines:  lines.ExtractiveLines,
		AbstractiveLines: lines.AbstractiveLines,
	})
	if err != nil {
		return b.sendPipelineError(ctx, chatID, err)
	}

	var errs []error
	for _, message := range formatResult(title, result) {
		if err = b.sendMessageWithKeyboard(ctx, chatID, message, nil); err != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", err))
		}
	}

	return errors.Join(errs...)
}

// sendPipelineError shows err to the user. Only library failures are
// reported back to the caller as errors.
func (b *Bot) sendPipelineError(ctx context.Context, chatID int64, err error) error {
	kind := pipeline.KindOf(err)

	icon := "❌"
	if kind == pipeline.KindEmptyInput || kind == pipeline.KindInvalidInput {
		icon = "⚠️"
	}

	var errs []error
	if kind == pipeline.KindLibraryFailure || kind == pipeline.KindUnknown {
		errs = append(errs, fmt.Errorf("run pipeline: %w", err))
	}

	message := icon + " " + escapeMarkdownV2(pipeline.UserMessage(err))
	if sendErr := b.sendMessageWithKeyboard(ctx, chatID, message, nil); sendErr != nil {
		errs = append(errs, fmt.Errorf("send message with keyboard: %w", sendErr))
	}

	return errors.Join(errs...)
}

// command returns the bot command text starts with, without the @botname
// suffix used in groups.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}

	name, _, _ := strings.Cut(strings.Fields(text)[0], "@")

	return strings.ToLower(name)
}
