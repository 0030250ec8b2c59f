package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"tldrbot/internal/domain"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *models.CallbackQuery) error {
	chatID := callbackChatID(callback)
	if chatID == 0 {
		return b.errorCallbackAnswer(ctx, callback, errors.New("callback message is missing"))
	}

	data := strings.TrimSpace(callback.Data)

	switch data {
	case menuCallback:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleMenuCommand(ctx, chatID)
		})
	case menuHelpCallback:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleHelpCommand(ctx, chatID)
		})
	case menuSettingsCallback:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleSettingsCommand(ctx, chatID, callback.From.ID)
		})
	}

	for _, prefix := range []string{settingsExtractiveCallbackPrefix, settingsAbstractiveCallbackPrefix} {
		lines, ok, err := parseLinesCallback(data, prefix)
		if !ok {
			continue
		}
		if err != nil {
			return b.errorCallbackAnswer(ctx, callback, err)
		}

		return b.handleSettingsLinesQuery(ctx, callback, chatID, prefix, lines)
	}

	return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("unknown callback data %q", data))
}

func (b *Bot) handleSettingsLinesQuery(
	ctx context.Context,
	callback *models.CallbackQuery,
	chatID int64,
	prefix string,
	lines int,
) error {
	userID := callback.From.ID

	settings, err := b.db.GetUserSettingsWithDefault(ctx, userID, b.defaults)
	if err != nil {
		return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("get user settings with default: %w", err))
	}

	switch prefix {
	case settingsExtractiveCallbackPrefix:
		settings.ExtractiveLines = lines
	case settingsAbstractiveCallbackPrefix:
		settings.AbstractiveLines = lines
	}

	if err = b.db.UpsertUserSettings(ctx, &domain.UserSettings{
		UserID:           userID,
		ExtractiveLines:  settings.ExtractiveLines,
		AbstractiveLines: settings.AbstractiveLines,
	}); err != nil {
		return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("upsert user settings: %w", err))
	}

	if err = b.answerCallback(ctx, callback.ID, "✅ Settings are updated."); err != nil {
		return err
	}

	return b.handleSettingsCommand(ctx, chatID, userID)
}

func (b *Bot) withEmptyCallbackAnswer(
	ctx context.Context,
	callback *models.CallbackQuery,
	fn func() error,
) error {
	var errs []error

	if err := b.answerCallback(ctx, callback.ID, ""); err != nil {
		errs = append(errs, err)
	}

	if err := fn(); err != nil {
		errs = append(errs, fmt.Errorf("call fn: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) errorCallbackAnswer(
	ctx context.Context,
	callback *models.CallbackQuery,
	err error,
) error {
	if sendErr := b.answerCallback(ctx, callback.ID, "❌ Failed."); sendErr != nil {
		return errors.Join(err, sendErr)
	}
	return err
}
