package bot

import (
	"context"
	"errors"
	"fmt"
)

const welcomeText = `🤖 *Welcome to TL;DR bot\!*

Send me any text and I will reply with two summaries:

– an *extractive* one built from the most representative sentences
– an *abstractive* one that rewrites them in fewer words

You can also send a single link, a feed URL or a public channel @username\.
Pick summary lengths with /settings, see usage with /help\.`

const helpText = `❔ *To use this summarization bot:*

1\. Send the text you want to summarize, or a link to it\.
2\. Specify the number of lines for extractive and abstractive summaries in /settings\.
3\. Wait while the typing indicator is shown\.
4\. The summaries will appear below, which you can copy if needed\.`

const settingsText = `*⚙️ Settings*

📄 Extractive summary lines: *%d*
✨ Abstractive summary lines \(approximate\): *%d*

You can choose different settings below:`

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, welcomeText, b.menuKeyboard)
}

func (b *Bot) handleMenuCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, "❔ *Choose an option:*", b.menuKeyboard)
}

func (b *Bot) handleHelpCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, helpText, getReturnKeyboard())
}

func (b *Bot) handleSettingsCommand(ctx context.Context, chatID int64, userID int64) error {
	settings, err := b.db.GetUserSettingsWithDefault(ctx, userID, b.defaults)
	if err != nil {
		errs := []error{fmt.Errorf("get user settings with default: %w", err)}

		sendErr := b.sendMessageWithKeyboard(ctx, chatID, "❌ Failed\\.", getReturnKeyboard())
		if sendErr != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	if err = b.sendMessageWithKeyboard(
		ctx,
		chatID,
		fmt.Sprintf(settingsText, settings.ExtractiveLines, settings.AbstractiveLines),
		getSettingsKeyboard(settings),
	); err != nil {
		return fmt.Errorf("send message with keyboard: %w", err)
	}

	return nil
}
