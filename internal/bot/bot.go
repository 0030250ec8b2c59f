package bot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"tldrbot/internal/database"
	"tldrbot/internal/domain"
	"tldrbot/internal/fetch"
	"tldrbot/internal/pipeline"
	"tldrbot/internal/ratelimiter"
)

const updateProcessingTimeout = 3 * time.Minute

type Bot struct {
	api          *tgbot.Bot
	rateLimiter  *ratelimiter.RateLimiter
	db           *database.Database
	fetcher      *fetch.Fetcher
	pipeline     *pipeline.Pipeline
	defaults     domain.SummaryDefaults
	allowedUsers []int64
	menuKeyboard *models.InlineKeyboardMarkup
	log          *slog.Logger
}

func New(
	token string,
	db *database.Database,
	fetcher *fetch.Fetcher,
	p *pipeline.Pipeline,
	rateLimiter *ratelimiter.RateLimiter,
	defaults domain.SummaryDefaults,
	allowedUsers []int64,
	log *slog.Logger,
) (*Bot, error) {
	b := &Bot{
		rateLimiter:  rateLimiter,
		db:           db,
		fetcher:      fetcher,
		pipeline:     p,
		defaults:     defaults,
		allowedUsers: allowedUsers,
		menuKeyboard: getMenuKeyboard(),
		log:          log,
	}

	api, err := tgbot.New(
		strings.TrimSpace(token),
		tgbot.WithDefaultHandler(b.handleUpdate),
		tgbot.WithMiddlewares(b.allowedUsersMiddleware),
		tgbot.WithErrorsHandler(func(err error) {
			log.Error("Telegram API error",
				"error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	b.api = api

	return b, nil
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.log.InfoContext(ctx, "Bot is polling for updates")

	b.api.Start(ctx)

	b.log.InfoContext(ctx, "Bot context is done",
		"error", ctx.Err())
}

func (b *Bot) handleUpdate(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil:
		chatID := update.Message.Chat.ID

		if err := b.handleMessage(updateCtx, update.Message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", chatID,
				"userID", updateUserID(update),
				"chatType", update.Message.Chat.Type,
				"messageID", update.Message.ID)
		}

	case update.CallbackQuery != nil:
		if err := b.handleCallbackQuery(updateCtx, update.CallbackQuery); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"chatID", callbackChatID(update.CallbackQuery),
				"userID", update.CallbackQuery.From.ID,
				"data", update.CallbackQuery.Data)
		}
	}
}

func (b *Bot) allowedUsersMiddleware(next tgbot.HandlerFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, api *tgbot.Bot, update *models.Update) {
		userID := updateUserID(update)
		if !b.userAllowed(userID) {
			b.log.DebugContext(ctx, "User is not allowed",
				"userID", userID)

			return
		}

		next(ctx, api, update)
	}
}

// userAllowed treats an empty allow list as "everyone".
func (b *Bot) userAllowed(userID int64) bool {
	if len(b.allowedUsers) == 0 {
		return true
	}
	return slices.Contains(b.allowedUsers, userID)
}

func updateUserID(update *models.Update) int64 {
	switch {
	case update == nil:
		return 0
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID
	default:
		return 0
	}
}

func callbackChatID(cb *models.CallbackQuery) int64 {
	switch {
	case cb == nil:
		return 0
	case cb.Message.Message != nil:
		return cb.Message.Message.Chat.ID
	case cb.Message.InaccessibleMessage != nil:
		return cb.Message.InaccessibleMessage.Chat.ID
	default:
		return 0
	}
}
