package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const rateLimitedText = "⏳ Estás enviando demasiados mensajes. Espera un momento e inténtalo de nuevo."

// Limiter counts one message for a chat and reports whether it may proceed.
type Limiter interface {
	Allow(ctx context.Context, chatID int64) (bool, error)
}

// RateLimit returns middleware that enforces per-minute limits on text
// messages. Button presses are not limited. A failing limiter lets the
// message through.
func RateLimit(limiter Limiter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID

			allowed, err := limiter.Allow(ctx, chatID)
			if err != nil {
				slog.Error("rate limit check failed", "error", err, "chat_id", chatID)
				next(ctx, b, update)
				return
			}

			if !allowed {
				slog.Debug("rate limited", "chat_id", chatID)
				if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   rateLimitedText,
				}); err != nil {
					slog.Warn("failed to send rate limit notice", "chat_id", chatID, "error", err)
				}
				return
			}

			next(ctx, b, update)
		}
	}
}
