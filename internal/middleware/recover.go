package middleware

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Recover returns middleware that turns a handler panic into a log entry
// and, when apology is set, a message to the chat so the user is not left
// without an answer.
func Recover(apology string) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				attrs := []any{
					"update_id", update.ID,
					"request_id", RequestID(ctx),
					"panic", r,
					"stack", string(debug.Stack()),
				}
				c := chatFromUpdate(update)
				if c != nil {
					attrs = append(attrs, "chat_id", c.ChatID, "user", c.UserName)
				}
				slog.Error("panic recovered in handler", attrs...)

				if c == nil || b == nil || apology == "" {
					return
				}
				if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: c.ChatID, Text: apology}); err != nil {
					slog.Warn("failed to send apology after panic", "chat_id", c.ChatID, "error", err)
				}
			}()
			next(ctx, b, update)
		}
	}
}
