package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mesabot/internal/middleware"
)

// handleCallback acknowledges the button press right away and queues the
// navigation, which edits the message that carried the button.
func (h *Handler) handleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	cq := update.CallbackQuery

	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}); err != nil {
		slog.Warn("failed to answer callback query", "error", err)
	}

	chat := middleware.GetChat(ctx)
	if chat == nil {
		return
	}

	h.submit(ctx, chat, "callback", func(ctx context.Context) error {
		respond := h.client.Callback(chat.ChatID, chat.MessageID)
		return h.engine.HandleCallback(ctx, chat.ChatID, cq.Data, respond)
	})
}
