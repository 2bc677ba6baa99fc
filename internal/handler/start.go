package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mesabot/internal/middleware"
)

func (h *Handler) handleStart(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}
	chat := middleware.GetChat(ctx)
	if chat == nil {
		return
	}

	h.submit(ctx, chat, "start", func(ctx context.Context) error {
		return h.engine.Start(ctx, chat.ChatID, chat.FirstName, h.client.Messages(chat.ChatID))
	})
}
