package handler

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mesabot/internal/domain"
	"github.com/set-night/mesabot/internal/middleware"
)

// HandleText queues a free-text message of a private chat. Commands other
// than /start and non-text updates are ignored.
func (h *Handler) HandleText(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}
	msg := update.Message
	if strings.TrimSpace(msg.Text) == "" || strings.HasPrefix(msg.Text, "/") {
		return
	}

	chat := middleware.GetChat(ctx)
	if chat == nil {
		return
	}

	in := domain.Inbound{
		ChatID:    chat.ChatID,
		MessageID: chat.MessageID,
		UserName:  chat.UserName,
		FirstName: chat.FirstName,
		Text:      msg.Text,
	}
	h.submit(ctx, chat, "text", func(ctx context.Context) error {
		return h.engine.HandleText(ctx, in, h.client.Messages(chat.ChatID))
	})
}
