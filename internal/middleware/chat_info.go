package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Chat is who and where an update came from.
type Chat struct {
	ChatID    int64
	UserName  string
	FirstName string
	// MessageID is the message that carried the text or the pressed button.
	MessageID int
}

// GetChat extracts the chat loaded by ChatInfo.
func GetChat(ctx context.Context) *Chat {
	c, ok := ctx.Value(chatKey).(*Chat)
	if !ok {
		return nil
	}
	return c
}

// ChatInfo returns middleware that loads the sender and chat into context.
// Updates without a chat are passed through untouched.
func ChatInfo() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if c := chatFromUpdate(update); c != nil {
				ctx = context.WithValue(ctx, chatKey, c)
			}
			next(ctx, b, update)
		}
	}
}

func chatFromUpdate(update *models.Update) *Chat {
	switch {
	case update.Message != nil:
		msg := update.Message
		c := &Chat{ChatID: msg.Chat.ID, MessageID: msg.ID}
		if msg.From != nil {
			c.UserName = msg.From.Username
			c.FirstName = msg.From.FirstName
		}
		return c
	case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
		msg := update.CallbackQuery.Message.Message
		return &Chat{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
			UserName:  update.CallbackQuery.From.Username,
			FirstName: update.CallbackQuery.From.FirstName,
		}
	}
	return nil
}
