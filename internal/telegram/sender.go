package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mesabot/internal/config"
	"github.com/set-night/mesabot/internal/domain"
)

const typingInterval = 4 * time.Second

// Client is the outbound side of the bot used outside of a single update.
type Client struct {
	b *bot.Bot
}

func NewClient(b *bot.Bot) *Client {
	return &Client{b: b}
}

func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if _, err := c.b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: messageID}); err != nil {
		return fmt.Errorf("delete message %d: %w", messageID, err)
	}
	return nil
}

// Messages returns a responder that sends new messages to chatID.
func (c *Client) Messages(chatID int64) *MessageResponder {
	return &MessageResponder{b: c.b, chatID: chatID}
}

// Callback returns a responder that edits the message carrying a pressed
// button.
func (c *Client) Callback(chatID int64, messageID int) *CallbackResponder {
	return &CallbackResponder{b: c.b, chatID: chatID, messageID: messageID}
}

// MessageResponder sends each reply as new messages, split at the Telegram
// length limit. Buttons go on the last part.
type MessageResponder struct {
	b      *bot.Bot
	chatID int64
}

func (r *MessageResponder) SendOrEdit(ctx context.Context, reply domain.Reply) ([]int, error) {
	parts := SplitMessage(reply.Text, config.MaxTelegramMessageLen)

	ids := make([]int, 0, len(parts))
	for i, part := range parts {
		params := &bot.SendMessageParams{
			ChatID: r.chatID,
			Text:   part,
		}
		if i == len(parts)-1 {
			params.ReplyMarkup = Keyboard(reply.Buttons)
		}

		msg, err := r.b.SendMessage(ctx, params)
		if err != nil {
			return ids, fmt.Errorf("send message part %d/%d: %w", i+1, len(parts), err)
		}
		ids = append(ids, msg.ID)
	}
	return ids, nil
}

func (r *MessageResponder) StartTyping(ctx context.Context) context.CancelFunc {
	return StartTyping(ctx, r.b, r.chatID)
}

// CallbackResponder edits the message in place. Replies too long for one
// message are sent as new messages instead.
type CallbackResponder struct {
	b         *bot.Bot
	chatID    int64
	messageID int
}

func (r *CallbackResponder) SendOrEdit(ctx context.Context, reply domain.Reply) ([]int, error) {
	if len([]rune(reply.Text)) > config.MaxTelegramMessageLen {
		return (&MessageResponder{b: r.b, chatID: r.chatID}).SendOrEdit(ctx, reply)
	}

	_, err := r.b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      r.chatID,
		MessageID:   r.messageID,
		Text:        reply.Text,
		ReplyMarkup: Keyboard(reply.Buttons),
	})
	if err != nil && !isNotModified(err) {
		return nil, fmt.Errorf("edit message %d: %w", r.messageID, err)
	}
	return []int{r.messageID}, nil
}

func (r *CallbackResponder) StartTyping(ctx context.Context) context.CancelFunc {
	return StartTyping(ctx, r.b, r.chatID)
}

// isNotModified reports Telegram's refusal to edit a message into identical
// content, which happens when the same button is pressed twice.
func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

// StartTyping sends the "typing..." action every few seconds until the
// returned cancel function is called.
func StartTyping(ctx context.Context, b *bot.Bot, chatID int64) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	send := func() {
		_, err := b.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: models.ChatActionTyping,
		})
		if err != nil && ctx.Err() == nil {
			slog.Debug("send typing action failed", "chat_id", chatID, "error", err)
		}
	}

	go func() {
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		send()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				send()
			}
		}
	}()
	return cancel
}
