// Package handler adapts Telegram updates to the chat engine. Every update of
// a chat is queued on that chat's mailbox so they are handled in order.
package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/set-night/mesabot/internal/dispatch"
	"github.com/set-night/mesabot/internal/domain"
	"github.com/set-night/mesabot/internal/middleware"
	"github.com/set-night/mesabot/internal/telegram"
)

// Engine is the chat logic the handlers drive.
type Engine interface {
	Start(ctx context.Context, chatID int64, firstName string, respond domain.Responder) error
	HandleText(ctx context.Context, in domain.Inbound, respond domain.Responder) error
	HandleCallback(ctx context.Context, chatID int64, data string, respond domain.Responder) error
}

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot        *bot.Bot
	engine     Engine
	client     *telegram.Client
	dispatcher *dispatch.Dispatcher
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot        *bot.Bot
	Engine     Engine
	Client     *telegram.Client
	Dispatcher *dispatch.Dispatcher
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:        deps.Bot,
		engine:     deps.Engine,
		client:     deps.Client,
		dispatcher: deps.Dispatcher,
	}
}

// submit queues job for chat. A failed job is logged; the chat's next update
// is handled normally.
func (h *Handler) submit(ctx context.Context, chat *middleware.Chat, kind string, job func(ctx context.Context) error) {
	requestID := middleware.RequestID(ctx)
	err := h.dispatcher.Submit(chat.ChatID, func(ctx context.Context) {
		if err := job(ctx); err != nil {
			slog.Error("failed to handle update",
				"kind", kind,
				"chat_id", chat.ChatID,
				"request_id", requestID,
				"error", err,
			)
		}
	})
	if err != nil && !errors.Is(err, dispatch.ErrClosed) {
		slog.Warn("update dropped", "kind", kind, "chat_id", chat.ChatID, "error", err)
	}
}
