package handler

import (
	"github.com/go-telegram/bot"
)

// Register registers the command and callback handlers on the bot instance.
// Free text arrives through the bot's default handler, see HandleText.
func (h *Handler) Register() {
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, h.handleCallback)
}
