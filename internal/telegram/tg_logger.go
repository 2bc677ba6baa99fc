package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mesabot/internal/config"
	"github.com/set-night/mesabot/internal/domain"
)

const (
	logSendTimeout = 10 * time.Second
	logFieldMaxLen = 1000
)

// TelegramLogger mirrors errors and feedback to topics of an admin chat.
// It is a no-op when no log chat is configured.
type TelegramLogger struct {
	bot *bot.Bot
	cfg *config.Config
	now func() time.Time
}

func NewTelegramLogger(b *bot.Bot, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg, now: time.Now}
}

type LogType string

const (
	LogTypeError    LogType = "error"
	LogTypeFeedback LogType = "feedback"
)

// Log sends a MarkdownV2 message to the topic of logType.
func (l *TelegramLogger) Log(logType LogType, message string) {
	if l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.topicID(logType)
	if topicID == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), logSendTimeout)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       models.ParseModeMarkdown,
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, where string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Contexto:* %s\n*Error:* %s\n*Hora:* %s",
		escape(where), escape(err.Error()), escape(l.now().Format("2006-01-02 15:04:05")))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogFeedback(fb domain.Feedback) {
	msg := fmt.Sprintf("⭐ *Nueva calificación*\n\n*Usuario:* %s\n*Calificación:* %d/%d\n*Comentario:* %s",
		escape(fb.UserName), fb.Rating, domain.MaxRating, escape(fb.Comment))
	l.Log(LogTypeFeedback, msg)
}

func (l *TelegramLogger) topicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeFeedback:
		return l.cfg.LogTopicFeedback
	default:
		return 0
	}
}

// escape truncates s and escapes it for MarkdownV2.
func escape(s string) string {
	if r := []rune(s); len(r) > logFieldMaxLen {
		s = string(r[:logFieldMaxLen]) + "..."
	}
	return bot.EscapeMarkdown(s)
}
