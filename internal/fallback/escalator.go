// Package fallback answers messages no pattern understood by asking the
// generative completion service, with a filter that keeps it from
// recommending products on its own.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/set-night/mesabot/internal/domain"
	"github.com/set-night/mesabot/internal/llm"
)

const (
	RedirectText = "Lamentablemente no encuentro información a tu pregunta procura empezar con preguntas claras, puedes decir: quiero pedir tal cosa."
	ApologyText  = "Lo siento, algo salió mal al procesar tu solicitud."
)

// Sessions is the part of the session store the escalator needs.
type Sessions interface {
	History(chatID int64) ([]domain.Message, uint64, error)
	IsCurrent(chatID int64, generation uint64) bool
	AppendIfCurrent(chatID int64, generation uint64, msg domain.Message) bool
}

type Options struct {
	SystemPrompt    string
	MaxOutputTokens int
	Temperature     float32
	Timeout         time.Duration
	// Markers that make a completion count as a product recommendation.
	Markers []string
}

type Escalator struct {
	gen      llm.Generator
	sessions Sessions
	opts     Options
	reporter domain.ErrorReporter
}

func NewEscalator(gen llm.Generator, sessions Sessions, opts Options, reporter domain.ErrorReporter) *Escalator {
	return &Escalator{gen: gen, sessions: sessions, opts: opts, reporter: reporter}
}

// Completion is a filtered answer bound to the session generation it was
// produced for.
type Completion struct {
	Text       string
	Filtered   bool
	Generation uint64
}

// Complete builds the prompt from the chat log and asks the generator.
// domain.ErrSessionClosed means the session ended before or during the call
// and the answer must be dropped. Generator failures wrap
// domain.ErrCollaborator.
func (e *Escalator) Complete(ctx context.Context, chatID int64) (Completion, error) {
	history, generation, err := e.sessions.History(chatID)
	if err != nil {
		return Completion{}, err
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	text, err := e.gen.Generate(ctx, llm.Request{
		SystemPrompt:    e.opts.SystemPrompt,
		History:         history,
		MaxOutputTokens: e.opts.MaxOutputTokens,
		Temperature:     e.opts.Temperature,
	})
	if !e.sessions.IsCurrent(chatID, generation) {
		return Completion{}, domain.ErrSessionClosed
	}
	if err != nil {
		return Completion{}, fmt.Errorf("%w: generate completion: %w", domain.ErrCollaborator, err)
	}

	if IsRecommendation(text, e.opts.Markers) {
		slog.Info("completion suppressed", "chat_id", chatID)
		return Completion{Text: RedirectText, Filtered: true, Generation: generation}, nil
	}
	return Completion{Text: text, Generation: generation}, nil
}

// Escalate answers the last logged message through respond. Failures of the
// completion service become an apology; only a failure to deliver is
// returned.
func (e *Escalator) Escalate(ctx context.Context, chatID int64, respond domain.Responder) error {
	if t, ok := respond.(domain.TypingIndicator); ok {
		stop := t.StartTyping(ctx)
		defer stop()
	}

	c, err := e.Complete(ctx, chatID)
	switch {
	case errors.Is(err, domain.ErrSessionClosed):
		slog.Info("fallback result discarded", "chat_id", chatID)
		return nil
	case err != nil:
		slog.Error("fallback failed", "chat_id", chatID, "error", err)
		if e.reporter != nil {
			e.reporter.LogError(err, fmt.Sprintf("fallback chat %d", chatID))
		}
		if _, sendErr := respond.SendOrEdit(ctx, domain.TextReply(ApologyText)); sendErr != nil {
			return fmt.Errorf("send apology: %w", sendErr)
		}
		return nil
	}

	messageIDs, err := respond.SendOrEdit(ctx, domain.TextReply(c.Text))
	if err != nil {
		return fmt.Errorf("send completion: %w", err)
	}
	if c.Filtered {
		return nil
	}

	msg := domain.Message{Role: domain.RoleAssistant, Content: c.Text, MessageIDs: messageIDs}
	if !e.sessions.AppendIfCurrent(chatID, c.Generation, msg) {
		slog.Info("completion not logged, session ended", "chat_id", chatID)
	}
	return nil
}

// IsRecommendation reports whether text contains any marker, ignoring case.
func IsRecommendation(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
