package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/set-night/mesabot/internal/config"
	"github.com/set-night/mesabot/internal/domain"
	"github.com/set-night/mesabot/internal/intent"
	"github.com/set-night/mesabot/internal/session"
)

type FeedbackStore interface {
	SaveFeedback(ctx context.Context, fb *domain.Feedback) error
}

// Notifier mirrors notable events to operators.
type Notifier interface {
	LogError(err error, where string)
	LogFeedback(fb domain.Feedback)
}

type Escalator interface {
	Escalate(ctx context.Context, chatID int64, respond domain.Responder) error
}

type Router interface {
	Route(ctx context.Context, text string) (intent.Result, error)
}

// EngineDeps groups the collaborators of the chat engine.
type EngineDeps struct {
	Sessions       *session.Store
	Router         Router
	Escalator      Escalator
	Catalog        *CatalogService
	Feedback       FeedbackStore
	Deleter        domain.MessageDeleter
	Notifier       Notifier
	CatalogTimeout time.Duration
	BotName        string
	BusinessName   string
	// Now is the clock used for the greeting; defaults to time.Now.
	Now func() time.Time
}

// Engine turns chat events into replies: it gates on the session state,
// routes text through the intent cascade and falls back to the generative
// service. Calls for one chat must not overlap.
type Engine struct {
	EngineDeps
}

func NewEngine(deps EngineDeps) *Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Engine{EngineDeps: deps}
}

// SmallTalkReply is the canned answer to greetings in free text.
func SmallTalkReply(businessName string) domain.Reply {
	return domain.TextReply(fmt.Sprintf(textSmallTalkFmt, businessName))
}

// GreetingFor returns the salutation for the hour of day.
func GreetingFor(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "Buenos días"
	case h >= 12 && h < 18:
		return "Buenas tardes"
	default:
		return "Buenas noches"
	}
}

func mainMenu() domain.Reply {
	return domain.Reply{
		Text: textMainMenu,
		Buttons: [][]domain.Button{
			{{Text: buttonMenu, Data: CallbackMenu}},
			{{Text: buttonOrderInfo, Data: CallbackOrderInfo}},
			{{Text: buttonOthers, Data: CallbackOthers}},
			{{Text: buttonExit, Data: CallbackExit}},
		},
	}
}

func otherQuestions() domain.Reply {
	return domain.Reply{
		Text: textOtherQuestions,
		Buttons: [][]domain.Button{
			{{Text: buttonDeliveryTime, Data: CallbackDeliveryTime}},
			{{Text: buttonMostOrdered, Data: CallbackMostOrdered}},
			{{Text: buttonWrongOrder, Data: CallbackWrongOrder}},
			{{Text: buttonAppDoesNotOpen, Data: CallbackAppDoesNotOpen}},
			{{Text: buttonInfoProvided, Data: CallbackInfoProvided}},
			{{Text: buttonReturnStart, Data: CallbackReturnStart}},
		},
	}
}

// Start opens a fresh session, greets the user and shows the main menu.
func (e *Engine) Start(ctx context.Context, chatID int64, firstName string, respond domain.Responder) error {
	stale := e.Sessions.Start(chatID)
	e.cleanup(ctx, chatID, stale)

	greeting := fmt.Sprintf(textGreetingFmt, GreetingFor(e.Now()), firstName, e.BotName, e.BusinessName)
	greetingIDs, err := respond.SendOrEdit(ctx, domain.TextReply(greeting))
	if err != nil {
		return fmt.Errorf("send greeting: %w", err)
	}
	e.Sessions.SetGreeting(chatID, greetingIDs)

	if _, err := respond.SendOrEdit(ctx, mainMenu()); err != nil {
		return fmt.Errorf("send main menu: %w", err)
	}
	slog.Info("session started", "chat_id", chatID)
	return nil
}

// HandleText processes one free-text message.
func (e *Engine) HandleText(ctx context.Context, in domain.Inbound, respond domain.Responder) error {
	switch e.Sessions.State(in.ChatID) {
	case session.StateClosed:
		return e.send(ctx, respond, domain.TextReply(textRestart))
	case session.StateAwaitingRating:
		return e.handleRating(ctx, in, respond)
	case session.StateAwaitingComment:
		return e.handleComment(ctx, in, respond)
	}

	if err := e.Sessions.Append(in.ChatID, domain.Message{Role: domain.RoleUser, Content: in.Text, MessageIDs: []int{in.MessageID}}); err != nil {
		return e.send(ctx, respond, domain.TextReply(textRestart))
	}

	routeCtx := ctx
	if e.CatalogTimeout > 0 {
		var cancel context.CancelFunc
		routeCtx, cancel = context.WithTimeout(ctx, e.CatalogTimeout)
		defer cancel()
	}

	res, err := e.Router.Route(routeCtx, in.Text)
	if err != nil {
		e.fail(ctx, respond, fmt.Errorf("%w: %w", domain.ErrCollaborator, err), fmt.Sprintf("route chat %d", in.ChatID))
		return nil
	}

	switch res.Outcome {
	case intent.OutcomeExit:
		return e.beginRating(ctx, in.ChatID, respond)
	case intent.OutcomeFallback:
		slog.Debug("no intent matched, escalating", "chat_id", in.ChatID)
		return e.Escalator.Escalate(ctx, in.ChatID, respond)
	}

	slog.Info("intent handled", "chat_id", in.ChatID, "intent", res.Match.Intent)
	replyIDs, err := respond.SendOrEdit(ctx, res.Reply)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	_ = e.Sessions.Append(in.ChatID, domain.Message{Role: domain.RoleAssistant, Content: res.Reply.Text, MessageIDs: replyIDs})
	return nil
}

// HandleCallback processes an inline button press. Buttons only navigate:
// the session and its log are left as they are.
func (e *Engine) HandleCallback(ctx context.Context, chatID int64, data string, respond domain.Responder) error {
	if e.Sessions.State(chatID) == session.StateClosed {
		return e.send(ctx, respond, domain.TextReply(textRestart))
	}

	if e.CatalogTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.CatalogTimeout)
		defer cancel()
	}

	var (
		reply domain.Reply
		err   error
	)
	switch {
	case data == CallbackExit:
		return e.beginRating(ctx, chatID, respond)
	case data == CallbackReturnStart:
		reply = mainMenu()
	case data == CallbackMenu, data == CallbackReturnCategories:
		reply, err = e.Catalog.Categories(ctx)
	case strings.HasPrefix(data, CallbackCategoryPrefix):
		id, convErr := strconv.ParseInt(strings.TrimPrefix(data, CallbackCategoryPrefix), 10, 64)
		if convErr != nil {
			slog.Warn("malformed category callback", "data", data)
			return nil
		}
		reply, err = e.Catalog.CategoryProductsByID(ctx, id)
	case data == CallbackOrderInfo:
		reply = domain.Reply{Text: textOrderInfo, Buttons: [][]domain.Button{{{Text: buttonReturnStart, Data: CallbackReturnStart}}}}
	case data == CallbackOthers, data == CallbackReturnOthers:
		reply = otherQuestions()
	case data == CallbackMostOrdered:
		reply, err = e.Catalog.MostOrdered(ctx)
	case data == CallbackDeliveryTime:
		reply = backToQuestions(textDeliveryTime)
	case data == CallbackWrongOrder:
		reply = backToQuestions(textWrongOrder)
	case data == CallbackAppDoesNotOpen:
		reply = backToQuestions(textAppDoesNotOpen)
	case data == CallbackInfoProvided:
		reply = backToQuestions(textInfoProvided)
	case strings.HasPrefix(data, CallbackProductPrefix), strings.HasPrefix(data, CallbackSeparatorPrefix):
		return nil
	default:
		slog.Debug("unknown callback", "chat_id", chatID, "data", data)
		return nil
	}
	if err != nil {
		e.fail(ctx, respond, fmt.Errorf("%w: %w", domain.ErrCollaborator, err), fmt.Sprintf("callback %s chat %d", data, chatID))
		return nil
	}
	return e.send(ctx, respond, reply)
}

func (e *Engine) beginRating(ctx context.Context, chatID int64, respond domain.Responder) error {
	if err := e.Sessions.BeginRating(chatID); err != nil {
		return e.send(ctx, respond, domain.TextReply(textRestart))
	}
	return e.send(ctx, respond, domain.TextReply(textRatingPrompt))
}

func (e *Engine) handleRating(ctx context.Context, in domain.Inbound, respond domain.Responder) error {
	if _, err := e.Sessions.SubmitRating(in.ChatID, in.Text); err != nil {
		if errors.Is(err, domain.ErrInvalidRating) {
			return e.send(ctx, respond, domain.TextReply(textInvalidRating))
		}
		return e.send(ctx, respond, domain.TextReply(textRestart))
	}
	return e.send(ctx, respond, domain.TextReply(textCommentPrompt))
}

// handleComment records the feedback and closes the session. A failed save
// is reported but the session still closes.
func (e *Engine) handleComment(ctx context.Context, in domain.Inbound, respond domain.Responder) error {
	rating, err := e.Sessions.PendingRating(in.ChatID)
	if err != nil {
		return e.send(ctx, respond, domain.TextReply(textRestart))
	}

	userName := in.UserName
	if userName == "" {
		userName = config.DefaultUserName
	}
	fb := &domain.Feedback{UserName: userName, Rating: rating, Comment: in.Text}

	saveCtx := ctx
	if e.CatalogTimeout > 0 {
		var cancel context.CancelFunc
		saveCtx, cancel = context.WithTimeout(ctx, e.CatalogTimeout)
		defer cancel()
	}
	if err := e.Feedback.SaveFeedback(saveCtx, fb); err != nil {
		slog.Error("failed to save feedback", "chat_id", in.ChatID, "error", err)
		if e.Notifier != nil {
			e.Notifier.LogError(err, fmt.Sprintf("save feedback chat %d", in.ChatID))
		}
		if sendErr := e.send(ctx, respond, domain.TextReply(textFeedbackFailed)); sendErr != nil {
			slog.Warn("failed to report feedback error", "chat_id", in.ChatID, "error", sendErr)
		}
	} else {
		slog.Info("feedback saved", "chat_id", in.ChatID, "rating", rating)
		if e.Notifier != nil {
			e.Notifier.LogFeedback(*fb)
		}
	}

	if err := e.send(ctx, respond, domain.TextReply(textFeedbackThanks)); err != nil {
		slog.Warn("failed to thank for feedback", "chat_id", in.ChatID, "error", err)
	}

	td := e.Sessions.Close(in.ChatID)
	e.cleanup(ctx, in.ChatID, td)
	slog.Info("session closed", "chat_id", in.ChatID)

	return e.send(ctx, respond, domain.TextReply(textFarewell))
}

// cleanup deletes the given messages one by one; a failed delete is logged
// and the rest still go.
func (e *Engine) cleanup(ctx context.Context, chatID int64, td session.Teardown) {
	for _, id := range slices.Concat(td.GreetingIDs, td.MessageIDs) {
		if err := e.Deleter.DeleteMessage(ctx, chatID, id); err != nil {
			slog.Warn("could not delete message", "chat_id", chatID, "message_id", id, "error", err)
		}
	}
}

func (e *Engine) send(ctx context.Context, respond domain.Responder, reply domain.Reply) error {
	if _, err := respond.SendOrEdit(ctx, reply); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func (e *Engine) fail(ctx context.Context, respond domain.Responder, err error, where string) {
	slog.Error("request failed", "where", where, "error", err)
	if e.Notifier != nil {
		e.Notifier.LogError(err, where)
	}
	if sendErr := e.send(ctx, respond, domain.TextReply(textApology)); sendErr != nil {
		slog.Warn("failed to send apology", "where", where, "error", sendErr)
	}
}
