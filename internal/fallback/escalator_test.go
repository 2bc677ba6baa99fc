package fallback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/set-night/mesabot/internal/domain"
	"github.com/set-night/mesabot/internal/llm"
	"github.com/set-night/mesabot/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testMarkers = []string{"recomiendo", "te sugiero", "prueba"}

func openChat(t *testing.T, chatID int64, texts ...string) *session.Store {
	t.Helper()
	store := session.NewStore()
	store.Start(chatID)
	for i, text := range texts {
		require.NoError(t, store.Append(chatID, domain.Message{Role: domain.RoleUser, Content: text, MessageIDs: []int{100 + i}}))
	}
	return store
}

func newTestEscalator(gen llm.Generator, store Sessions, reporter domain.ErrorReporter) *Escalator {
	return NewEscalator(gen, store, Options{
		SystemPrompt:    "Eres un asistente.",
		MaxOutputTokens: 150,
		Temperature:     0.5,
		Timeout:         time.Second,
		Markers:         testMarkers,
	}, reporter)
}

func TestEscalator_PassesCompletionThrough(t *testing.T) {
	ctx := context.Background()
	const chatID = 5
	store := openChat(t, chatID, "hola", "¿a qué hora abren?")

	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.SystemPrompt == "Eres un asistente." &&
			req.MaxOutputTokens == 150 &&
			req.Temperature == 0.5 &&
			len(req.History) == 2 &&
			req.History[1].Content == "¿a qué hora abren?"
	})).Return("Abrimos a las 8 de la mañana.", nil)

	respond := new(MockResponder)
	respond.On("SendOrEdit", ctx, domain.TextReply("Abrimos a las 8 de la mañana.")).Return([]int{200, 201}, nil)

	require.NoError(t, newTestEscalator(gen, store, nil).Escalate(ctx, chatID, respond))

	history, _, err := store.History(chatID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, domain.RoleAssistant, history[2].Role)
	assert.Equal(t, "Abrimos a las 8 de la mañana.", history[2].Content)
	assert.Equal(t, []int{200, 201}, history[2].MessageIDs)

	gen.AssertExpectations(t)
	respond.AssertExpectations(t)
}

func TestEscalator_SuppressesRecommendations(t *testing.T) {
	ctx := context.Background()
	const chatID = 6
	store := openChat(t, chatID, "¿qué me das de comer?")

	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("Te recomiendo la pizza de la casa.", nil)

	respond := new(MockResponder)
	respond.On("SendOrEdit", ctx, domain.TextReply(RedirectText)).Return([]int{201}, nil)

	require.NoError(t, newTestEscalator(gen, store, nil).Escalate(ctx, chatID, respond))

	history, _, err := store.History(chatID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	respond.AssertExpectations(t)
}

func TestEscalator_ApologizesOnFailure(t *testing.T) {
	ctx := context.Background()
	const chatID = 7
	store := openChat(t, chatID, "hola?")

	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded)

	respond := new(MockResponder)
	respond.On("SendOrEdit", ctx, domain.TextReply(ApologyText)).Return([]int{202}, nil)

	reporter := new(MockReporter)
	reporter.On("LogError", mock.MatchedBy(func(err error) bool {
		return errors.Is(err, domain.ErrCollaborator) && errors.Is(err, context.DeadlineExceeded)
	}), "fallback chat 7").Return()

	require.NoError(t, newTestEscalator(gen, store, reporter).Escalate(ctx, chatID, respond))

	history, _, err := store.History(chatID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	respond.AssertExpectations(t)
	reporter.AssertExpectations(t)
}

func TestEscalator_DiscardsResultAfterTeardown(t *testing.T) {
	ctx := context.Background()
	const chatID = 8
	store := openChat(t, chatID, "cuéntame algo")

	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { store.Close(chatID) }).
		Return("Claro, aquí va.", nil)

	respond := new(MockResponder)

	require.NoError(t, newTestEscalator(gen, store, nil).Escalate(ctx, chatID, respond))
	respond.AssertNotCalled(t, "SendOrEdit", mock.Anything, mock.Anything)
}

func TestEscalator_ClosedSession(t *testing.T) {
	store := session.NewStore()
	gen := new(MockGenerator)

	_, err := newTestEscalator(gen, store, nil).Complete(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestEscalator_AppliesTimeout(t *testing.T) {
	const chatID = 10
	store := openChat(t, chatID, "hola")

	gen := new(MockGenerator)
	gen.On("Generate", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return("ok", nil)

	c, err := newTestEscalator(gen, store, nil).Complete(context.Background(), chatID)
	require.NoError(t, err)
	assert.Equal(t, "ok", c.Text)
	gen.AssertExpectations(t)
}

func TestIsRecommendation(t *testing.T) {
	assert.True(t, IsRecommendation("te recomiendo la pizza", testMarkers))
	assert.True(t, IsRecommendation("Te Sugiero un jugo", testMarkers))
	assert.True(t, IsRecommendation("PRUEBA el ceviche", testMarkers))
	assert.False(t, IsRecommendation("Abrimos a las 8.", testMarkers))
	assert.False(t, IsRecommendation("cualquier cosa", nil))
}

func TestParseRules(t *testing.T) {
	prompt, err := ParseRules(strings.NewReader(`{"rules": ["Eres un asistente.", "Responde en español."]}`))
	require.NoError(t, err)
	assert.Equal(t, "Eres un asistente. Responde en español.", prompt)

	_, err = ParseRules(strings.NewReader(`{"rules": []}`))
	assert.Error(t, err)

	_, err = ParseRules(strings.NewReader(`rules`))
	assert.Error(t, err)
}
