package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, chatID int64) (bool, error) {
	args := m.Called(ctx, chatID)
	return args.Bool(0), args.Error(1)
}

func textUpdate(chatID int64, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   42,
			Chat: models.Chat{ID: chatID, Type: models.ChatTypePrivate},
			From: &models.User{ID: chatID, Username: "ana", FirstName: "Ana"},
			Text: text,
		},
	}
}

func TestChatInfo(t *testing.T) {
	var got *Chat
	h := ChatInfo()(func(ctx context.Context, _ *bot.Bot, _ *models.Update) { got = GetChat(ctx) })

	h(context.Background(), nil, textUpdate(5, "hola"))
	require.NotNil(t, got)
	assert.Equal(t, Chat{ChatID: 5, UserName: "ana", FirstName: "Ana", MessageID: 42}, *got)

	h(context.Background(), nil, &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb",
			From: models.User{ID: 5, FirstName: "Ana"},
			Data: "menu",
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 77, Chat: models.Chat{ID: 5}},
			},
		},
	})
	require.NotNil(t, got)
	assert.Equal(t, 77, got.MessageID)

	h(context.Background(), nil, &models.Update{})
	assert.Nil(t, got)
}

func TestLogging_AssignsRequestID(t *testing.T) {
	var id string
	h := Logging()(func(ctx context.Context, _ *bot.Bot, _ *models.Update) { id = RequestID(ctx) })

	h(context.Background(), nil, textUpdate(5, "hola"))
	assert.Len(t, id, 36)
	assert.Empty(t, RequestID(context.Background()))
}

func TestRecover(t *testing.T) {
	panicking := func(context.Context, *bot.Bot, *models.Update) { panic("boom") }

	t.Run("without bot", func(t *testing.T) {
		h := Recover("Lo siento")(panicking)
		assert.NotPanics(t, func() { h(context.Background(), nil, textUpdate(5, "hola")) })
	})

	t.Run("apologizes to the chat", func(t *testing.T) {
		var (
			chatID atomic.Value
			text   atomic.Value
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/sendMessage") {
				_ = r.ParseMultipartForm(1 << 20)
				chatID.Store(r.FormValue("chat_id"))
				text.Store(r.FormValue("text"))
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":5,"type":"private"}}}`)
		}))
		defer srv.Close()
		b, err := bot.New("123:test", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
		require.NoError(t, err)

		h := Recover("Lo siento")(panicking)
		assert.NotPanics(t, func() { h(context.Background(), b, textUpdate(5, "hola")) })
		assert.Equal(t, "5", chatID.Load())
		assert.Equal(t, "Lo siento", text.Load())
	})

	t.Run("update without chat", func(t *testing.T) {
		h := Recover("Lo siento")(panicking)
		assert.NotPanics(t, func() { h(context.Background(), nil, &models.Update{ID: 3}) })
	})
}

func TestRateLimit(t *testing.T) {
	var sent atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			sent.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":5,"type":"private"}}}`)
	}))
	defer srv.Close()
	b, err := bot.New("123:test", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)

	limiter := new(MockLimiter)
	limiter.On("Allow", mock.Anything, int64(5)).Return(true, nil).Once()
	limiter.On("Allow", mock.Anything, int64(5)).Return(false, nil).Once()
	limiter.On("Allow", mock.Anything, int64(5)).Return(false, errors.New("redis down")).Once()

	var calls int
	h := RateLimit(limiter)(func(context.Context, *bot.Bot, *models.Update) { calls++ })

	h(context.Background(), b, textUpdate(5, "uno"))
	h(context.Background(), b, textUpdate(5, "dos"))
	h(context.Background(), b, textUpdate(5, "tres"))
	h(context.Background(), b, &models.Update{CallbackQuery: &models.CallbackQuery{ID: "cb"}})

	assert.Equal(t, 3, calls)
	assert.Equal(t, int32(1), sent.Load())
	limiter.AssertExpectations(t)
}
