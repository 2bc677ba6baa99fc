package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mesabot/internal/config"
	"github.com/set-night/mesabot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiCall struct {
	method string
	form   map[string]string
}

// fakeAPI answers Bot API calls with canned results and records them.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []apiCall
	nextID int
	fail   map[string]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	_ = r.ParseMultipartForm(1 << 20)

	form := map[string]string{}
	if r.MultipartForm != nil {
		for k, v := range r.MultipartForm.Value {
			form[k] = v[0]
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{method: method, form: form})
	f.nextID++
	id := f.nextID
	desc, failing := f.fail[method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failing {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, `{"ok":false,"error_code":400,"description":%q}`, desc)
		return
	}
	switch method {
	case "sendMessage", "editMessageText":
		fmt.Fprintf(w, `{"ok":true,"result":{"message_id":%d,"date":0,"chat":{"id":1,"type":"private"}}}`, 100+id)
	default:
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	}
}

func (f *fakeAPI) byMethod(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func newTestBot(t *testing.T, api *fakeAPI) *bot.Bot {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	b, err := bot.New("123:test", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)
	return b
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"hola"}, SplitMessage("hola", 10))

	parts := SplitMessage(strings.Repeat("ñ", 25), 10)
	assert.Equal(t, []string{strings.Repeat("ñ", 10), strings.Repeat("ñ", 10), strings.Repeat("ñ", 5)}, parts)

	parts = SplitMessage("línea uno\nlínea dos", 12)
	assert.Equal(t, []string{"línea uno\n", "línea dos"}, parts)

	long := strings.Repeat("a", 5000)
	for _, p := range SplitMessage(long, config.MaxTelegramMessageLen) {
		assert.LessOrEqual(t, len([]rune(p)), config.MaxTelegramMessageLen)
	}
}

func TestKeyboard(t *testing.T) {
	assert.Nil(t, Keyboard(nil))

	markup, ok := Keyboard([][]domain.Button{
		{{Text: "Menú", Data: "menu"}},
		{{Text: "Salir", Data: "salir"}},
	}).(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)

	want := []struct{ text, data string }{{"Menú", "menu"}, {"Salir", "salir"}}
	for i, row := range markup.InlineKeyboard {
		require.Len(t, row, 1)
		assert.Equal(t, want[i].text, row[0].Text)
		assert.Equal(t, want[i].data, row[0].CallbackData)
	}
}

func TestMessageResponder_SplitsAndPutsButtonsLast(t *testing.T) {
	api := &fakeAPI{}
	client := NewClient(newTestBot(t, api))

	reply := domain.Reply{
		Text:    strings.Repeat("x", config.MaxTelegramMessageLen+10),
		Buttons: [][]domain.Button{{{Text: "Volver", Data: "return_start"}}},
	}
	ids, err := client.Messages(7).SendOrEdit(context.Background(), reply)
	require.NoError(t, err)

	sent := api.byMethod("sendMessage")
	require.Len(t, sent, 2)
	assert.Equal(t, []int{101, 102}, ids)
	assert.Empty(t, sent[0].form["reply_markup"])
	assert.Contains(t, sent[1].form["reply_markup"], "return_start")
	assert.Equal(t, "7", sent[0].form["chat_id"])
}

func TestCallbackResponder_EditsInPlace(t *testing.T) {
	api := &fakeAPI{}
	client := NewClient(newTestBot(t, api))

	ids, err := client.Callback(7, 55).SendOrEdit(context.Background(), domain.TextReply("Selecciona una categoría:"))
	require.NoError(t, err)
	assert.Equal(t, []int{55}, ids)

	edits := api.byMethod("editMessageText")
	require.Len(t, edits, 1)
	assert.Equal(t, "55", edits[0].form["message_id"])
	assert.Equal(t, "Selecciona una categoría:", edits[0].form["text"])
}

func TestCallbackResponder_LongReplySendsEveryPart(t *testing.T) {
	api := &fakeAPI{}
	client := NewClient(newTestBot(t, api))

	ids, err := client.Callback(7, 55).SendOrEdit(context.Background(), domain.TextReply(strings.Repeat("y", 2*config.MaxTelegramMessageLen+1)))
	require.NoError(t, err)
	assert.Equal(t, []int{101, 102, 103}, ids)
	assert.Empty(t, api.byMethod("editMessageText"))
}

func TestCallbackResponder_NotModifiedIsSuccess(t *testing.T) {
	api := &fakeAPI{fail: map[string]string{
		"editMessageText": "Bad Request: message is not modified: specified new message content and reply markup are exactly the same",
	}}
	client := NewClient(newTestBot(t, api))

	ids, err := client.Callback(7, 55).SendOrEdit(context.Background(), domain.TextReply("igual"))
	require.NoError(t, err)
	assert.Equal(t, []int{55}, ids)
}

func TestClient_DeleteMessage(t *testing.T) {
	api := &fakeAPI{fail: map[string]string{"deleteMessage": "Bad Request: message to delete not found"}}
	client := NewClient(newTestBot(t, api))

	err := client.DeleteMessage(context.Background(), 7, 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete message 9")
}

func TestStartTyping(t *testing.T) {
	api := &fakeAPI{}
	client := NewClient(newTestBot(t, api))

	stop := client.Messages(7).StartTyping(context.Background())
	assert.Eventually(t, func() bool { return len(api.byMethod("sendChatAction")) > 0 }, time.Second, 10*time.Millisecond)
	stop()
}

func TestTelegramLogger(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(t, api)

	t.Run("disabled without chat", func(t *testing.T) {
		l := NewTelegramLogger(b, &config.Config{})
		l.LogError(errors.New("boom"), "route chat 1")
		assert.Empty(t, api.byMethod("sendMessage"))
	})

	t.Run("feedback goes to its topic", func(t *testing.T) {
		l := NewTelegramLogger(b, &config.Config{LogTelegramChatID: -100, LogTopicError: 3, LogTopicFeedback: 4})
		l.LogFeedback(domain.Feedback{UserName: "ana_m", Rating: 5, Comment: "¡Excelente!"})

		sent := api.byMethod("sendMessage")
		require.Len(t, sent, 1)
		assert.Equal(t, "4", sent[0].form["message_thread_id"])
		assert.Contains(t, sent[0].form["text"], `ana\_m`)
		assert.Contains(t, sent[0].form["text"], `¡Excelente\!`)
	})
}
