package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsIndexer/internal/config"
)

type botServer struct {
	path   string
	chatID string
	text   string
	status int
	reply  string
}

func (b *botServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	b.path = r.URL.Path
	b.chatID = r.PostForm.Get("chat_id")
	b.text = r.PostForm.Get("text")

	if b.status != 0 {
		w.WriteHeader(b.status)
	}
	reply := b.reply
	if reply == "" {
		reply = `{"ok":true,"result":{}}`
	}
	_, _ = w.Write([]byte(reply))
}

func TestAlertPostsMessage(t *testing.T) {
	bot := &botServer{}
	srv := httptest.NewServer(bot)
	defer srv.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "123:abc", ChatID: "-100"}, WithAPIBase(srv.URL), WithHTTPClient(srv.Client()))

	require.NoError(t, n.Alert(context.Background(), "Indexing degraded for https://ghnewsmedia.com/news/x"))
	assert.Equal(t, "/bot123:abc/sendMessage", bot.path)
	assert.Equal(t, "-100", bot.chatID)
	assert.Equal(t, "Indexing degraded for https://ghnewsmedia.com/news/x", bot.text)
}

func TestAlertTruncatesLongMessages(t *testing.T) {
	bot := &botServer{}
	srv := httptest.NewServer(bot)
	defer srv.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "t", ChatID: "c"}, WithAPIBase(srv.URL), WithHTTPClient(srv.Client()))

	require.NoError(t, n.Alert(context.Background(), strings.Repeat("é", 5000)))
	assert.Equal(t, maxMessageRunes, utf8.RuneCountInString(bot.text))
	assert.True(t, strings.HasSuffix(bot.text, "..."))
}

func TestAlertErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
		want   string
	}{
		{"http status", http.StatusUnauthorized, `{"ok":false,"description":"Unauthorized"}`, "401"},
		{"not ok", http.StatusOK, `{"ok":false,"description":"chat not found"}`, "chat not found"},
		{"garbage", http.StatusOK, `<html>`, "decode telegram reply"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := &botServer{status: tt.status, reply: tt.reply}
			srv := httptest.NewServer(bot)
			defer srv.Close()

			n := NewNotifier(config.TelegramConfig{BotToken: "t", ChatID: "c"}, WithAPIBase(srv.URL), WithHTTPClient(srv.Client()))

			err := n.Alert(context.Background(), "hello")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAlertReportsTruncatedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte(`{"ok":true`))
	}))
	defer srv.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "t", ChatID: "c"}, WithAPIBase(srv.URL), WithHTTPClient(srv.Client()))

	err := n.Alert(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read telegram reply")
}

func TestAlertMisconfigured(t *testing.T) {
	n := NewNotifier(config.TelegramConfig{BotToken: "t"})

	assert.False(t, n.Configured())
	assert.Error(t, n.Alert(context.Background(), "hello"))
}
