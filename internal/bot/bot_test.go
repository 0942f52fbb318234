package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/storebot/core/telegram/callbacks"
	"github.com/m3rciful/storebot/core/telegram/state"
	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/events"
	"github.com/m3rciful/storebot/internal/shop"
	"github.com/m3rciful/storebot/internal/storage/memory"
)

const (
	aliceID   int64 = 501
	bobID     int64 = 502
	managerID int64 = 900
)

type apiCall struct {
	Method string
	Params map[string]any
}

func (c apiCall) str(key string) string {
	v, _ := c.Params[key].(string)
	return v
}

// fakeAPI records Bot API calls and answers them with a minimal message.
type fakeAPI struct {
	mu        sync.Mutex
	calls     []apiCall
	failPhoto bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := path.Base(r.URL.Path)
	params := map[string]any{}
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &params)

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Method: method, Params: params})
	failPhoto := f.failPhoto
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case method == "sendPhoto" && failPhoto:
		_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: wrong file identifier/HTTP URL specified"}`)
	case method == "sendPhoto":
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":2,"date":0,"chat":{"id":1,"type":"private"},"photo":[{"file_id":"p1","file_unique_id":"u1","width":10,"height":10}]}}`)
	default:
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`)
	}
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeAPI) byMethod(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// texts returns the text of every sendMessage call.
func (f *fakeAPI) texts() []string {
	var out []string
	for _, c := range f.byMethod("sendMessage") {
		out = append(out, c.str("text"))
	}
	return out
}

func (f *fakeAPI) lastText(t *testing.T) apiCall {
	t.Helper()
	msgs := f.byMethod("sendMessage")
	require.NotEmpty(t, msgs, "no message was sent")
	return msgs[len(msgs)-1]
}

type harness struct {
	t        *testing.T
	ctx      context.Context
	api      *fakeAPI
	tb       *tele.Bot
	store    *memory.Store
	svc      *shop.Service
	sessions *state.MemoryStore
	events   *events.Recorder
	category domain.Category
	tea      domain.Product
	cup      domain.Product
	nextID   int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	store := memory.New()
	cat, err := store.UpsertCategory(ctx, domain.Category{Title: "Tea"})
	require.NoError(t, err)
	desc := "Sencha from Shizuoka"
	tea, err := store.UpsertProduct(ctx, domain.Product{
		Title: "Green tea", Description: &desc, Price: decimal.RequireFromString("4.50"),
		CategoryID: cat.ID, ImageRef: "https://cdn.example.com/green.jpg", Stock: 10,
	})
	require.NoError(t, err)
	cup, err := store.UpsertProduct(ctx, domain.Product{Title: "Cup", Price: decimal.NewFromInt(7), CategoryID: cat.ID, Stock: 3})
	require.NoError(t, err)
	_, err = store.UpsertManager(ctx, domain.Manager{FirstName: "Meg", Phone: "+15559990000", IsStaff: true, TelegramID: managerID})
	require.NoError(t, err)

	rec := &events.Recorder{}
	svc := shop.New(store, shop.WithEvents(rec))
	sessions := state.NewMemoryStore(0)
	b := New(Options{Shop: svc, Sessions: sessions})

	tb, err := tele.NewBot(tele.Settings{Token: "1:test", URL: srv.URL, Offline: true, Synchronous: true})
	require.NoError(t, err)
	for _, r := range b.Routes() {
		tb.Handle(r.Endpoint, r.Handler)
	}
	return &harness{
		t: t, ctx: ctx, api: api, tb: tb, store: store, svc: svc,
		sessions: sessions, events: rec, category: cat, tea: tea, cup: cup,
	}
}

func (h *harness) id() int {
	h.nextID++
	return h.nextID
}

func (h *harness) user(id int64) *tele.User {
	return &tele.User{ID: id, FirstName: fmt.Sprintf("User%d", id)}
}

func (h *harness) text(from int64, text string) {
	h.tb.ProcessUpdate(tele.Update{ID: h.id(), Message: &tele.Message{
		ID: h.nextID, Text: text, Sender: h.user(from), Chat: &tele.Chat{ID: from, Type: tele.ChatPrivate},
	}})
}

func (h *harness) contact(from, owner int64, phone string) {
	h.tb.ProcessUpdate(tele.Update{ID: h.id(), Message: &tele.Message{
		ID: h.nextID, Sender: h.user(from), Chat: &tele.Chat{ID: from, Type: tele.ChatPrivate},
		Contact: &tele.Contact{PhoneNumber: phone, UserID: owner},
	}})
}

func (h *harness) press(from int64, unique string, payload ...any) {
	data := "\f" + unique
	if len(payload) > 0 {
		data += "|" + callbacks.Join(payloadSep, payload...)
	}
	h.tb.ProcessUpdate(tele.Update{ID: h.id(), Callback: &tele.Callback{
		ID: fmt.Sprintf("cb%d", h.nextID), Sender: h.user(from), Data: data,
		Message: &tele.Message{ID: 1, Chat: &tele.Chat{ID: from, Type: tele.ChatPrivate}},
	}})
}

func (h *harness) register(telegramID int64, phone string) {
	h.t.Helper()
	_, _, err := h.svc.RegisterPhone(h.ctx, shop.Identity{TelegramID: telegramID, FirstName: "Test"}, phone)
	require.NoError(h.t, err)
	_, err = h.svc.RegisterAddress(h.ctx, telegramID, "12 Baker Street")
	require.NoError(h.t, err)
}

func (h *harness) session(telegramID int64) state.Session {
	s, err := h.sessions.Get(h.ctx, telegramID)
	if err != nil {
		return state.Idle()
	}
	return s
}

func joined(texts []string) string { return strings.Join(texts, "\n---\n") }
