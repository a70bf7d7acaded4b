package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojasmm/wamcp/internal/chatlock"
	"github.com/lojasmm/wamcp/internal/store"
	"github.com/lojasmm/wamcp/internal/tools"
	"github.com/lojasmm/wamcp/internal/whatsapp"
)

const (
	own   = "5511000000000@s.whatsapp.net"
	alice = "5511111111111@s.whatsapp.net"
)

type fakeMessenger struct {
	connected bool
}

func (f *fakeMessenger) OwnJID() string { return own }

func (f *fakeMessenger) Contacts(context.Context) ([]store.Contact, error) {
	if !f.connected {
		return nil, whatsapp.ErrNotConnected
	}
	return []store.Contact{{JID: alice, Name: "Alice"}}, nil
}

func (f *fakeMessenger) GroupParticipants(context.Context) (map[string][]string, error) {
	if !f.connected {
		return nil, whatsapp.ErrNotConnected
	}
	return map[string][]string{}, nil
}

func (f *fakeMessenger) SendText(context.Context, string, string) (string, error) {
	if !f.connected {
		return "", whatsapp.ErrNotConnected
	}
	return "SENT1", nil
}

func (f *fakeMessenger) SendMedia(context.Context, string, string, bool) (string, error) {
	return "SENT2", nil
}

func (f *fakeMessenger) Download(context.Context, *store.Media) ([]byte, error) {
	return nil, whatsapp.ErrNotConnected
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeMessenger) {
	t.Helper()
	dir := t.TempDir()
	h, err := store.NewBoltStore(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	require.NoError(t, h.SaveChat(store.Chat{ID: alice, Name: "Alice"}))
	require.NoError(t, h.SaveMessage(store.Message{
		ID: "m1", ChatJID: alice, Sender: alice, Body: "hello", Timestamp: time.Unix(1700000000, 0),
	}))

	fake := &fakeMessenger{connected: true}
	svc := tools.NewService(h, fake, chatlock.NewManager(), filepath.Join(dir, "downloads"))
	srv := httptest.NewServer(NewServer(svc, nil).Routes())
	t.Cleanup(srv.Close)
	return srv, fake
}

func post(t *testing.T, srv *httptest.Server, tool, body string) (int, string) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/mcp/tools/"+tool, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(b))
}

func TestListTools(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/mcp/tools")
	require.NoError(t, err)
	defer resp.Body.Close()

	var names []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&names))
	assert.Equal(t, tools.Names, names)
}

func TestValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		tool, body, want string
	}{
		{"search_contacts", `{}`, "Query parameter is required"},
		{"get_chat", ``, "chat_jid parameter is required"},
		{"get_direct_chat_by_contact", `{}`, "sender_phone_number parameter is required"},
		{"get_contact_chats", `{}`, "jid parameter is required"},
		{"get_last_interaction", `{}`, "jid parameter is required"},
		{"get_message_context", `{}`, "message_id parameter is required"},
		{"send_message", `{"recipient":"1"}`, "recipient and message parameters are required"},
		{"send_file", `{"recipient":"1"}`, "recipient and media_path parameters are required"},
		{"send_audio_message", `{}`, "recipient and media_path parameters are required"},
		{"download_media", `{"chat_jid":"x"}`, "message_id and chat_jid parameters are required"},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			status, body := post(t, srv, tt.tool, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, body)
		})
	}
}

func TestInvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t)
	status, body := post(t, srv, "list_chats", `{"limit":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "invalid JSON body")
}

func TestNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	status, body := post(t, srv, "get_chat", `{"chat_jid":"404@s.whatsapp.net"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"Chat not found"}`, body)

	status, body = post(t, srv, "get_message_context", `{"message_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"Message not found"}`, body)
}

func TestGetChat(t *testing.T) {
	srv, _ := newTestServer(t)
	status, body := post(t, srv, "get_chat", `{"chat_jid":"`+alice+`"}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{
		"id": "`+alice+`",
		"name": "Alice",
		"isGroup": false,
		"timestamp": 1700000000,
		"lastMessage": {"id": "m1", "body": "hello", "timestamp": 1700000000, "from": "`+alice+`", "hasMedia": false}
	}`, body)
}

func TestListMessagesEmptyBodyUsesDefaults(t *testing.T) {
	srv, _ := newTestServer(t)
	status, body := post(t, srv, "list_messages", ``)
	require.Equal(t, http.StatusOK, status)

	var msgs []tools.Message
	require.NoError(t, json.Unmarshal([]byte(body), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, own, msgs[0].To)
}

func TestListMessagesBadDate(t *testing.T) {
	srv, _ := newTestServer(t)
	status, body := post(t, srv, "list_messages", `{"after":"soon"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"Invalid after date: soon"}`, body)
}

func TestDisconnected(t *testing.T) {
	srv, fake := newTestServer(t)
	fake.connected = false

	status, body := post(t, srv, "search_contacts", `{"query":"a"}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.JSONEq(t, `{"error":"not connected to WhatsApp"}`, body)

	// sends report failure in the result body
	status, body = post(t, srv, "send_message", `{"recipient":"5511111111111","message":"hi"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success":false,"message":"Failed to send message: not connected to WhatsApp"}`, body)

	status, body = post(t, srv, "download_media", `{"message_id":"m1","chat_jid":"`+alice+`"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success":false,"message":"Failed to download media"}`, body)
}

func TestSendMessage(t *testing.T) {
	srv, _ := newTestServer(t)
	status, body := post(t, srv, "send_message", `{"recipient":"5511111111111","message":"hi"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success":true,"message":"Message sent successfully"}`, body)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/mcp/tools/list_chats", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsCountCalls(t *testing.T) {
	srv, _ := newTestServer(t)
	post(t, srv, "list_chats", `{}`)
	post(t, srv, "get_chat", `{}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), `wamcp_tool_calls_total{status="200",tool="list_chats"} 1`)
	assert.Contains(t, string(b), `wamcp_tool_calls_total{status="400",tool="get_chat"} 1`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(whatsapp.ErrNotConnected))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}
