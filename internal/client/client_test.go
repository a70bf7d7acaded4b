package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojasmm/wamcp/internal/tools"
)

type recorded struct {
	path string
	body map[string]any
}

func newFakeServer(t *testing.T, status int, reply string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		rec.body = map[string]any{}
		_ = json.Unmarshal(b, &rec.body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/"), rec
}

func TestSearchContacts(t *testing.T) {
	c, rec := newFakeServer(t, http.StatusOK, `[{"id":"1@s.whatsapp.net","name":"Ann","number":"1","isGroup":false}]`)

	got, err := c.SearchContacts(context.Background(), "ann")
	require.NoError(t, err)
	assert.Equal(t, "/mcp/tools/search_contacts", rec.path)
	assert.Equal(t, "ann", rec.body["query"])
	assert.Equal(t, []tools.Contact{{ID: "1@s.whatsapp.net", Name: "Ann", Number: "1"}}, got)
}

func TestGetMessageContextSendsCounts(t *testing.T) {
	c, rec := newFakeServer(t, http.StatusOK, `{"chat":{"id":"c","name":"C"},"targetMessage":{"id":"m"},"contextMessages":[]}`)

	got, err := c.GetMessageContext(context.Background(), "m", 0, 3)
	require.NoError(t, err)
	assert.Equal(t, "m", rec.body["message_id"])
	assert.Equal(t, float64(0), rec.body["before"])
	assert.Equal(t, float64(3), rec.body["after"])
	assert.Equal(t, "C", got.Chat.Name)
}

func TestListMessagesOmitsUnsetFields(t *testing.T) {
	c, rec := newFakeServer(t, http.StatusOK, `[]`)

	_, err := c.ListMessages(context.Background(), tools.ListMessagesParams{ChatJID: "c@g.us", After: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"chat_jid": "c@g.us", "after": "2024-01-01"}, rec.body)
}

func TestAPIError(t *testing.T) {
	c, _ := newFakeServer(t, http.StatusNotFound, `{"error":"Chat not found"}`)

	_, err := c.GetChat(context.Background(), "x", true)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Chat not found", apiErr.Message)
	assert.Equal(t, "server returned 404: Chat not found", err.Error())
}

func TestAPIErrorPlainBody(t *testing.T) {
	c, _ := newFakeServer(t, http.StatusBadGateway, "upstream down\n")

	_, err := c.ListChats(context.Background(), tools.ListChatsParams{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.False(t, IsNotFound(err))
}

func TestCallRaw(t *testing.T) {
	c, _ := newFakeServer(t, http.StatusOK, `{"success":true,"message":"ok"}`)

	var raw json.RawMessage
	require.NoError(t, c.Call(context.Background(), "send_message", nil, &raw))
	assert.JSONEq(t, `{"success":true,"message":"ok"}`, string(raw))
}

func TestNewDefaults(t *testing.T) {
	assert.Equal(t, DefaultServer, New("").BaseURL())
	assert.Equal(t, "http://h:1", New("http://h:1///").BaseURL())
}
