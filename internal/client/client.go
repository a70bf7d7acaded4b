package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lojasmm/wamcp/internal/tools"
)

const DefaultServer = "http://localhost:3001"

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client calls the tool endpoints of a running server.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultServer
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Call posts params to the named tool and decodes the answer into out.
// Pass a *json.RawMessage to keep the body as is.
func (c *Client) Call(ctx context.Context, tool string, params, out any) error {
	if params == nil {
		params = struct{}{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding %s params: %w", tool, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mcp/tools/"+tool, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", tool, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", tool, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", tool, err)
	}
	return nil
}

func (c *Client) SearchContacts(ctx context.Context, query string) ([]tools.Contact, error) {
	var out []tools.Contact
	err := c.Call(ctx, "search_contacts", tools.SearchContactsParams{Query: query}, &out)
	return out, err
}

func (c *Client) ListMessages(ctx context.Context, p tools.ListMessagesParams) ([]tools.Message, error) {
	var out []tools.Message
	err := c.Call(ctx, "list_messages", p, &out)
	return out, err
}

func (c *Client) ListChats(ctx context.Context, p tools.ListChatsParams) ([]tools.Chat, error) {
	var out []tools.Chat
	err := c.Call(ctx, "list_chats", p, &out)
	return out, err
}

func (c *Client) GetChat(ctx context.Context, chatJID string, includeLastMessage bool) (*tools.Chat, error) {
	var out tools.Chat
	p := tools.GetChatParams{ChatJID: chatJID, IncludeLastMessage: tools.Bool(includeLastMessage)}
	if err := c.Call(ctx, "get_chat", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetDirectChatByContact(ctx context.Context, phone string) (*tools.Chat, error) {
	var out tools.Chat
	if err := c.Call(ctx, "get_direct_chat_by_contact", tools.DirectChatParams{SenderPhoneNumber: phone}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetContactChats(ctx context.Context, jid string, limit, page int) ([]tools.Chat, error) {
	var out []tools.Chat
	err := c.Call(ctx, "get_contact_chats", tools.ContactChatsParams{JID: jid, Limit: limit, Page: page}, &out)
	return out, err
}

func (c *Client) GetLastInteraction(ctx context.Context, jid string) (*tools.Interaction, error) {
	var out tools.Interaction
	if err := c.Call(ctx, "get_last_interaction", tools.LastInteractionParams{JID: jid}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetMessageContext(ctx context.Context, messageID string, before, after int) (*tools.MessageContext, error) {
	var out tools.MessageContext
	p := tools.MessageContextParams{MessageID: messageID, Before: tools.Int(before), After: tools.Int(after)}
	if err := c.Call(ctx, "get_message_context", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendMessage(ctx context.Context, recipient, message string) (*tools.SendResult, error) {
	var out tools.SendResult
	if err := c.Call(ctx, "send_message", tools.SendMessageParams{Recipient: recipient, Message: message}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendFile(ctx context.Context, recipient, mediaPath string) (*tools.SendResult, error) {
	return c.sendFile(ctx, "send_file", recipient, mediaPath)
}

func (c *Client) SendAudioMessage(ctx context.Context, recipient, mediaPath string) (*tools.SendResult, error) {
	return c.sendFile(ctx, "send_audio_message", recipient, mediaPath)
}

func (c *Client) sendFile(ctx context.Context, tool, recipient, mediaPath string) (*tools.SendResult, error) {
	var out tools.SendResult
	if err := c.Call(ctx, tool, tools.SendFileParams{Recipient: recipient, MediaPath: mediaPath}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DownloadMedia(ctx context.Context, messageID, chatJID string) (*tools.DownloadResult, error) {
	var out tools.DownloadResult
	if err := c.Call(ctx, "download_media", tools.DownloadMediaParams{MessageID: messageID, ChatJID: chatJID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
