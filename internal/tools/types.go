package tools

import (
	"bytes"
	"encoding/json"
)

type Contact struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Number  string `json:"number"`
	IsGroup bool   `json:"isGroup"`
}

type Chat struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	IsGroup     bool         `json:"isGroup"`
	Timestamp   int64        `json:"timestamp"`
	LastMessage *LastMessage `json:"lastMessage,omitempty"`
}

type LastMessage struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
	From      string `json:"from"`
	HasMedia  bool   `json:"hasMedia"`
}

type ChatRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Message struct {
	ID        string   `json:"id"`
	Body      string   `json:"body"`
	Timestamp int64    `json:"timestamp"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Author    string   `json:"author,omitempty"`
	FromMe    bool     `json:"fromMe"`
	HasMedia  bool     `json:"hasMedia"`
	Chat      *ChatRef `json:"chat,omitempty"`
}

type Interaction struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
	From      string `json:"from"`
	To        string `json:"to"`
}

type ContextMessage struct {
	Interaction
	IsTargetMessage bool `json:"isTargetMessage"`
}

type MessageContext struct {
	Chat            ChatRef          `json:"chat"`
	TargetMessage   Interaction      `json:"targetMessage"`
	ContextMessages []ContextMessage `json:"contextMessages"`
}

type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type DownloadResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	FilePath string `json:"file_path,omitempty"`
}

// DateBound is a date filter as sent by callers: a date string or a bare
// unix seconds number. Parsing happens when the filter is applied.
type DateBound string

func (d *DateBound) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = DateBound(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = DateBound(n.String())
	return nil
}

type SearchContactsParams struct {
	Query string `json:"query"`
}

type ListMessagesParams struct {
	After             DateBound `json:"after,omitempty"`
	Before            DateBound `json:"before,omitempty"`
	SenderPhoneNumber string    `json:"sender_phone_number,omitempty"`
	ChatJID           string    `json:"chat_jid,omitempty"`
	Query             string    `json:"query,omitempty"`
	Limit             int       `json:"limit,omitempty"`
	Page              int       `json:"page,omitempty"`
	IncludeContext    bool      `json:"include_context,omitempty"`
	ContextBefore     *int      `json:"context_before,omitempty"`
	ContextAfter      *int      `json:"context_after,omitempty"`
}

type ListChatsParams struct {
	Query              string `json:"query,omitempty"`
	Limit              int    `json:"limit,omitempty"`
	Page               int    `json:"page,omitempty"`
	IncludeLastMessage *bool  `json:"include_last_message,omitempty"`
	SortBy             string `json:"sort_by,omitempty"`
}

type GetChatParams struct {
	ChatJID            string `json:"chat_jid"`
	IncludeLastMessage *bool  `json:"include_last_message,omitempty"`
}

type DirectChatParams struct {
	SenderPhoneNumber string `json:"sender_phone_number"`
}

type ContactChatsParams struct {
	JID   string `json:"jid"`
	Limit int    `json:"limit,omitempty"`
	Page  int    `json:"page,omitempty"`
}

type LastInteractionParams struct {
	JID string `json:"jid"`
}

type MessageContextParams struct {
	MessageID string `json:"message_id"`
	Before    *int   `json:"before,omitempty"`
	After     *int   `json:"after,omitempty"`
}

type SendMessageParams struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

type SendFileParams struct {
	Recipient string `json:"recipient"`
	MediaPath string `json:"media_path"`
}

type DownloadMediaParams struct {
	MessageID string `json:"message_id"`
	ChatJID   string `json:"chat_jid"`
}

// Names lists every tool in the order they are documented.
var Names = []string{
	"search_contacts",
	"list_messages",
	"list_chats",
	"get_chat",
	"get_direct_chat_by_contact",
	"get_contact_chats",
	"get_last_interaction",
	"get_message_context",
	"send_message",
	"send_file",
	"send_audio_message",
	"download_media",
}

// Int returns a pointer to n, for the optional count parameters.
func Int(n int) *int { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }
