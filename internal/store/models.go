package store

import (
	"strings"
	"time"
)

// Chat is a conversation the account takes part in, direct or group.
type Chat struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	IsGroup   bool      `json:"is_group"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is one entry of a chat's history. Sender is the author's JID,
// which for groups differs from ChatJID.
type Message struct {
	ID        string    `json:"id"`
	ChatJID   string    `json:"chat_jid"`
	Sender    string    `json:"sender"`
	FromMe    bool      `json:"from_me"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Media     *Media    `json:"media,omitempty"`
}

// Media holds what is needed to fetch and decrypt an attachment later.
type Media struct {
	Type          string `json:"type"` // image|video|audio|document|sticker
	Mimetype      string `json:"mimetype,omitempty"`
	FileName      string `json:"file_name,omitempty"`
	URL           string `json:"url,omitempty"`
	DirectPath    string `json:"direct_path,omitempty"`
	MediaKey      []byte `json:"media_key,omitempty"`
	FileSHA256    []byte `json:"file_sha256,omitempty"`
	FileEncSHA256 []byte `json:"file_enc_sha256,omitempty"`
	FileLength    uint64 `json:"file_length,omitempty"`
}

// Contact is an address book entry. Contacts are owned by the WhatsApp
// device store and are not persisted here.
type Contact struct {
	JID     string
	Name    string
	IsGroup bool
}

// Number is the user part of the contact's JID.
func (c Contact) Number() string {
	user, _, _ := strings.Cut(c.JID, "@")
	return user
}
