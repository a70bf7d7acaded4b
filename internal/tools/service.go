package tools

import (
	"context"
	"time"

	"github.com/lojasmm/wamcp/internal/chatlock"
	"github.com/lojasmm/wamcp/internal/store"
)

const (
	defaultLimit       = 20
	targetChatMessages = 100
	overviewChats      = 5
	overviewMessages   = 10
	unknownName        = "Unknown"
)

// History is the read side of the local message store.
type History interface {
	Chat(jid string) (*store.Chat, error)
	Chats() ([]store.Chat, error)
	Messages(chatJID string, limit int) ([]store.Message, error)
	Message(chatJID, id string) (*store.Message, error)
	FindMessage(id string) (*store.Message, error)
	Window(chatJID, id string, before, after int) ([]store.Message, error)
}

// Messenger is the live WhatsApp session.
type Messenger interface {
	OwnJID() string
	Contacts(ctx context.Context) ([]store.Contact, error)
	GroupParticipants(ctx context.Context) (map[string][]string, error)
	SendText(ctx context.Context, recipient, text string) (string, error)
	SendMedia(ctx context.Context, recipient, path string, voice bool) (string, error)
	Download(ctx context.Context, m *store.Media) ([]byte, error)
}

// Service implements the tool operations on top of the history store and
// the WhatsApp session.
type Service struct {
	history     History
	wa          Messenger
	locks       *chatlock.Manager
	downloadDir string
}

func NewService(history History, wa Messenger, locks *chatlock.Manager, downloadDir string) *Service {
	if locks == nil {
		locks = chatlock.NewManager()
	}
	return &Service{
		history:     history,
		wa:          wa,
		locks:       locks,
		downloadDir: downloadDir,
	}
}

func pageArgs(limit, page int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if page < 0 {
		page = 0
	}
	return limit, page
}

// paginate returns items[page*limit : (page+1)*limit], clamped.
func paginate[T any](items []T, limit, page int) []T {
	if page > len(items)/limit {
		return []T{}
	}
	start := page * limit
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	if start >= end {
		return []T{}
	}
	return items[start:end]
}

func count(n *int, def int) int {
	if n == nil {
		return def
	}
	if *n < 0 {
		return 0
	}
	return *n
}

func flag(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func displayName(name string) string {
	if name == "" {
		return unknownName
	}
	return name
}

func (s *Service) chatRef(jid string) (*ChatRef, error) {
	c, err := s.history.Chat(jid)
	if err != nil {
		return nil, err
	}
	ref := &ChatRef{ID: jid, Name: unknownName}
	if c != nil {
		ref.Name = displayName(c.Name)
	}
	return ref, nil
}

// wireMessage shapes a stored message for callers. Received messages come
// "from" the chat they arrived in; in groups the participant is the author.
func (s *Service) wireMessage(m store.Message, ref *ChatRef) Message {
	own := s.wa.OwnJID()
	w := Message{
		ID:        m.ID,
		Body:      m.Body,
		Timestamp: unix(m.Timestamp),
		FromMe:    m.FromMe,
		HasMedia:  m.Media != nil,
		Chat:      ref,
	}
	switch {
	case m.FromMe:
		w.From = own
		if w.From == "" {
			w.From = m.Sender
		}
		w.To = m.ChatJID
	case store.IsGroupJID(m.ChatJID):
		w.From = m.ChatJID
		w.To = own
		w.Author = m.Sender
	default:
		w.From = m.ChatJID
		w.To = own
	}
	return w
}

func interaction(m Message) Interaction {
	return Interaction{ID: m.ID, Body: m.Body, Timestamp: m.Timestamp, From: m.From, To: m.To}
}
