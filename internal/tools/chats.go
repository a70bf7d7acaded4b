package tools

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lojasmm/wamcp/internal/store"
)

func (s *Service) ListChats(ctx context.Context, p ListChatsParams) ([]Chat, error) {
	chats, err := s.history.Chats()
	if err != nil {
		return nil, err
	}

	if p.Query != "" {
		q := strings.ToLower(p.Query)
		filtered := chats[:0]
		for _, c := range chats {
			if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(c.ID, p.Query) {
				filtered = append(filtered, c)
			}
		}
		chats = filtered
	}

	switch p.SortBy {
	case "", "last_active":
		sort.SliceStable(chats, func(i, j int) bool {
			return chats[i].Timestamp.After(chats[j].Timestamp)
		})
	case "name":
		col := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(chats, func(i, j int) bool {
			return col.CompareString(chats[i].Name, chats[j].Name) < 0
		})
	}

	limit, page := pageArgs(p.Limit, p.Page)
	withLast := flag(p.IncludeLastMessage, true)
	out := []Chat{}
	for _, c := range paginate(chats, limit, page) {
		w, err := s.wireChat(c, withLast)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (s *Service) GetChat(ctx context.Context, p GetChatParams) (*Chat, error) {
	if p.ChatJID == "" {
		return nil, invalid("chat_jid parameter is required")
	}
	return s.getChat(p.ChatJID, flag(p.IncludeLastMessage, true))
}

func (s *Service) GetDirectChatByContact(ctx context.Context, p DirectChatParams) (*Chat, error) {
	if p.SenderPhoneNumber == "" {
		return nil, invalid("sender_phone_number parameter is required")
	}
	return s.getChat(store.FormatJID(p.SenderPhoneNumber), true)
}

func (s *Service) getChat(jid string, withLast bool) (*Chat, error) {
	c, err := s.history.Chat(jid)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("Chat not found")
	}
	w, err := s.wireChat(*c, withLast)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetContactChats lists the direct chat with jid and every group it is a
// member of.
func (s *Service) GetContactChats(ctx context.Context, p ContactChatsParams) ([]Chat, error) {
	if p.JID == "" {
		return nil, invalid("jid parameter is required")
	}
	jid := store.FormatJID(p.JID)

	chats, err := s.contactChats(ctx, jid)
	if err != nil {
		return nil, err
	}
	limit, page := pageArgs(p.Limit, p.Page)
	out := []Chat{}
	for _, c := range paginate(chats, limit, page) {
		w, err := s.wireChat(c, false)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// GetLastInteraction returns the latest message of the direct chat with
// jid or, when there is none, of the most recent group shared with it.
func (s *Service) GetLastInteraction(ctx context.Context, p LastInteractionParams) (*Interaction, error) {
	if p.JID == "" {
		return nil, invalid("jid parameter is required")
	}
	jid := store.FormatJID(p.JID)

	chat, err := s.history.Chat(jid)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		chats, err := s.contactChats(ctx, jid)
		if err != nil {
			return nil, err
		}
		for i := range chats {
			if chats[i].IsGroup {
				chat = &chats[i]
				break
			}
		}
	}
	if chat == nil {
		return nil, notFound("No interaction found")
	}

	msgs, err := s.history.Messages(chat.ID, 1)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, notFound("No interaction found")
	}
	last := interaction(s.wireMessage(msgs[0], nil))
	return &last, nil
}

// contactChats filters the known chats, most recent first, down to those
// involving jid.
func (s *Service) contactChats(ctx context.Context, jid string) ([]store.Chat, error) {
	chats, err := s.history.Chats()
	if err != nil {
		return nil, err
	}

	var (
		members map[string][]string
		loaded  bool
	)
	out := []store.Chat{}
	for _, c := range chats {
		if !c.IsGroup {
			if c.ID == jid {
				out = append(out, c)
			}
			continue
		}
		if !loaded {
			if members, err = s.wa.GroupParticipants(ctx); err != nil {
				return nil, err
			}
			loaded = true
		}
		for _, m := range members[c.ID] {
			if m == jid {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (s *Service) wireChat(c store.Chat, withLast bool) (Chat, error) {
	w := Chat{
		ID:        c.ID,
		Name:      displayName(c.Name),
		IsGroup:   c.IsGroup,
		Timestamp: unix(c.Timestamp),
	}
	if !withLast {
		return w, nil
	}
	msgs, err := s.history.Messages(c.ID, 1)
	if err != nil {
		return Chat{}, err
	}
	if len(msgs) > 0 {
		m := s.wireMessage(msgs[0], nil)
		w.LastMessage = &LastMessage{
			ID:        m.ID,
			Body:      m.Body,
			Timestamp: m.Timestamp,
			From:      m.From,
			HasMedia:  m.HasMedia,
		}
	}
	return w, nil
}
