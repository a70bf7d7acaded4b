package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lojasmm/wamcp/internal/store"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseBound reads a date filter. The second return is false when the
// filter was not given.
func parseBound(name string, d DateBound) (int64, bool, error) {
	v := strings.TrimSpace(string(d))
	if v == "" {
		return 0, false, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Unix(), true, nil
		}
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(secs) && secs >= math.MinInt64 && secs < math.MaxInt64 {
		return int64(secs), true, nil
	}
	return 0, false, invalid(fmt.Sprintf("Invalid %s date: %s", name, v))
}

type messageFilter struct {
	query         string
	after, before int64
	hasAfter      bool
	hasBefore     bool
	sender        string
}

func (f messageFilter) match(m Message) bool {
	if f.query != "" && !strings.Contains(strings.ToLower(m.Body), f.query) {
		return false
	}
	if f.hasAfter && m.Timestamp < f.after {
		return false
	}
	if f.hasBefore && m.Timestamp > f.before {
		return false
	}
	if f.sender != "" && !strings.Contains(m.From, f.sender) {
		return false
	}
	return true
}

// ListMessages returns the filtered, paginated history of one chat, or of
// the most recently active chats when no chat is named.
func (s *Service) ListMessages(ctx context.Context, p ListMessagesParams) ([]Message, error) {
	f := messageFilter{query: strings.ToLower(p.Query)}
	var err error
	if f.after, f.hasAfter, err = parseBound("after", p.After); err != nil {
		return nil, err
	}
	if f.before, f.hasBefore, err = parseBound("before", p.Before); err != nil {
		return nil, err
	}

	target := p.ChatJID
	if target == "" && p.SenderPhoneNumber != "" {
		target = store.FormatJID(p.SenderPhoneNumber)
	}

	var candidates []Message
	if target != "" {
		f.sender = store.Digits(p.SenderPhoneNumber)
		candidates, err = s.chatMessages(target, targetChatMessages)
	} else {
		candidates, err = s.recentMessages()
	}
	if err != nil {
		return nil, err
	}

	matched := []Message{}
	for _, m := range candidates {
		if f.match(m) {
			matched = append(matched, m)
		}
	}
	limit, page := pageArgs(p.Limit, p.Page)
	out := paginate(matched, limit, page)

	if p.IncludeContext {
		return s.expandContext(out, count(p.ContextBefore, 1), count(p.ContextAfter, 1))
	}
	return out, nil
}

func (s *Service) chatMessages(jid string, limit int) ([]Message, error) {
	ref, err := s.chatRef(jid)
	if err != nil {
		return nil, err
	}
	msgs, err := s.history.Messages(jid, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, s.wireMessage(m, ref))
	}
	return out, nil
}

func (s *Service) recentMessages() ([]Message, error) {
	chats, err := s.history.Chats()
	if err != nil {
		return nil, err
	}
	if len(chats) > overviewChats {
		chats = chats[:overviewChats]
	}
	var out []Message
	for _, c := range chats {
		msgs, err := s.chatMessages(c.ID, overviewMessages)
		if err != nil {
			return nil, err
		}
		out = append(out, msgs...)
	}
	return out, nil
}

// expandContext replaces each message with its surrounding window. Windows
// that overlap are merged so no message appears twice.
func (s *Service) expandContext(msgs []Message, before, after int) ([]Message, error) {
	seen := make(map[string]bool)
	out := []Message{}
	for _, m := range msgs {
		if m.Chat == nil {
			continue
		}
		window, err := s.history.Window(m.Chat.ID, m.ID, before, after)
		if err != nil {
			return nil, err
		}
		for _, w := range window {
			key := w.ChatJID + "/" + w.ID
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s.wireMessage(w, m.Chat))
		}
	}
	return out, nil
}

// GetMessageContext finds a message in any chat and returns it with its
// neighbours.
func (s *Service) GetMessageContext(ctx context.Context, p MessageContextParams) (*MessageContext, error) {
	if p.MessageID == "" {
		return nil, invalid("message_id parameter is required")
	}

	target, err := s.history.FindMessage(p.MessageID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, notFound("Message not found")
	}

	window, err := s.history.Window(target.ChatJID, target.ID, count(p.Before, 5), count(p.After, 5))
	if err != nil {
		return nil, err
	}
	ref, err := s.chatRef(target.ChatJID)
	if err != nil {
		return nil, err
	}

	mc := &MessageContext{
		Chat:            *ref,
		TargetMessage:   interaction(s.wireMessage(*target, nil)),
		ContextMessages: make([]ContextMessage, 0, len(window)),
	}
	for _, m := range window {
		mc.ContextMessages = append(mc.ContextMessages, ContextMessage{
			Interaction:     interaction(s.wireMessage(m, nil)),
			IsTargetMessage: m.ID == target.ID,
		})
	}
	return mc, nil
}
