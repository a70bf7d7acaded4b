package tools

import (
	"context"
	"sort"
	"strings"

	"github.com/lojasmm/wamcp/internal/store"
)

// SearchContacts matches address book users and known groups by name
// (case-insensitive) or number.
func (s *Service) SearchContacts(ctx context.Context, p SearchContactsParams) ([]Contact, error) {
	if p.Query == "" {
		return nil, invalid("Query parameter is required")
	}

	contacts, err := s.wa.Contacts(ctx)
	if err != nil {
		return nil, err
	}
	chats, err := s.history.Chats()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(contacts))
	for _, c := range contacts {
		seen[c.JID] = true
	}
	for _, c := range chats {
		if c.IsGroup && !seen[c.ID] {
			contacts = append(contacts, store.Contact{JID: c.ID, Name: c.Name, IsGroup: true})
			seen[c.ID] = true
		}
	}

	q := strings.ToLower(p.Query)
	out := []Contact{}
	for _, c := range contacts {
		number := c.Number()
		if !strings.Contains(strings.ToLower(c.Name), q) && !strings.Contains(number, p.Query) {
			continue
		}
		out = append(out, Contact{
			ID:      c.JID,
			Name:    displayName(c.Name),
			Number:  number,
			IsGroup: c.IsGroup,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
