package whatsapp

import (
	"context"
	"log"
	"time"

	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/lojasmm/wamcp/internal/store"
)

func (c *Client) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Message:
		c.recordMessage(v, "")
	case *events.HistorySync:
		c.recordHistory(v)
	case *events.Connected:
		log.Printf("whatsapp: connected as %s", c.OwnJID())
	case *events.Disconnected:
		log.Println("whatsapp: disconnected")
	case *events.LoggedOut:
		log.Printf("whatsapp: logged out (reason %v), relink the device", v.Reason)
	case *events.StreamReplaced:
		log.Println("whatsapp: session opened elsewhere")
	}
}

func (c *Client) recordMessage(evt *events.Message, chatName string) {
	msg, ok := convertMessage(evt)
	if !ok {
		return
	}
	if err := c.history.SaveMessage(msg); err != nil {
		log.Printf("whatsapp: saving message %s: %v", msg.ID, err)
		return
	}

	name := chatName
	if name == "" && !evt.Info.IsFromMe && !evt.Info.IsGroup {
		name = evt.Info.PushName
	}
	c.nameChat(evt.Info.Chat.ToNonAD(), name, msg.Timestamp)
}

func (c *Client) recordHistory(evt *events.HistorySync) {
	convs := evt.Data.GetConversations()
	saved := 0
	for _, conv := range convs {
		chatJID, err := types.ParseJID(conv.GetID())
		if err != nil {
			log.Printf("whatsapp: history sync: bad chat id %q: %v", conv.GetID(), err)
			continue
		}
		name := conv.GetName()
		if name == "" {
			name = conv.GetDisplayName()
		}
		for _, hm := range conv.GetMessages() {
			parsed, err := c.wa.ParseWebMessage(chatJID, hm.GetMessage())
			if err != nil {
				continue
			}
			c.recordMessage(parsed, name)
			saved++
		}
	}
	log.Printf("whatsapp: history sync stored %d messages across %d chats", saved, len(convs))
}

// nameChat makes sure the chat record carries a human name. Known names are
// cached; unknown groups are looked up off the event loop.
func (c *Client) nameChat(jid types.JID, name string, ts time.Time) {
	key := jid.String()

	c.mu.Lock()
	cached, seen := c.names[key]
	if name == "" {
		name = cached
	}
	if name != "" {
		c.names[key] = name
	} else if !seen {
		c.names[key] = ""
	}
	c.mu.Unlock()

	if name != "" {
		if name != cached {
			c.saveChat(jid, name, ts)
		}
		return
	}
	if seen {
		return
	}

	if jid.Server == types.GroupServer {
		go c.lookupGroupName(jid, ts)
		return
	}
	if info, err := c.wa.Store.Contacts.GetContact(context.Background(), jid); err == nil {
		if n := contactName(info); n != "" {
			c.mu.Lock()
			c.names[key] = n
			c.mu.Unlock()
			c.saveChat(jid, n, ts)
		}
	}
}

func (c *Client) lookupGroupName(jid types.JID, ts time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	info, err := c.wa.GetGroupInfo(ctx, jid)
	if err != nil || info.Name == "" {
		return
	}
	c.mu.Lock()
	c.names[jid.String()] = info.Name
	c.mu.Unlock()
	c.saveChat(jid, info.Name, ts)
}

func (c *Client) saveChat(jid types.JID, name string, ts time.Time) {
	err := c.history.SaveChat(store.Chat{
		ID:        jid.String(),
		Name:      name,
		IsGroup:   jid.Server == types.GroupServer,
		Timestamp: ts,
	})
	if err != nil {
		log.Printf("whatsapp: saving chat %s: %v", jid, err)
	}
}
