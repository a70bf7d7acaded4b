package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	chatsBucket        = []byte("chats")
	messagesBucket     = []byte("messages")
	messageIndexBucket = []byte("message_index")
	chatIndexBucket    = []byte("chat_message_index")
)

type indexEntry struct {
	Chat string `json:"chat"`
	Key  []byte `json:"key"`
}

type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{chatsBucket, messagesBucket, messageIndexBucket, chatIndexBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// messageKey orders messages by time inside a chat bucket; the id suffix
// keeps messages sharing a timestamp apart.
func messageKey(ts time.Time, id string) []byte {
	var nanos uint64
	if !ts.IsZero() && ts.Unix() > 0 {
		nanos = uint64(ts.UnixNano())
	}
	key := make([]byte, 8, 8+len(id))
	binary.BigEndian.PutUint64(key, nanos)
	return append(key, id...)
}

// SaveChat upserts a chat. A stored name survives an empty one and the
// timestamp never moves backwards.
func (s *BoltStore) SaveChat(c Chat) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putChat(tx, c)
	})
}

func putChat(tx *bolt.Tx, c Chat) error {
	b := tx.Bucket(chatsBucket)
	if v := b.Get([]byte(c.ID)); v != nil {
		var existing Chat
		if err := json.Unmarshal(v, &existing); err != nil {
			return err
		}
		if c.Name == "" {
			c.Name = existing.Name
		}
		if existing.Timestamp.After(c.Timestamp) {
			c.Timestamp = existing.Timestamp
		}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return b.Put([]byte(c.ID), data)
}

func (s *BoltStore) Chat(jid string) (*Chat, error) {
	var c *Chat
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(chatsBucket).Get([]byte(jid))
		if v == nil {
			return nil
		}
		c = &Chat{}
		return json.Unmarshal(v, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Chats returns every chat, most recently active first.
func (s *BoltStore) Chats() ([]Chat, error) {
	var chats []Chat
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(chatsBucket).ForEach(func(_, v []byte) error {
			var c Chat
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			chats = append(chats, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].Timestamp.After(chats[j].Timestamp)
	})
	return chats, nil
}

// SaveMessage stores m in its chat, replacing an earlier copy with the same
// id, and creates or bumps the chat.
func (s *BoltStore) SaveMessage(m Message) error {
	if m.ID == "" || m.ChatJID == "" {
		return fmt.Errorf("message needs an id and a chat")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		err := putChat(tx, Chat{ID: m.ChatJID, IsGroup: IsGroupJID(m.ChatJID), Timestamp: m.Timestamp})
		if err != nil {
			return err
		}

		msgs, err := tx.Bucket(messagesBucket).CreateBucketIfNotExists([]byte(m.ChatJID))
		if err != nil {
			return err
		}
		byChat := tx.Bucket(chatIndexBucket)
		ck := chatIndexKey(m.ChatJID, m.ID)
		if old := byChat.Get(ck); old != nil {
			if err := msgs.Delete(old); err != nil {
				return err
			}
		}

		key := messageKey(m.Timestamp, m.ID)
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := msgs.Put(key, data); err != nil {
			return err
		}
		if err := byChat.Put(ck, key); err != nil {
			return err
		}
		entry, err := json.Marshal(indexEntry{Chat: m.ChatJID, Key: key})
		if err != nil {
			return err
		}
		return tx.Bucket(messageIndexBucket).Put([]byte(m.ID), entry)
	})
}

// Messages returns the last limit messages of a chat in chronological
// order. A limit of zero or less returns the whole history.
func (s *BoltStore) Messages(chatJID string, limit int) ([]Message, error) {
	var out []Message
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(messagesBucket).Bucket([]byte(chatJID))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) == limit {
				break
			}
			var m Message
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	reverse(out)
	return out, nil
}

// Message looks a message up by chat and id; nil when unknown.
func (s *BoltStore) Message(chatJID, id string) (*Message, error) {
	var m *Message
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(messagesBucket).Bucket([]byte(chatJID))
		if b == nil {
			return nil
		}
		key := findKey(tx, chatJID, id)
		if key == nil {
			return nil
		}
		raw := b.Get(key)
		if raw == nil {
			return nil
		}
		m = &Message{}
		return json.Unmarshal(raw, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// FindMessage looks a message up by id alone; nil when unknown.
func (s *BoltStore) FindMessage(id string) (*Message, error) {
	var m *Message
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(messageIndexBucket).Get([]byte(id))
		if v == nil {
			return nil
		}
		var e indexEntry
		if err := json.Unmarshal(v, &e); err != nil {
			return err
		}
		b := tx.Bucket(messagesBucket).Bucket([]byte(e.Chat))
		if b == nil {
			return nil
		}
		if raw := b.Get(e.Key); raw != nil {
			m = &Message{}
			return json.Unmarshal(raw, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Window returns up to before messages preceding id, the message itself and
// up to after messages following it, in chronological order. It returns nil
// when the message is not in the chat.
func (s *BoltStore) Window(chatJID, id string, before, after int) ([]Message, error) {
	var out []Message
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(messagesBucket).Bucket([]byte(chatJID))
		if b == nil {
			return nil
		}
		key := findKey(tx, chatJID, id)
		if key == nil {
			return nil
		}
		c := b.Cursor()
		k, v := c.Seek(key)
		if k == nil || !bytes.Equal(k, key) {
			return nil
		}
		var target Message
		if err := json.Unmarshal(v, &target); err != nil {
			return err
		}

		var prev []Message
		for k, v := c.Prev(); k != nil && len(prev) < before; k, v = c.Prev() {
			var m Message
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			prev = append(prev, m)
		}
		reverse(prev)
		out = append(prev, target)

		c.Seek(key)
		for k, v := c.Next(); k != nil && len(out) < len(prev)+1+after; k, v = c.Next() {
			var m Message
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// chatIndexKey addresses a message within one chat; ids are only unique
// per chat.
func chatIndexKey(chatJID, id string) []byte {
	return []byte(chatJID + "\x00" + id)
}

// findKey resolves the message key of id inside chatJID, nil when unknown.
func findKey(tx *bolt.Tx, chatJID, id string) []byte {
	if k := tx.Bucket(chatIndexBucket).Get(chatIndexKey(chatJID, id)); k != nil {
		return append([]byte(nil), k...)
	}
	return nil
}

func reverse(msgs []Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
