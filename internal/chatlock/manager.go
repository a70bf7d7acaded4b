package chatlock

import (
	"sync"
	"time"
)

// Manager hands out one mutex per chat so that sends to the same recipient
// go out in the order they were requested; different chats proceed in parallel.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*chatLock
}

type chatLock struct {
	mu       sync.Mutex
	lastUsed time.Time
	holders  int
}

func NewManager() *Manager {
	return &Manager{
		locks: make(map[string]*chatLock),
	}
}

// WithLock executes fn while holding the mutex for jid.
func (m *Manager) WithLock(jid string, fn func() error) error {
	m.mu.Lock()
	cl, ok := m.locks[jid]
	if !ok {
		cl = &chatLock{}
		m.locks[jid] = cl
	}
	cl.holders++
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		cl.holders--
		cl.lastUsed = time.Now()
		m.mu.Unlock()
	}()

	cl.mu.Lock()
	defer cl.mu.Unlock()
	return fn()
}

// Cleanup drops locks that are idle and unused for longer than maxAge.
func (m *Manager) Cleanup(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for jid, cl := range m.locks {
		if cl.holders == 0 && now.Sub(cl.lastUsed) > maxAge {
			delete(m.locks, jid)
		}
	}
}

// size reports how many chats currently have a lock entry.
func (m *Manager) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
