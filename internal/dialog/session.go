package dialog

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"forecast-bot/internal/alias"
	"forecast-bot/internal/common/metrics"
)

// Session is the state of one conversation. Handle holds mu for the whole
// event, so text messages and picker callbacks never interleave.
type Session struct {
	ID        uuid.UUID
	ChatID    int64
	State     State
	Selection Selection
	Picks     *SelectionSet

	// Variables backs the picker's index-based callback data.
	Variables *alias.Mapping

	CreatedAt    time.Time
	LastActivity time.Time

	mu sync.Mutex
}

func NewSession(chatID int64) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New(),
		ChatID:       chatID,
		State:        StateSelectAuthor,
		Picks:        &SelectionSet{},
		CreatedAt:    now,
		LastActivity: now,
	}
}

func (s *Session) UpdateActivity() {
	s.LastActivity = time.Now()
}

// SessionStore owns the live conversations, keyed by chat.
type SessionStore interface {
	Get(chatID int64) (*Session, bool)
	Create(chatID int64) *Session
	Delete(chatID int64)
	Len() int
}

// MemoryStore keeps sessions in process memory and drops them after ttl of
// inactivity. mu makes the read-and-extend in Get atomic with Create and
// Delete.
type MemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	c := cache.New(ttl, cleanupInterval)
	c.OnEvicted(func(string, interface{}) {
		metrics.ActiveSessions.Dec()
	})
	return &MemoryStore{cache: c}
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// Get returns the session of chatID and extends its expiry.
func (m *MemoryStore) Get(chatID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sessionKey(chatID)
	x, found := m.cache.Get(key)
	if !found {
		return nil, false
	}
	m.cache.SetDefault(key, x)
	return x.(*Session), true
}

// Create starts a fresh session, replacing any previous one.
func (m *MemoryStore) Create(chatID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sessionKey(chatID)
	m.cache.Delete(key)
	s := NewSession(chatID)
	m.cache.SetDefault(key, s)
	metrics.ActiveSessions.Inc()
	return s
}

func (m *MemoryStore) Delete(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Delete(sessionKey(chatID))
}

func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}
