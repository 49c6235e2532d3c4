package quote

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "quote:session:"

// DefaultSessionTTL bounds how long an idle session is kept.
const DefaultSessionTTL = 24 * time.Hour

// Store persists quote sessions. Load returns ErrSessionNotFound for unknown
// or expired ids.
type Store interface {
	Load(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, s Session) error
}

// RedisStore keeps sessions as JSON documents with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a Redis backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Load fetches and decodes a session.
func (s *RedisStore) Load(ctx context.Context, id string) (Session, error) {
	if s == nil || s.client == nil {
		return Session{}, errors.New("quote: redis store not configured")
	}
	if id == "" {
		return Session{}, ErrSessionNotFound
	}
	data, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Save serialises the session and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, sess Session) error {
	if s == nil || s.client == nil {
		return errors.New("quote: redis store not configured")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+sess.ID, data, s.ttl).Err()
}

type memoryItem struct {
	data    []byte
	expires time.Time
}

// MemoryStore is an in-process Store used when Redis is not configured.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]memoryItem
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, items: make(map[string]memoryItem)}
}

// Load returns a copy of the stored session.
func (s *MemoryStore) Load(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	item, ok := s.items[id]
	if ok && !s.now().Before(item.expires) {
		delete(s.items, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	var sess Session
	if err := json.Unmarshal(item.data, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Save stores a copy of the session.
func (s *MemoryStore) Save(_ context.Context, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sess.ID] = memoryItem{data: data, expires: s.now().Add(s.ttl)}
	return nil
}
