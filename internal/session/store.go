package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists at most one Session across process restarts.
//
// Load reports absent=false both when nothing was ever saved and when the
// stored payload fails to parse; a parse failure never surfaces as an error.
// Clear is idempotent.
type Store interface {
	Load() (Session, bool, error)
	Save(s Session) error
	Clear() error
}

// FileStore keeps the session in a single JSON file, the CLI analog of
// origin-scoped browser storage.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultSessionPath resolves the per-user session file location.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "orion", "session.json"), nil
}

func (s *FileStore) Load() (Session, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}
	sess, err := decodeSession(data)
	if err != nil {
		// Corrupt payload reads as "no session".
		return Session{}, false, nil
	}
	return sess, true, nil
}

func (s *FileStore) Save(sess Session) error {
	data, err := encodeSession(sess)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// RedisStore keeps the session under a single fixed key.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "orion:cli:session"
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load() (Session, bool, error) {
	ctx, cancel := storeContext()
	defer cancel()
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}
	sess, err := decodeSession(data)
	if err != nil {
		return Session{}, false, nil
	}
	return sess, true, nil
}

func (s *RedisStore) Save(sess Session) error {
	data, err := encodeSession(sess)
	if err != nil {
		return err
	}
	ctx, cancel := storeContext()
	defer cancel()
	return s.client.Set(ctx, s.key, data, 0).Err()
}

func (s *RedisStore) Clear() error {
	ctx, cancel := storeContext()
	defer cancel()
	return s.client.Del(ctx, s.key).Err()
}

func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 500*time.Millisecond)
}

// MemoryStore is an in-process Store for tests.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SetRaw seeds the store with an arbitrary payload, valid or not.
func (s *MemoryStore) SetRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.set = true
}

func (s *MemoryStore) Load() (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return Session{}, false, nil
	}
	sess, err := decodeSession(s.data)
	if err != nil {
		return Session{}, false, nil
	}
	return sess, true, nil
}

func (s *MemoryStore) Save(sess Session) error {
	data, err := encodeSession(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.set = true
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	s.set = false
	return nil
}
