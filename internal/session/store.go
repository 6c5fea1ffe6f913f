// Package session persists the currently logged-in user under a single key.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jwalitptl/medops-mobile/internal/model"
	"github.com/jwalitptl/medops-mobile/pkg/logger"
	"github.com/jwalitptl/medops-mobile/pkg/metrics"
)

// DefaultKey is the well-known storage key of the session blob.
const DefaultKey = "currentUser"

// Backends accepted by Open
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Backend  string
	Dir      string
	Key      string
	RedisURL string
}

// Store holds at most one logged-in user.
type Store struct {
	kv      KV
	key     string
	logger  *logger.Logger
	metrics *metrics.ClientMetrics
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		key:    DefaultKey,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open builds the KV named by cfg.Backend and wraps it in a Store. The
// returned closer releases backend connections.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, io.Closer, error) {
	var (
		kv     KV
		closer io.Closer = nopCloser{}
	)
	switch cfg.Backend {
	case BackendFile, "":
		f, err := NewFileKV(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		kv = f
	case BackendRedis:
		r, err := NewRedisKV(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		kv, closer = r, r
	case BackendMemory:
		kv = NewMemoryKV()
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}

	opts = append([]Option{WithKey(cfg.Key)}, opts...)
	return NewStore(kv, opts...), closer, nil
}

// Key returns the storage key in use.
func (s *Store) Key() string {
	return s.key
}

// Save serializes user under the session key, replacing any prior value.
func (s *Store) Save(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		s.metrics.ObserveSession("save", "error")
		return fmt.Errorf("failed to serialize session user: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.metrics.ObserveSession("save", "error")
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.metrics.ObserveSession("save", "ok")
	return nil
}

// Load returns the stored user. Absent, unreadable and corrupt sessions all
// report false; the latter two are logged.
func (s *Store) Load(ctx context.Context) (*model.User, bool) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrKeyNotFound) {
		s.logger.Info("no logged in user")
		s.metrics.ObserveSession("load", "absent")
		return nil, false
	}
	if err != nil {
		s.logger.Error(err, "error getting session", "key", s.key)
		s.metrics.ObserveSession("load", "error")
		return nil, false
	}

	var user *model.User
	if err := json.Unmarshal(data, &user); err != nil {
		s.logger.Error(err, "could not deserialize current user", "key", s.key)
		s.metrics.ObserveSession("load", "corrupt")
		return nil, false
	}
	// null and {} decode cleanly but carry no user
	if user == nil || user.UserID == 0 {
		s.logger.Warn("stored session has no user", "key", s.key)
		s.metrics.ObserveSession("load", "corrupt")
		return nil, false
	}
	s.metrics.ObserveSession("load", "ok")
	return user, true
}

// Clear removes the session. Clearing an empty session succeeds.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.metrics.ObserveSession("clear", "error")
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.metrics.ObserveSession("clear", "ok")
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
