package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/lpm/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "lpm:artifact:"

// noExpiry is the index score of artifacts stored without TTL (2100-01-01).
const noExpiry = 4102444800

// Store implements ports.ArtifactStore using Redis.
// Artifacts are string keys under prefix+"a:"; the sorted set at prefix+"index"
// indexes names by expiry time and never shares a key with an artifact.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration for artifacts.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for artifacts.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to build a Locker on it.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(name string) string {
	return s.prefix + "a:" + name
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &domain.InputError{Field: "name", Reason: "artifact name cannot be empty"}
	}
	return nil
}

// Put stores the artifact and indexes it in one pipeline.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}

	score := float64(noExpiry)
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).Unix())
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(name), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: name})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save artifact to redis: %w", err)
	}
	return nil
}

// Get retrieves the artifact.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
		}
		return nil, fmt.Errorf("failed to get artifact from redis: %w", err)
	}
	return data, nil
}

// Delete removes the artifact and its index entry.
func (s *Store) Delete(ctx context.Context, name string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(name))
	pipe.ZRem(ctx, s.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete artifact from redis: %w", err)
	}
	return nil
}

// List prunes expired index entries, then returns the remaining names.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := fmt.Sprintf("%d", time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired artifacts: %w", err)
	}

	names, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return names, nil
}

// Ref returns a redis URI naming the artifact key.
func (s *Store) Ref(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	return "redis:" + s.key(name), nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
