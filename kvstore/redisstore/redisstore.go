package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/jrsteele09/crm-console/kvstore"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultOpTimeout = 2 * time.Second

var _ kvstore.Store = (*Store)(nil)

// Store is a kvstore.Store backed by redis string keys. It lets several console
// processes share visitor sessions.
type Store struct {
	client    redis.UniversalClient
	prefix    string
	opTimeout time.Duration
}

type Option func(*Store)

// WithOpTimeout bounds every redis round trip
func WithOpTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

func New(client redis.UniversalClient, prefix string, opts ...Option) *Store {
	s := &Store{
		client:    client,
		prefix:    prefix,
		opTimeout: defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

// Get treats an unreachable redis as a missing key; the error is logged.
func (s *Store) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		log.Err(err).Str("key", key).Msg("redis get failed")
		return "", false
	}
	return v, true
}

func (s *Store) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Store) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()
	return s.client.Del(ctx, s.key(key)).Err()
}

// Ping checks the connection, used at start-up
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
