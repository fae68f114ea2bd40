package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionlab/core/session"
)

const (
	defaultPrefix     = "sessionlab:session:"
	defaultMaxRetries = 8
	defaultScanBatch  = 500
)

// ErrConflict is returned when an update keeps losing optimistic transactions to concurrent writers.
var ErrConflict = errors.New("redisstore: too many concurrent updates")

// Store is a session.Store backed by redis.
// Each record is a JSON string under prefix+id. Create uses SETNX and Update uses WATCH/MULTI,
// so per-id mutations stay atomic across processes sharing one server.
type Store struct {
	client     redis.UniversalClient
	prefix     string
	ttl        time.Duration
	maxRetries int
	scanBatch  int64
}

var _ session.Store = (*Store)(nil)

// Option configures the store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL lets redis evict records on its own after d. Zero keeps records until deleted.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithMaxRetries bounds optimistic transaction retries in Update.
func WithMaxRetries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// WithScanBatch sets the SCAN COUNT hint used by DeleteExpired.
func WithScanBatch(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.scanBatch = n
		}
	}
}

// New creates a redis-backed session store.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client:     client,
		prefix:     defaultPrefix,
		maxRetries: defaultMaxRetries,
		scanBatch:  defaultScanBatch,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements session.Store.
func (s *Store) Get(ctx context.Context, id string) (session.Record, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Record{}, session.ErrNotFound
	}
	if err != nil {
		return session.Record{}, fmt.Errorf("redisstore: get: %w", err)
	}
	return decode(data)
}

// Create implements session.Store.
func (s *Store) Create(ctx context.Context, rec session.Record) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, s.key(rec.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redisstore: create: %w", err)
	}
	if !ok {
		return session.ErrAlreadyExists
	}
	return nil
}

// Put implements session.Store.
func (s *Store) Put(ctx context.Context, rec session.Record) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(rec.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: put: %w", err)
	}
	return nil
}

// Update implements session.Store with a WATCH/MULTI transaction, retried on conflict.
func (s *Store) Update(ctx context.Context, id string, fn func(*session.Record) error) (session.Record, error) {
	key := s.key(id)

	for range s.maxRetries {
		var updated session.Record

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return session.ErrNotFound
			}
			if err != nil {
				return err
			}

			before, err := decode(data)
			if err != nil {
				return err
			}

			after := before
			if err := fn(&after); err != nil {
				return err
			}
			if err := session.ValidateUpdate(before, after); err != nil {
				return err
			}

			encoded, err := json.Marshal(after)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.SetArgs(ctx, key, encoded, redis.SetArgs{KeepTTL: true})
				return nil
			})
			if err != nil {
				return err
			}

			updated = after
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return session.Record{}, err
		}
		return updated, nil
	}

	return session.Record{}, ErrConflict
}

// Delete implements session.Store. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redisstore: delete: %w", err)
	}
	return nil
}

// DeleteExpired implements session.Store by scanning the key prefix.
// A record replaced between the read and the delete is left alone.
func (s *Store) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var deleted int64

	iter := s.client.Scan(ctx, 0, s.prefix+"*", s.scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			rec, err := decode(data)
			if err != nil || !rec.CreatedAt.Before(before) {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			if err == nil {
				deleted++
			}
			return err
		}, key)

		switch {
		case err == nil, errors.Is(err, redis.Nil), errors.Is(err, redis.TxFailedErr):
		default:
			return deleted, fmt.Errorf("redisstore: delete expired: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redisstore: scan: %w", err)
	}

	return deleted, nil
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func encode(rec session.Record) ([]byte, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(rec)
}

func decode(data []byte) (session.Record, error) {
	var rec session.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return session.Record{}, fmt.Errorf("redisstore: decode: %w", err)
	}
	return rec, nil
}
