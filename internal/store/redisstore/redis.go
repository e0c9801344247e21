// Package redisstore keeps screening sessions in Redis so several
// server replicas can share them.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/abhisek/neuroscreen/internal/session"
)

const (
	// DefaultPrefix namespaces every key written by the store.
	DefaultPrefix = "neuroscreen:"

	// maxTxRetries bounds optimistic-lock retries in Update.
	maxTxRetries = 10
)

// Options configures a Store.
type Options struct {
	// Prefix namespaces keys. Default: DefaultPrefix.
	Prefix string

	// Retention expires session keys this long after their last update.
	// Zero keeps them until deleted.
	Retention time.Duration

	// Now is the clock used to stamp mutations. Default: time.Now.
	Now func() time.Time
}

// Store is a session.Store backed by Redis. Each session is one JSON
// string key; a set indexes the known IDs for List.
type Store struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
	now       func() time.Time
}

var _ session.Store = (*Store)(nil)

// New wraps an existing client.
func New(client *redis.Client, opts Options) *Store {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{client: client, prefix: opts.Prefix, retention: opts.Retention, now: opts.Now}
}

// Dial connects to the Redis server at addr and verifies it with PING.
func Dial(ctx context.Context, addr, password string, db int, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return New(client, opts), nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) key(id string) string { return s.prefix + "session:" + id }
func (s *Store) indexKey() string     { return s.prefix + "sessions" }

func (s *Store) Create(ctx context.Context, id string, patient session.PatientInfo) error {
	if err := session.ValidateID(id); err != nil {
		return err
	}
	sess := session.New(id, patient, s.now())
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}

	ok, err := s.client.SetNX(ctx, s.key(id), data, s.retention).Result()
	if err != nil {
		return fmt.Errorf("create session %s: %w", id, err)
	}
	if !ok {
		return &session.ErrInvariant{Reason: fmt.Sprintf("session %q already exists", id)}
	}
	if err := s.client.SAdd(ctx, s.indexKey(), id).Err(); err != nil {
		return fmt.Errorf("index session %s: %w", id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, &session.ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return decode(data)
}

// Update applies patch under WATCH so concurrent writers from other
// replicas cannot interleave with the read-modify-write.
func (s *Store) Update(ctx context.Context, id string, patch session.Patch) error {
	key := s.key(id)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return &session.ErrNotFound{ID: id}
		}
		if err != nil {
			return err
		}
		sess, err := decode(data)
		if err != nil {
			return err
		}
		if err := patch.Apply(sess, s.now()); err != nil {
			return fmt.Errorf("update session %s: %w", id, err)
		}
		out, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.retention)
			return nil
		})
		return err
	}

	for range maxTxRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update session %s: too much contention", id)
}

func (s *Store) List(ctx context.Context, filter session.Filter) ([]*session.Session, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list session ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	var out []*session.Session
	var expired []any
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// Expired by retention; drop it from the index.
			expired = append(expired, ids[i])
			continue
		}
		sess, err := decode([]byte(str))
		if err != nil {
			return nil, err
		}
		if filter.Match(sess) {
			out = append(out, sess)
		}
	}
	if len(expired) > 0 {
		_ = s.client.SRem(ctx, s.indexKey(), expired...).Err()
	}
	return session.SortAndLimit(out, filter), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if del.Val() == 0 {
		return &session.ErrNotFound{ID: id}
	}
	return nil
}

func decode(data []byte) (*session.Session, error) {
	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}
