package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const defaultMaxTxAttempts = 5

// RedisStore keeps each document as a JSON string at doc:<collection>:<id>
// and the ids of a collection in the set idx:<collection>.
type RedisStore struct {
	client        *redis.Client
	metrics       *metrics.MetricsRegistry
	maxTxAttempts int
}

// Ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, m *metrics.MetricsRegistry) *RedisStore {
	return &RedisStore{
		client:        client,
		metrics:       m,
		maxTxAttempts: defaultMaxTxAttempts,
	}
}

// WithMaxTxAttempts bounds how often RunTransaction retries after losing
// its WATCH.
func (s *RedisStore) WithMaxTxAttempts(n int) *RedisStore {
	if n > 0 {
		s.maxTxAttempts = n
	}
	return s
}

func docKey(collection, id string) string {
	return "doc:" + collection + ":" + id
}

func idxKey(collection string) string {
	return "idx:" + collection
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, collection, id string, dst any) (err error) {
	defer func() { s.metrics.CountStoreOp("get", ignoreNotFound(err)) }()

	data, err := s.client.Get(ctx, docKey(collection, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *RedisStore) Set(ctx context.Context, collection, id string, doc any) (err error) {
	defer func() { s.metrics.CountStoreOp("set", err) }()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, docKey(collection, id), data, 0)
		pipe.SAdd(ctx, idxKey(collection), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.RunTransaction(ctx, collection, id, func(current json.RawMessage) (any, error) {
		if current == nil {
			return nil, ErrNotFound
		}
		doc := map[string]any{}
		if err := json.Unmarshal(current, &doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		for k, v := range fields {
			doc[k] = v
		}
		return doc, nil
	})
}

func (s *RedisStore) Delete(ctx context.Context, collection, id string) (err error) {
	defer func() { s.metrics.CountStoreOp("delete", err) }()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, docKey(collection, id))
		pipe.SRem(ctx, idxKey(collection), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, collection string, q Query) (_ []json.RawMessage, err error) {
	defer func() { s.metrics.CountStoreOp("find", err) }()

	ids, err := s.client.SMembers(ctx, idxKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	if len(ids) == 0 {
		return []json.RawMessage{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(collection, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}

	cands := make([]candidate, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// index entry without a document: a delete raced the read
			continue
		}
		fields := map[string]any{}
		if err := json.Unmarshal([]byte(str), &fields); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, ids[i], err)
		}
		cands = append(cands, candidate{raw: json.RawMessage(str), fields: fields})
	}
	return apply(cands, q)
}

func (s *RedisStore) RunTransaction(ctx context.Context, collection, id string, fn TxFunc) (err error) {
	defer func() { s.metrics.CountStoreOp("transaction", ignoreNotFound(err)) }()

	key := docKey(collection, id)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return fmt.Errorf("read %s/%s: %w", collection, id, err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", collection, id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, idxKey(collection), id)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.maxTxAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			s.metrics.CountTxConflict(collection)
			continue
		}
		return err
	}
	return ErrConflict
}

func (s *RedisStore) Commit(ctx context.Context, b *Batch) (err error) {
	if b.Len() == 0 {
		return nil
	}
	defer func() { s.metrics.CountStoreOp("commit", err) }()

	encoded := make([][]byte, len(b.ops))
	for i, o := range b.ops {
		if o.kind != opSet {
			continue
		}
		data, err := json.Marshal(o.doc)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", o.collection, o.id, err)
		}
		encoded[i] = data
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, o := range b.ops {
			switch o.kind {
			case opSet:
				pipe.Set(ctx, docKey(o.collection, o.id), encoded[i], 0)
				pipe.SAdd(ctx, idxKey(o.collection), o.id)
			case opDelete:
				pipe.Del(ctx, docKey(o.collection, o.id))
				pipe.SRem(ctx, idxKey(o.collection), o.id)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("commit batch of %d: %w", len(b.ops), err)
	}
	return nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
