package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	tferrors "github.com/loqalabs/taskflow/internal/errors"
)

const (
	redisKeyPrefix = "taskflow:interview:"
	redisIndexKey  = "taskflow:interviews"
)

var errInterviewExists = tferrors.New("interview already exists")

// RedisStore keeps each interview as a JSON blob under
// taskflow:interview:<id>, with the set of ids in taskflow:interviews.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to addr and checks the connection.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("interview store: connecting to redis at %s: %w", addr, err)
	}
	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(id string) string { return redisKeyPrefix + id }

// Create stores a new interview. It fails if the id is taken. The document
// and its index entry are written in one transaction; if that transaction
// fails part way, the document is removed again so a failed Create leaves
// nothing readable behind.
func (r *RedisStore) Create(ctx context.Context, s *State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return tferrors.NewStoreError("create", s.ID, err)
	}
	key := redisKey(s.ID)

	var written bool
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return errInterviewExists
		}
		written = true
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, redisIndexKey, s.ID)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case tferrors.Is(err, errInterviewExists), tferrors.Is(err, redis.TxFailedErr):
		return tferrors.NewStoreError("create", s.ID, errInterviewExists)
	}
	if written {
		if delErr := r.client.Del(context.WithoutCancel(ctx), key).Err(); delErr != nil {
			err = tferrors.CombineErrors(err, delErr)
		}
	}
	return tferrors.NewStoreError("create", s.ID, err)
}

// Load reads one interview.
func (r *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if err == redis.Nil {
		return nil, tferrors.NewNotFoundError(id)
	}
	if err != nil {
		return nil, tferrors.NewStoreError("load", id, err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, tferrors.NewStoreError("load", id, err)
	}
	return &s, nil
}

// Save overwrites an interview with a single SET. The index entry is
// ensured first, so a failure at either step leaves the stored document as
// it was.
func (r *RedisStore) Save(ctx context.Context, s *State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return tferrors.NewStoreError("save", s.ID, err)
	}
	if err := r.client.SAdd(ctx, redisIndexKey, s.ID).Err(); err != nil {
		return tferrors.NewStoreError("save", s.ID, err)
	}
	if err := r.client.Set(ctx, redisKey(s.ID), data, 0).Err(); err != nil {
		return tferrors.NewStoreError("save", s.ID, err)
	}
	return nil
}

// List returns every indexed interview, oldest first. Index entries whose
// document has disappeared are skipped.
func (r *RedisStore) List(ctx context.Context) ([]*State, error) {
	ids, err := r.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, tferrors.NewStoreError("list", "", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, tferrors.NewStoreError("list", "", err)
	}

	var result []*State
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var s State
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, tferrors.NewStoreError("list", ids[i], err)
		}
		result = append(result, &s)
	}
	sortStates(result)
	return result, nil
}

// DeleteCompletedBefore removes complete interviews last updated before cutoff.
func (r *RedisStore) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, s := range all {
		if s.Complete && s.UpdatedAt.Before(cutoff) {
			removed = append(removed, s.ID)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range removed {
			pipe.Del(ctx, redisKey(id))
			pipe.SRem(ctx, redisIndexKey, id)
		}
		return nil
	})
	if err != nil {
		return nil, tferrors.NewStoreError("cleanup", "", err)
	}
	return removed, nil
}

// Close closes the client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
