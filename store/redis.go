package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"onenight/game"
)

const sessionTTL = 24 * time.Hour

// Redis stores blobs under session:<code> with a day's expiry, so
// abandoned rooms clean themselves up. The revision check runs inside a
// WATCH transaction.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr, password string, db int) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Ping checks the connection at startup.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func sessionKey(roomCode string) string {
	return "session:" + roomCode
}

func (r *Redis) Get(ctx context.Context, roomCode string) (*game.Session, error) {
	blob, err := r.client.Get(ctx, sessionKey(roomCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return game.ReadSession(bytes.NewReader(blob))
}

func (r *Redis) Put(ctx context.Context, s *game.Session) error {
	var buf bytes.Buffer
	if err := s.WriteOut(&buf); err != nil {
		return err
	}
	key := sessionKey(s.RoomCode)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		blob, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var head struct {
				Revision int64 `json:"revision"`
			}
			if err := json.Unmarshal(blob, &head); err != nil {
				return err
			}
			if head.Revision >= s.Revision {
				return ErrStale
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, buf.Bytes(), sessionTTL)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

func (r *Redis) Delete(ctx context.Context, roomCode string) error {
	return r.client.Del(ctx, sessionKey(roomCode)).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
