package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sethnnections/authkeeper/internal/common"
	"github.com/sethnnections/authkeeper/internal/server/models"
)

const maxWatchRetries = 4

// RedisRepository stores sessions as JSON with two lookup keys, one per
// token. Every key lives for ttl, normally the refresh token lifetime.
//
// Keys:
//
//	<prefix>:sess:<id>                       row
//	<prefix>:sess:access:<sha256(token)>     session id
//	<prefix>:sess:refresh:<sha256(token)>    session id
type RedisRepository struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisRepository(rdb redis.UniversalClient, prefix string, ttl time.Duration) *RedisRepository {
	return &RedisRepository{rdb: rdb, prefix: prefix, ttl: ttl}
}

type redisSession struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	IsValid      bool      `json:"is_valid"`
	UserAgent    string    `json:"user_agent"`
	IP           string    `json:"ip"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (r *RedisRepository) rowKey(id string) string {
	return fmt.Sprintf("%s:sess:%s", r.prefix, id)
}

func (r *RedisRepository) accessKey(token string) string {
	return fmt.Sprintf("%s:sess:access:%s", r.prefix, digest(token))
}

func (r *RedisRepository) refreshKey(token string) string {
	return fmt.Sprintf("%s:sess:refresh:%s", r.prefix, digest(token))
}

func (r *RedisRepository) Create(ctx context.Context, s *models.Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	data, err := json.Marshal(redisSession(*s))
	if err != nil {
		return err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.rowKey(s.ID), data, r.ttl)
		pipe.Set(ctx, r.accessKey(s.AccessToken), s.ID, r.ttl)
		pipe.Set(ctx, r.refreshKey(s.RefreshToken), s.ID, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) lookup(ctx context.Context, m Matcher) (string, error) {
	var key string
	switch {
	case m.AccessToken != "":
		key = r.accessKey(m.AccessToken)
	case m.RefreshToken != "":
		key = r.refreshKey(m.RefreshToken)
	default:
		return "", common.ErrorNotFound
	}

	id, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("redis error: %w", err)
	}
	return id, nil
}

func (r *RedisRepository) FindOneAndUpdate(ctx context.Context, m Matcher, p Patch) (*models.Session, error) {
	id, err := r.lookup(ctx, m)
	if err != nil {
		return nil, err
	}
	key := r.rowKey(id)

	for i := 0; i < maxWatchRetries; i++ {
		var updated models.Session

		err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			var row redisSession
			if err := json.Unmarshal(data, &row); err != nil {
				return err
			}

			s := models.Session(row)
			oldAccess := s.AccessToken
			// the index key still points here, but the row must match too
			if !m.matches(&s) {
				return redis.Nil
			}
			p.apply(&s)
			s.UpdatedAt = time.Now()

			encoded, err := json.Marshal(redisSession(s))
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, redis.KeepTTL)
				if s.AccessToken != oldAccess {
					pipe.Del(ctx, r.accessKey(oldAccess))
					pipe.Set(ctx, r.accessKey(s.AccessToken), s.ID, r.ttl)
				}
				return nil
			})
			if err != nil {
				return err
			}
			updated = s
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("redis error: %w", err)
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("redis error: update session: %w", redis.TxFailedErr)
}
