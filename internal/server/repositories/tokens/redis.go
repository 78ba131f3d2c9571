package tokens

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

// RedisRepository keeps ledger rows as JSON values that expire together with
// the token. A per-owner set indexes rows for DeleteMany.
//
// Keys:
//
//	<prefix>:tok:<kind>:<sha256(token)>  row
//	<prefix>:tok:owner:<userID>:<kind>   set of row keys
type RedisRepository struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisRepository(rdb redis.UniversalClient, prefix string) *RedisRepository {
	return &RedisRepository{rdb: rdb, prefix: prefix}
}

type redisRow struct {
	ID          string    `json:"id"`
	Token       string    `json:"token"`
	UserID      string    `json:"user_id"`
	Kind        string    `json:"kind"`
	ExpiresAt   time.Time `json:"expires_at"`
	Blacklisted bool      `json:"blacklisted"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *RedisRepository) rowKey(token string, kind models.TokenKind) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%s:tok:%s:%s", r.prefix, kind, hex.EncodeToString(sum[:]))
}

func (r *RedisRepository) ownerKey(userID string, kind models.TokenKind) string {
	return fmt.Sprintf("%s:tok:owner:%s:%s", r.prefix, userID, kind)
}

func ttlUntil(t time.Time) time.Duration {
	ttl := time.Until(t)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func decodeRow(data []byte) (*models.Token, error) {
	var row redisRow
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("redis error: decode token row: %w", err)
	}
	return &models.Token{
		ID:          row.ID,
		Token:       row.Token,
		UserID:      row.UserID,
		Kind:        models.TokenKind(row.Kind),
		ExpiresAt:   row.ExpiresAt,
		Blacklisted: row.Blacklisted,
		CreatedAt:   row.CreatedAt,
	}, nil
}

func encodeRow(t *models.Token) ([]byte, error) {
	return json.Marshal(redisRow{
		ID:          t.ID,
		Token:       t.Token,
		UserID:      t.UserID,
		Kind:        string(t.Kind),
		ExpiresAt:   t.ExpiresAt,
		Blacklisted: t.Blacklisted,
		CreatedAt:   t.CreatedAt,
	})
}

func (r *RedisRepository) Create(ctx context.Context, token *models.Token) error {
	if !token.Kind.Valid() {
		return fmt.Errorf("%w: unknown token kind %q", common.ErrorValidation, token.Kind)
	}
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	token.CreatedAt = time.Now()

	data, err := encodeRow(token)
	if err != nil {
		return err
	}

	key := r.rowKey(token.Token, token.Kind)
	owner := r.ownerKey(token.UserID, token.Kind)
	ttl := ttlUntil(token.ExpiresAt)

	// rows of one kind share a lifetime, so the newest row outlives the rest
	// and the index can expire with it
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, ttl)
		pipe.SAdd(ctx, owner, key)
		pipe.Expire(ctx, owner, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) FindOne(ctx context.Context, token string, kind models.TokenKind) (*models.Token, error) {
	data, err := r.rdb.Get(ctx, r.rowKey(token, kind)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	row, err := decodeRow(data)
	if err != nil {
		return nil, err
	}
	if row.Blacklisted {
		return nil, common.ErrorNotFound
	}
	return row, nil
}

func (r *RedisRepository) DeleteMany(ctx context.Context, userID string, kind models.TokenKind) (int64, error) {
	owner := r.ownerKey(userID, kind)

	keys, err := r.rdb.SMembers(ctx, owner).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	var deleted *redis.IntCmd
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, keys...)
		pipe.SRem(ctx, owner, toAny(keys)...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	return deleted.Val(), nil
}

// FindOneAndDelete uses GETDEL, so of two concurrent callers only one sees
// the row.
func (r *RedisRepository) FindOneAndDelete(ctx context.Context, token string, kind models.TokenKind) (*models.Token, error) {
	key := r.rowKey(token, kind)

	data, err := r.rdb.GetDel(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	row, err := decodeRow(data)
	if err != nil {
		return nil, err
	}

	if err := r.rdb.SRem(ctx, r.ownerKey(row.UserID, kind), key).Err(); err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	return row, nil
}

func (r *RedisRepository) Blacklist(ctx context.Context, token string, kind models.TokenKind) error {
	key := r.rowKey(token, kind)

	for i := 0; i < maxWatchRetries; i++ {
		err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			row, err := decodeRow(data)
			if err != nil {
				return err
			}
			row.Blacklisted = true
			updated, err := encodeRow(row)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, redis.KeepTTL)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, redis.Nil) {
			return common.ErrorNotFound
		}
		if err != nil {
			return fmt.Errorf("redis error: %w", err)
		}
		return nil
	}
	return fmt.Errorf("redis error: blacklist: %w", redis.TxFailedErr)
}

func toAny(keys []string) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}
