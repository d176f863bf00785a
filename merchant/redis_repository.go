package merchant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alovak/brcode-playground/merchant/models"
	"github.com/redis/go-redis/v9"
)

const (
	redisProfileKey = "brcode:profile"
	redisHistoryKey = "brcode:transactions"
	redisTxPrefix   = "brcode:tx:"
)

// RedisRepository stores the profile as JSON and the history as a list of
// ids pushed on the left, so LRANGE returns newest first.
type RedisRepository struct {
	Client *redis.Client
}

// ConnectRedis connects to the redis db and returns the client.
func ConnectRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{Client: client}
}

func (r *RedisRepository) GetProfile(ctx context.Context) (*models.Profile, error) {
	data, err := r.Client.Get(ctx, redisProfileKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return &p, nil
}

func (r *RedisRepository) SaveProfile(ctx context.Context, profile *models.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, redisProfileKey, data, 0).Err()
}

// addTransactionScript stores the transaction and pushes its id in one
// atomic step. Returns 0 when the id already exists.
var addTransactionScript = redis.NewScript(`
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("LPUSH", KEYS[2], ARGV[2])
return 1
`)

func (r *RedisRepository) AddTransaction(ctx context.Context, transaction *models.Transaction) error {
	data, err := json.Marshal(transaction)
	if err != nil {
		return err
	}
	keys := []string{redisTxPrefix + transaction.ID, redisHistoryKey}
	added, err := addTransactionScript.Run(ctx, r.Client, keys, data, transaction.ID).Int()
	if err != nil {
		return err
	}
	if added == 0 {
		return fmt.Errorf("transaction %s exists: %w", transaction.ID, ErrConflict)
	}
	return nil
}

func (r *RedisRepository) ListTransactions(ctx context.Context, limit int) ([]*models.Transaction, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := r.Client.LRange(ctx, redisHistoryKey, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*models.Transaction, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisTxPrefix + id
	}
	values, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var t models.Transaction
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			return nil, fmt.Errorf("decoding transaction: %w", err)
		}
		out = append(out, &t)
	}
	return out, nil
}

func (r *RedisRepository) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	data, err := r.Client.Get(ctx, redisTxPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var t models.Transaction
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding transaction: %w", err)
	}
	return &t, nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisRepository) Close() error {
	return r.Client.Close()
}
