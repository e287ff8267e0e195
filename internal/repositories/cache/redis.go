package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"astromart/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// CacheService caches wallet reads. It is never consulted for session
// state: the availability guard must see committed sessions only.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, ttl time.Duration) *CacheService {
	return &CacheService{client: client, ttl: ttl}
}

func walletKey(walletID uint) string {
	return fmt.Sprintf("wallet:%d", walletID)
}

func (c *CacheService) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	val, err := c.client.Get(ctx, walletKey(walletID)).Result()
	if err != nil {
		return nil, err
	}
	var wallet models.Wallet
	if err := json.Unmarshal([]byte(val), &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (c *CacheService) SetWallet(ctx context.Context, wallet *models.Wallet) error {
	data, err := json.Marshal(wallet)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, walletKey(wallet.ID), data, c.ttl).Err()
}

// InvalidateWallet drops the cached copy after any balance mutation.
func (c *CacheService) InvalidateWallet(ctx context.Context, walletID uint) error {
	return c.client.Del(ctx, walletKey(walletID)).Err()
}

func (c *CacheService) FlushAll(ctx context.Context) error {
	return c.client.FlushAll(ctx).Err()
}

func (c *CacheService) Close() error {
	return c.client.Close()
}
