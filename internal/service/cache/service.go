package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kapu/career-card-go/internal/domain"
	"github.com/kapu/career-card-go/pkg/errors"
)

const cardKeyPrefix = "careercard:card:"

// CacheService wraps Redis for generated-card storage. Every read failure is
// reported as a miss to the caller; the pipeline always has a path forward.
type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return &CacheService{
		client: client,
		logger: logger,
	}, nil
}

// GetCard returns the cached card for a normalized subject key. A missing
// key, an unreachable store and a malformed stored value are all misses.
func (c *CacheService) GetCard(ctx context.Context, key string) (*domain.Card, bool) {
	value, err := c.client.Get(ctx, cardKeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Cache get failed, treating as miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}

	var card domain.Card
	if err := json.Unmarshal([]byte(value), &card); err != nil {
		c.logger.Warn("Cached card malformed, treating as miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}

	return &card, true
}

// SetCard stores a card under the normalized subject key with a TTL.
func (c *CacheService) SetCard(ctx context.Context, key string, card *domain.Card, ttl time.Duration) error {
	jsonData, err := json.Marshal(card)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := c.client.Set(ctx, cardKeyPrefix+key, jsonData, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}

	return nil
}

// Del removes a cached card (admin/test helper).
func (c *CacheService) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, cardKeyPrefix+key).Err(); err != nil {
		c.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	c.logger.Info("Redis disconnected")
	return nil
}

func (c *CacheService) IsConnected(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}
