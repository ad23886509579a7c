package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharath018/invitation-rsvp-backend/config"
)

var (
	RedisClient *redis.Client
	Ctx         = context.Background()
)

// ErrTokenNotFound is returned when a key is missing or expired
var ErrTokenNotFound = errors.New("token not found")

// InitRedis connects the shared client and pings it
func InitRedis(cfg *config.Config) error {
	if cfg.RedisAddr == "" {
		return errors.New("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(Ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping: %w", err)
	}

	RedisClient = client
	return nil
}

// TokenStore keeps short-lived tokens (password reset) in Redis
type TokenStore struct {
	Client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{Client: client}
}

func (s *TokenStore) SetToken(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.Client.Set(ctx, key, value, ttl).Err()
}

func (s *TokenStore) GetToken(ctx context.Context, key string) (string, error) {
	val, err := s.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	return val, err
}

func (s *TokenStore) DeleteToken(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}
