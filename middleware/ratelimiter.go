package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

// RateLimiter returns a per-IP limiter for a formatted rate such as
// "100-M". With a Redis client the counters are shared across instances,
// otherwise they live in process memory.
func RateLimiter(formatted, prefix string, client *redis.Client, log *zap.Logger) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}

	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix})
		if err != nil {
			return nil, err
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: prefix})
	}

	instance := limiter.New(store, rate)
	return ginlimiter.NewMiddleware(instance,
		ginlimiter.WithKeyGetter(func(c *gin.Context) string {
			return GetIPFromContext(c)
		}),
		ginlimiter.WithLimitReachedHandler(func(c *gin.Context) {
			if log != nil {
				log.Info("rate limit reached", zap.String("ip", GetIPFromContext(c)), zap.String("path", c.FullPath()))
			}
			c.AbortWithStatusJSON(429, gin.H{"error": "too many requests"})
		}),
	), nil
}
