package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RateLimit 返回一个基于客户端 IP 的固定窗口限流中间件。
// 它只限制请求频率，与每日抽选次数无关。
func RateLimit(redisClient *redis.Client, keyPrefix string, maxRequests int, window time.Duration) gin.HandlerFunc {
	if redisClient == nil {
		panic("Redis client cannot be nil for RateLimit middleware")
	}
	if maxRequests <= 0 {
		panic("maxRequests must be positive for RateLimit middleware")
	}
	if window <= 0 {
		panic("window duration must be positive for RateLimit middleware")
	}

	return func(c *gin.Context) {
		key := keyPrefix + "ratelimit:" + c.ClientIP()
		ctx := c.Request.Context()

		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			logrus.WithError(err).Error("RateLimit: Redis INCR failed")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Rate limiting unavailable", "code": "rate_limit_unavailable"})
			return
		}
		// 固定窗口：只在窗口的第一个请求设置过期时间
		if count == 1 {
			if err := redisClient.Expire(ctx, key, window).Err(); err != nil {
				// 没有过期时间的计数器会永久封禁该 IP，删除它让下一个请求重新开窗
				logrus.WithError(err).Error("RateLimit: Redis EXPIRE failed")
				redisClient.Del(context.WithoutCancel(ctx), key)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Rate limiting unavailable", "code": "rate_limit_unavailable"})
				return
			}
		}

		remaining := int64(maxRequests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(maxRequests) {
			logrus.WithField("client_ip", c.ClientIP()).Debug("RateLimit: request throttled")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests", "code": "rate_limited"})
			return
		}
		c.Next()
	}
}
