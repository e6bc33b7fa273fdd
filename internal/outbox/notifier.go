package outbox

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewNotifier selects the notification transport from the redis URL: redis
// pub/sub when one is configured, the structured log otherwise. Every process
// that drains the outbox goes through this selection, so a drain from the api
// and a drain from the sweeper publish to the same place.
func NewNotifier(redisURL string, logger *zap.Logger) Notifier {
	if redisURL == "" {
		logger.Warn("REDIS_URL not set, notifications go to the log")
		return NewLogNotifier(logger)
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("invalid REDIS_URL, notifications go to the log", zap.Error(err))
		return NewLogNotifier(logger)
	}
	return NewRedisNotifier(redis.NewClient(opts))
}
