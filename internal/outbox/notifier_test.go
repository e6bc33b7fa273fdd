package outbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewNotifier(t *testing.T) {
	t.Parallel()

	logger := zap.NewNop()

	t.Run("configured redis URL selects the redis publisher", func(t *testing.T) {
		n := NewNotifier("redis://localhost:6379/0", logger)
		assert.IsType(t, &RedisNotifier{}, n)
	})

	t.Run("empty URL falls back to the log", func(t *testing.T) {
		n := NewNotifier("", logger)
		assert.IsType(t, &LogNotifier{}, n)
	})

	t.Run("unparseable URL falls back to the log", func(t *testing.T) {
		n := NewNotifier("://not-a-url", logger)
		assert.IsType(t, &LogNotifier{}, n)
	})
}
