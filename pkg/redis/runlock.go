package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunLock serializes pipeline runs per logical task type. Both pipelines
// are one-shot batch jobs; the invoker must guarantee at most one
// concurrent run per task, and this lock is how it does so across
// processes. When Redis is disabled the lock is a no-op.
type RunLock struct {
	client *Client
	prefix string
}

// NewRunLock creates a new run lock helper.
func NewRunLock(client *Client, prefix string) *RunLock {
	return &RunLock{
		client: client,
		prefix: prefix,
	}
}

// ErrLocked is returned when another run already holds the task lock.
var ErrLocked = fmt.Errorf("task is already running")

// Acquire takes the lock for a task, or returns ErrLocked. The TTL bounds
// how long a crashed run can keep the task blocked.
func (l *RunLock) Acquire(ctx context.Context, task string, ttl time.Duration) (func(), error) {
	if !l.client.Enabled() {
		return func() {}, nil
	}

	key := fmt.Sprintf("%s:runlock:%s", l.prefix, task)
	token := fmt.Sprintf("%d", time.Now().UnixNano())

	ok, err := l.client.Redis().SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("run lock acquire failed: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	release := func() {
		// Release only our own token so an expired lock taken over by a
		// newer run is left alone.
		script := redis.NewScript(`
			if redis.call('GET', KEYS[1]) == ARGV[1] then
				return redis.call('DEL', KEYS[1])
			end
			return 0
		`)
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = script.Run(releaseCtx, l.client.Redis(), []string{key}, token).Err()
	}

	return release, nil
}
