package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

// SubmissionLocker serializes slot mutations per submission across processes.
// The lock is advisory and held only for the duration of the mutation; the TTL
// guards against a crashed holder wedging the submission.
type SubmissionLocker struct {
	client *Client
	ttl    time.Duration
}

func NewSubmissionLocker(client *Client, ttl time.Duration) *SubmissionLocker {
	return &SubmissionLocker{client: client, ttl: ttl}
}

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// WithLock runs fn while holding an exclusive per-key lock.
// A contended lock fails fast with a conflict rather than queueing: concurrent
// writers to the same slot are expected to retry at the transport layer.
func (l *SubmissionLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()
	lockKey := "kyc:lock:submission:" + key

	ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not acquire submission lock")
	}
	if !ok {
		return dErrors.New(dErrors.CodeConflict, "submission is being modified by another request")
	}
	defer func() {
		// Best effort: an expired lock self-heals via TTL.
		_ = releaseScript.Run(context.WithoutCancel(ctx), l.client.Client, []string{lockKey}, token).Err()
	}()

	return fn(ctx)
}
