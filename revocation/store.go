package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable is returned (wrapped) whenever the backing Redis store is
// unreachable, times out, or answers with something the store cannot interpret.
var ErrStoreUnavailable = errors.New("revocation store unavailable")

// globalCutoffField is the key suffix shared by every instance for the
// system-wide cutoff.
const globalCutoffField = "global"

const raiseCutoffScript = `
local current = tonumber(redis.call("GET", KEYS[1]) or "-1")
local proposed = tonumber(ARGV[1])
if proposed > current then
  redis.call("SET", KEYS[1], proposed, "PX", ARGV[2])
  return 1
end
return 0
`

var raiseCutoffLua = redis.NewScript(raiseCutoffScript)

// Store holds the three kinds of revocation facts in Redis. All methods are
// safe under concurrent callers from multiple service instances: denylist
// writes are independent per key and cutoff updates are max-wins CAS.
//
// A Store performs one Redis round-trip per operation and never blocks longer
// than the context allows.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a revocation [Store] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewStore(redis redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  redis,
		prefix: prefix,
	}
}

func (s *Store) denyKey(tokenID string) string {
	return s.prefix + ":deny:" + tokenID
}

func (s *Store) userCutoffKey(userID string) string {
	return s.prefix + ":uco:" + userID
}

func (s *Store) globalCutoffKey() string {
	return s.prefix + ":gco:" + globalCutoffField
}

// MarkTokenRevoked denylists a specific token id for the given remaining
// lifetime. A non-positive ttl means the token has already expired and there is
// nothing left to deny; the call is a no-op. Marking an already-denylisted id
// again simply rewrites the same fact, so the operation is idempotent.
func (s *Store) MarkTokenRevoked(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	// Value records the absolute expiry so Cleanup can count stale entries on
	// stores that only prune lazily.
	expiresAt := time.Now().Add(ttl).Unix()
	if err := s.redis.Set(ctx, s.denyKey(tokenID), expiresAt, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// IsTokenRevoked reports whether the specific token id has been denylisted.
func (s *Store) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.denyKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

// SetUserCutoff raises the stored cutoff for a user to the given timestamp.
// The write is compare-and-set against the existing value: a cutoff only ever
// moves forward, so a late or retried revoke with an older clock reading never
// regresses the stored fact. Returns whether the stored value was raised.
func (s *Store) SetUserCutoff(ctx context.Context, userID string, cutoff time.Time, ttl time.Duration) (bool, error) {
	return s.raiseCutoff(ctx, s.userCutoffKey(userID), cutoff, ttl)
}

// GetUserCutoff returns the user's cutoff timestamp, or ok = false when no
// cutoff fact exists for the user.
func (s *Store) GetUserCutoff(ctx context.Context, userID string) (time.Time, bool, error) {
	return s.getCutoff(ctx, s.userCutoffKey(userID))
}

// SetGlobalCutoff raises the system-wide cutoff with the same max-wins rule as
// [Store.SetUserCutoff].
func (s *Store) SetGlobalCutoff(ctx context.Context, cutoff time.Time, ttl time.Duration) (bool, error) {
	return s.raiseCutoff(ctx, s.globalCutoffKey(), cutoff, ttl)
}

// GetGlobalCutoff returns the system-wide cutoff, or ok = false when none is set.
func (s *Store) GetGlobalCutoff(ctx context.Context) (time.Time, bool, error) {
	return s.getCutoff(ctx, s.globalCutoffKey())
}

func (s *Store) raiseCutoff(ctx context.Context, key string, cutoff time.Time, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, fmt.Errorf("%w: cutoff ttl must be positive", ErrStoreUnavailable)
	}

	raised, err := raiseCutoffLua.Run(
		ctx,
		s.redis,
		[]string{key},
		cutoff.Unix(),
		ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return raised == 1, nil
}

func (s *Store) getCutoff(ctx context.Context, key string) (time.Time, bool, error) {
	value, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: corrupt cutoff value", ErrStoreUnavailable)
	}

	return time.Unix(unix, 0), true, nil
}

// Cleanup scans the denylist namespace and evicts entries whose recorded expiry
// has passed, returning how many were removed. Redis TTLs already bound store
// growth, so this is an advisory compaction and metrics hook, never required
// for correctness; running it twice in a row removes nothing the second time.
//
// Cleanup is an admin-only O(n) operation and must not be used in request hot paths.
func (s *Store) Cleanup(ctx context.Context) (int, error) {
	pattern := s.prefix + ":deny:*"
	nowUnix := time.Now().Unix()

	var (
		cursor  uint64
		removed int
	)

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return removed, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		for _, key := range keys {
			value, err := s.redis.Get(ctx, key).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				return removed, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}

			expiresAt, parseErr := strconv.ParseInt(value, 10, 64)
			if parseErr != nil || expiresAt > nowUnix {
				continue
			}

			deleted, err := s.redis.Del(ctx, key).Result()
			if err != nil {
				return removed, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
			removed += int(deleted)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return removed, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
