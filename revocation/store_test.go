package revocation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStoreTest(t *testing.T) (*Store, *redis.Client, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "rv")
	return store, rdb, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestMarkAndCheckTokenRevoked(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	revoked, err := store.IsTokenRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("check before mark: %v", err)
	}
	if revoked {
		t.Fatal("unknown token id reported revoked")
	}

	if err := store.MarkTokenRevoked(ctx, "jti-1", time.Hour); err != nil {
		t.Fatalf("mark: %v", err)
	}
	// Re-marking the same id rewrites the same fact.
	if err := store.MarkTokenRevoked(ctx, "jti-1", time.Hour); err != nil {
		t.Fatalf("second mark: %v", err)
	}

	revoked, err = store.IsTokenRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("check after mark: %v", err)
	}
	if !revoked {
		t.Fatal("marked token id not reported revoked")
	}

	revoked, err = store.IsTokenRevoked(ctx, "jti-2")
	if err != nil {
		t.Fatalf("check other id: %v", err)
	}
	if revoked {
		t.Fatal("unrelated token id reported revoked")
	}
}

func TestMarkTokenRevokedNonPositiveTTLIsNoop(t *testing.T) {
	store, rdb, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.MarkTokenRevoked(ctx, "jti-expired", 0); err != nil {
		t.Fatalf("mark with zero ttl: %v", err)
	}
	if err := store.MarkTokenRevoked(ctx, "jti-expired", -time.Minute); err != nil {
		t.Fatalf("mark with negative ttl: %v", err)
	}

	n, err := rdb.Exists(ctx, "rv:deny:jti-expired").Result()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if n != 0 {
		t.Fatal("expired token was written to the denylist")
	}
}

func TestUserCutoffRaiseOnly(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	_, ok, err := store.GetUserCutoff(ctx, "u-1")
	if err != nil {
		t.Fatalf("get missing cutoff: %v", err)
	}
	if ok {
		t.Fatal("missing cutoff reported as present")
	}

	base := time.Now().Truncate(time.Second)

	raised, err := store.SetUserCutoff(ctx, "u-1", base, time.Hour)
	if err != nil {
		t.Fatalf("first set: %v", err)
	}
	if !raised {
		t.Fatal("first cutoff write did not raise")
	}

	// A retried revoke with an older clock reading must not regress the fact.
	raised, err = store.SetUserCutoff(ctx, "u-1", base.Add(-time.Minute), time.Hour)
	if err != nil {
		t.Fatalf("stale set: %v", err)
	}
	if raised {
		t.Fatal("stale timestamp raised the cutoff")
	}

	got, ok, err := store.GetUserCutoff(ctx, "u-1")
	if err != nil {
		t.Fatalf("get cutoff: %v", err)
	}
	if !ok || !got.Equal(base) {
		t.Fatalf("cutoff = %v (ok=%v), want %v", got, ok, base)
	}

	raised, err = store.SetUserCutoff(ctx, "u-1", base.Add(time.Minute), time.Hour)
	if err != nil {
		t.Fatalf("newer set: %v", err)
	}
	if !raised {
		t.Fatal("newer timestamp did not raise the cutoff")
	}

	got, _, err = store.GetUserCutoff(ctx, "u-1")
	if err != nil {
		t.Fatalf("get cutoff: %v", err)
	}
	if !got.Equal(base.Add(time.Minute)) {
		t.Fatalf("cutoff = %v, want %v", got, base.Add(time.Minute))
	}
}

func TestGlobalCutoffConcurrentRaisersMaxWins(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	base := time.Now().Truncate(time.Second)
	const raisers = 16

	var wg sync.WaitGroup
	errs := make(chan error, raisers)
	for i := 0; i < raisers; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			_, err := store.SetGlobalCutoff(ctx, base.Add(time.Duration(offset)*time.Second), time.Hour)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent raise: %v", err)
		}
	}

	got, ok, err := store.GetGlobalCutoff(ctx)
	if err != nil {
		t.Fatalf("get global cutoff: %v", err)
	}
	want := base.Add((raisers - 1) * time.Second)
	if !ok || !got.Equal(want) {
		t.Fatalf("global cutoff = %v (ok=%v), want %v", got, ok, want)
	}
}

func TestCleanupRemovesOnlyStaleEntries(t *testing.T) {
	store, rdb, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.MarkTokenRevoked(ctx, "jti-live", time.Hour); err != nil {
		t.Fatalf("mark live: %v", err)
	}

	// Entries whose recorded expiry has passed but which Redis has not pruned
	// yet. Seeded directly to simulate lazy eviction.
	stale := time.Now().Add(-time.Minute).Unix()
	for _, id := range []string{"jti-stale-1", "jti-stale-2"} {
		if err := rdb.Set(ctx, store.denyKey(id), stale, time.Hour).Err(); err != nil {
			t.Fatalf("seed stale entry: %v", err)
		}
	}

	removed, err := store.Cleanup(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 2 {
		t.Fatalf("cleanup removed %d entries, want 2", removed)
	}

	revoked, err := store.IsTokenRevoked(ctx, "jti-live")
	if err != nil {
		t.Fatalf("check live: %v", err)
	}
	if !revoked {
		t.Fatal("cleanup evicted a live denylist entry")
	}

	removed, err = store.Cleanup(ctx)
	if err != nil {
		t.Fatalf("second cleanup: %v", err)
	}
	if removed != 0 {
		t.Fatalf("second cleanup removed %d entries, want 0", removed)
	}
}

func TestStoreFailuresWrapSentinel(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "rv")
	mr.Close()
	defer rdb.Close()

	ctx := context.Background()

	if err := store.MarkTokenRevoked(ctx, "jti-1", time.Hour); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("mark on dead store = %v, want ErrStoreUnavailable", err)
	}
	if _, err := store.IsTokenRevoked(ctx, "jti-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("check on dead store = %v, want ErrStoreUnavailable", err)
	}
	if _, err := store.SetUserCutoff(ctx, "u-1", time.Now(), time.Hour); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("set cutoff on dead store = %v, want ErrStoreUnavailable", err)
	}
	if _, _, err := store.GetGlobalCutoff(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("get cutoff on dead store = %v, want ErrStoreUnavailable", err)
	}
	if _, err := store.Cleanup(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("cleanup on dead store = %v, want ErrStoreUnavailable", err)
	}
}
