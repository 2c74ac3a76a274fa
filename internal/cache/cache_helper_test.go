package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) *CacheHelper {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, "test:")
}

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacheHelper_SetAndGet(t *testing.T) {
	helper := newTestHelper(t)
	ctx := context.Background()

	want := cachedValue{Name: "questions", Count: 3}
	if err := helper.Set(ctx, "id:1", want, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got cachedValue
	if err := helper.Get(ctx, "id:1", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCacheHelper_GetMissing(t *testing.T) {
	helper := newTestHelper(t)

	var got cachedValue
	if err := helper.Get(context.Background(), "absent", &got); err != ErrCacheNotFound {
		t.Errorf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_NilClient(t *testing.T) {
	helper := NewCacheHelper(nil, "")
	ctx := context.Background()

	if err := helper.Get(ctx, "k", &cachedValue{}); err != ErrCacheNotAvailable {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}
	if err := helper.Set(ctx, "k", cachedValue{}, time.Minute); err != nil {
		t.Errorf("Set should degrade gracefully, got %v", err)
	}
	if err := helper.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete should degrade gracefully, got %v", err)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper := newTestHelper(t)
	ctx := context.Background()

	for _, key := range []string{"list:page1", "list:page2", "id:1"} {
		if err := helper.Set(ctx, key, cachedValue{}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	var got cachedValue
	if err := helper.Get(ctx, "list:page1", &got); err != ErrCacheNotFound {
		t.Errorf("list entry should be invalidated, got %v", err)
	}
	if err := helper.Get(ctx, "id:1", &got); err != nil {
		t.Errorf("unmatched entry should survive: %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper := newTestHelper(t)
	ctx := context.Background()

	t.Run("miss runs the fetch", func(t *testing.T) {
		calls := 0
		var got cachedValue
		err := helper.CacheOrExecute(ctx, "miss", &got, time.Minute, func() (interface{}, error) {
			calls++
			return cachedValue{Name: "fetched", Count: 1}, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute failed: %v", err)
		}
		if calls != 1 {
			t.Errorf("fetch calls = %d", calls)
		}
		if got.Name != "fetched" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("hit skips the fetch", func(t *testing.T) {
		if err := helper.Set(ctx, "hit", cachedValue{Name: "cached"}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		var got cachedValue
		err := helper.CacheOrExecute(ctx, "hit", &got, time.Minute, func() (interface{}, error) {
			t.Error("fetch should not run on a cache hit")
			return nil, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute failed: %v", err)
		}
		if got.Name != "cached" {
			t.Errorf("got %+v", got)
		}
	})
}
