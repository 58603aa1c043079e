package cache

import (
	"context"
	"testing"
)

func TestPingDisabledWithoutClient(t *testing.T) {
	if client != nil {
		t.Skip("redis client connected")
	}
	if err := Ping(context.Background()); err != ErrDisabled {
		t.Errorf("Ping = %v, want ErrDisabled", err)
	}
}

func TestHelpersDegradeWithoutClient(t *testing.T) {
	if client != nil {
		t.Skip("redis client connected")
	}
	ctx := context.Background()

	if _, ok := GetCached(ctx, MaterialsListKey); ok {
		t.Error("GetCached reported a hit with no client")
	}
	if _, ok := GetCachedAuth(ctx, "a@b.c", "pw"); ok {
		t.Error("GetCachedAuth reported a hit with no client")
	}
	// Writes and invalidations must be silent no-ops.
	SetCached(ctx, MaterialsListKey, []byte("x"), 0)
	CacheAuth(ctx, "a@b.c", "pw", 1)
	InvalidateKeys(ctx, MaterialsListKey, CustomersListKey)
}
