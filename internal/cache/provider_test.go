package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryProvider(t *testing.T) {
	provider := NewMemoryProvider()
	ctx := context.Background()

	if _, err := provider.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get on empty provider = %v, want ErrCacheMiss", err)
	}

	if err := provider.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := provider.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get = %q, %v; want v, nil", got, err)
	}

	if err := provider.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := provider.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Del = %v, want ErrCacheMiss", err)
	}

	if err := provider.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNoopProviderNeverStores(t *testing.T) {
	provider := NoopProvider{}
	ctx := context.Background()

	if err := provider.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := provider.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get = %v, want ErrCacheMiss", err)
	}
	if err := provider.Del(ctx, "k"); err != nil {
		t.Errorf("Del: %v", err)
	}
	if err := provider.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
