package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestNewCacheService(t *testing.T) {
	svc, err := NewCacheService(DefaultConfig())
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	ctx := context.Background()
	var calls int32
	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "East Zone", nil
	}
	for i := 0; i < 2; i++ {
		v, err := svc.GetOrFetch(ctx, "zones::detail::1#1", fetch)
		if err != nil {
			t.Fatalf("expected no error but got: %v", err)
		}
		if v != "East Zone" {
			t.Errorf("expected East Zone, got %v", v)
		}
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected 1 fetch, got %d", calls)
	}

	boom := errors.New("boom")
	if _, err := svc.GetOrFetch(ctx, "zones::list#2", func(ctx context.Context) (any, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestNewCacheService_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 0

	svc, err := NewCacheService(cfg)
	if !goerrors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if svc != nil {
		t.Errorf("expected nil service, got %v", svc)
	}
}
