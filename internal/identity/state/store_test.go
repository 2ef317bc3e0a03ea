package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"soundvault/internal/identity/domain"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedisStore(rdb, 0), mr
}

func TestRedisStore_IssueAndConsume(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	st, err := s.Issue(ctx)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if st == "" {
		t.Fatal("Issue returned empty state")
	}
	if ttl := mr.TTL(keyPrefix + st); ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", ttl, DefaultTTL)
	}
	if err := s.Consume(ctx, st); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if err := s.Consume(ctx, st); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("second Consume: want ErrInvalidState, got %v", err)
	}
}

func TestRedisStore_UnknownState(t *testing.T) {
	s, _ := newTestStore(t)
	for _, st := range []string{"", "never-issued"} {
		if err := s.Consume(context.Background(), st); !errors.Is(err, domain.ErrInvalidState) {
			t.Errorf("Consume(%q): want ErrInvalidState, got %v", st, err)
		}
	}
}

func TestRedisStore_ExpiredState(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	st, err := s.Issue(ctx)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	mr.FastForward(DefaultTTL + time.Second)
	if err := s.Consume(ctx, st); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("Consume expired: want ErrInvalidState, got %v", err)
	}
}

func TestRedisStore_Unavailable(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()
	if _, err := s.Issue(context.Background()); err == nil {
		t.Error("Issue should fail when redis is down")
	}
	err := s.Consume(context.Background(), "x")
	if err == nil || errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("Consume with redis down: want transport error, got %v", err)
	}
}

func TestNopStore(t *testing.T) {
	var s Store = NopStore{}
	st, err := s.Issue(context.Background())
	if err != nil || st != "" {
		t.Errorf("Issue = %q, %v; want empty, nil", st, err)
	}
	if err := s.Consume(context.Background(), "anything"); err != nil {
		t.Errorf("Consume: %v", err)
	}
}
