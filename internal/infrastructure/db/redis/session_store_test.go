package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client), mr
}

func TestSessionStore_ActivateReplacesPrevious(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Activate(ctx, "u1", "t1", time.Hour); err != nil {
		t.Fatalf("activate t1: %v", err)
	}
	if err := store.Activate(ctx, "u1", "t2", time.Hour); err != nil {
		t.Fatalf("activate t2: %v", err)
	}

	if ok, err := store.IsActive(ctx, "u1", "t1"); err != nil || ok {
		t.Fatalf("expected t1 inactive, got ok=%v err=%v", ok, err)
	}
	if ok, err := store.IsActive(ctx, "u1", "t2"); err != nil || !ok {
		t.Fatalf("expected t2 active, got ok=%v err=%v", ok, err)
	}
}

func TestSessionStore_Expires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Activate(ctx, "u1", "t1", time.Minute); err != nil {
		t.Fatalf("activate: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if ok, err := store.IsActive(ctx, "u1", "t1"); err != nil || ok {
		t.Fatalf("expected expired session inactive, got ok=%v err=%v", ok, err)
	}
}

func TestSessionStore_Revoke(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_ = store.Activate(ctx, "u1", "t1", time.Hour)
	if err := store.Revoke(ctx, "u1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := store.Revoke(ctx, "u1"); err != nil {
		t.Fatalf("second revoke should not fail: %v", err)
	}
	if ok, _ := store.IsActive(ctx, "u1", "t1"); ok {
		t.Fatalf("expected revoked session inactive")
	}
}

func TestSessionStore_UnknownUser(t *testing.T) {
	store, _ := newTestStore(t)

	ok, err := store.IsActive(context.Background(), "nobody", "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected unknown user inactive")
	}
}

func TestSessionStore_BackendDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	if _, err := store.IsActive(context.Background(), "u1", "t1"); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}
