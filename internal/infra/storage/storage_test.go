package storage

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/boddenberg/controletok-go/internal/port"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
)

// exerciseKVStore runs the shared contract against any KVStore.
func exerciseKVStore(t *testing.T, store port.KVStore) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "controletok_user", []byte(`{"email":"a@b.com"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := store.Get(ctx, "controletok_user")
	if err != nil || !ok {
		t.Fatalf("expected stored value, got ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, []byte(`{"email":"a@b.com"}`)) {
		t.Errorf("unexpected value %q", got)
	}

	// overwrite
	if err := store.Set(ctx, "controletok_user", []byte(`{"email":"c@d.com"}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = store.Get(ctx, "controletok_user")
	if string(got) != `{"email":"c@d.com"}` {
		t.Errorf("expected overwritten value, got %q", got)
	}

	// an empty list is a present value, not a missing one
	if err := store.Set(ctx, "controletok_transactions_a@b.com", []byte("[]")); err != nil {
		t.Fatalf("set empty list: %v", err)
	}
	got, ok, _ = store.Get(ctx, "controletok_transactions_a@b.com")
	if !ok || string(got) != "[]" {
		t.Errorf("expected stored empty list, got ok=%v value=%q", ok, got)
	}

	if err := store.Remove(ctx, "controletok_user"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "controletok_user"); ok {
		t.Error("expected key to be gone after Remove")
	}
	if err := store.Remove(ctx, "never-existed"); err != nil {
		t.Errorf("removing a missing key should not fail, got %v", err)
	}
}

func TestMemory_Contract(t *testing.T) {
	exerciseKVStore(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	value := []byte("abc")
	_ = m.Set(ctx, "k", value)
	value[0] = 'X'

	got, _, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("store shares caller's buffer: got %q", got)
	}
	got[1] = 'Y'
	again, _, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("store leaks internal buffer: got %q", again)
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 key, got %d", m.Len())
	}
}

func TestSQLite_Contract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "controletok.db")
	store, err := NewSQLite(path, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	exerciseKVStore(t, store)

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "controletok.db")

	first, err := NewSQLite(path, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Set(ctx, "controletok_theme_a@b.com", []byte(`"dark"`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	first.Close()

	// running migrations again must be a no-op
	second, err := NewSQLite(path, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, ok, err := second.Get(ctx, "controletok_theme_a@b.com")
	if err != nil || !ok || string(got) != `"dark"` {
		t.Errorf("expected persisted theme, got %q ok=%v err=%v", got, ok, err)
	}
}

func newMiniredisStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)

	store, err := NewRedis(RedisConfig{Addr: srv.Addr(), Prefix: "controletok-test:"}, zap.NewNop())
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, srv
}

func TestRedis_Contract(t *testing.T) {
	store, _ := newMiniredisStore(t)
	exerciseKVStore(t, store)

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestRedis_PrefixesKeys(t *testing.T) {
	store, srv := newMiniredisStore(t)

	if err := store.Set(context.Background(), "controletok_theme_a@b.com", []byte("dark")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := srv.Get("controletok-test:controletok_theme_a@b.com")
	if err != nil || got != "dark" {
		t.Errorf("expected prefixed key in redis, got %q (%v)", got, err)
	}
	if srv.Exists("controletok_theme_a@b.com") {
		t.Error("unprefixed key must not be written")
	}
}

func TestRedis_ServerDown(t *testing.T) {
	store, srv := newMiniredisStore(t)
	srv.Close()

	if _, _, err := store.Get(context.Background(), "controletok_user"); err == nil {
		t.Error("expected error once the server is gone")
	}
	if err := store.Ping(context.Background()); err == nil {
		t.Error("expected ping to fail once the server is gone")
	}
}

func TestNewRedis_Unreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	if _, err := NewRedis(RedisConfig{Addr: addr}, zap.NewNop()); err == nil {
		t.Error("expected NewRedis to fail its initial ping")
	}
}
