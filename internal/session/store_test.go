package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"orion-backend/internal/domain"
)

func testSession() Session {
	return Session{
		ID:    "u1",
		Email: "bob@co.com",
		Name:  "bob",
		Role:  domain.RoleUser,
	}
}

func TestFileStore_SaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	if err := store.Save(testSession()); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("expected session present")
	}
	if got != testSession() {
		t.Fatalf("got %+v, want %+v", got, testSession())
	}
}

func TestFileStore_LoadMissingIsAbsent(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatal("expected absent session")
	}
}

func TestFileStore_CorruptPayloadIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"id":"u1","email":`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewFileStore(path)

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("corrupt payload must not error, got %v", err)
	}
	if ok {
		t.Fatal("corrupt payload must read as absent")
	}
}

func TestFileStore_UnknownRoleIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	payload := []byte(`{"id":"u1","email":"a@b.com","name":"a","role":"superuser"}`)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewFileStore(path)

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatal("unknown role must read as absent")
	}
}

func TestFileStore_ClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	if err := store.Save(testSession()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("first clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear must not error, got %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatal("expected absent after clear")
	}
}

func TestRedisStore_Roundtrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "test:session")

	if _, ok, err := store.Load(); err != nil || ok {
		t.Fatalf("fresh store: ok=%v err=%v", ok, err)
	}

	if err := store.Save(testSession()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got != testSession() {
		t.Fatalf("got %+v, want %+v", got, testSession())
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatal("expected absent after clear")
	}
}

func TestRedisStore_CorruptValueIsAbsent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "test:session")

	if err := mr.Set("test:session", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("corrupt value must not error, got %v", err)
	}
	if ok {
		t.Fatal("corrupt value must read as absent")
	}
}
