package offline

import (
	"context"
	"net/http"
	"testing"

	redisc "github.com/Maulik-008/clock-software-sub000/internal/pkg/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redisc.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return NewStore(rc, "ct-cache")
}

func TestStorePutGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := Entry{Status: 200, ContentType: "text/html", Body: []byte("<html>shell</html>")}
	if err := store.Put(ctx, "static-v1", http.MethodGet, "/index.html", entry); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := store.Get(ctx, "static-v1", http.MethodGet, "/index.html")
	if !ok {
		t.Fatalf("Get: expected hit")
	}
	if got.Status != 200 || got.ContentType != "text/html" || string(got.Body) != "<html>shell</html>" {
		t.Fatalf("Get: unexpected entry: %+v", got)
	}

	if _, ok := store.Get(ctx, "static-v1", http.MethodGet, "/missing"); ok {
		t.Fatalf("Get: expected miss for absent key")
	}
	if _, ok := store.Get(ctx, "static-v2", http.MethodGet, "/index.html"); ok {
		t.Fatalf("Get: expected miss in other generation")
	}
}

func TestStoreLookupOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "runtime-v1", http.MethodGet, "/page", Entry{Status: 200, Body: []byte("runtime")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, "static-v1", http.MethodGet, "/page", Entry{Status: 200, Body: []byte("static")}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := store.Lookup(ctx, []string{"static-v1", "runtime-v1"}, http.MethodGet, "/page")
	if !ok || string(got.Body) != "static" {
		t.Fatalf("Lookup: expected static entry first, got %+v (ok=%v)", got, ok)
	}
}

func TestStoreDropGeneration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, gen := range []string{"static-v1", "static-v2"} {
		if err := store.Register(ctx, gen); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if err := store.Put(ctx, gen, http.MethodGet, "/a.js", Entry{Status: 200, Body: []byte(gen)}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	deleted, err := store.DropGeneration(ctx, "static-v1")
	if err != nil {
		t.Fatalf("DropGeneration: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("DropGeneration: expected 1 deleted entry, got %d", deleted)
	}

	if _, ok := store.Get(ctx, "static-v1", http.MethodGet, "/a.js"); ok {
		t.Fatalf("dropped generation still retrievable")
	}
	if _, ok := store.Get(ctx, "static-v2", http.MethodGet, "/a.js"); !ok {
		t.Fatalf("surviving generation lost its entry")
	}

	gens, err := store.Generations(ctx)
	if err != nil {
		t.Fatalf("Generations: %v", err)
	}
	if len(gens) != 1 || gens[0] != "static-v2" {
		t.Fatalf("registry not updated: %v", gens)
	}
}

func TestStorePurge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Register(ctx, "runtime-v1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := store.Put(ctx, "runtime-v1", http.MethodGet, "/x", Entry{Status: 200, Body: []byte("x")}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err := store.Purge(ctx); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if _, ok := store.Get(ctx, "runtime-v1", http.MethodGet, "/x"); ok {
		t.Fatalf("entry survived purge")
	}
	gens, err := store.Generations(ctx)
	if err != nil {
		t.Fatalf("Generations: %v", err)
	}
	if len(gens) != 0 {
		t.Fatalf("registry survived purge: %v", gens)
	}
}
