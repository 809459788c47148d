package idempotency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"storeroom_backend/platform/httpkit"
	"storeroom_backend/platform/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func newRouter(store Store, status int, calls *atomic.Int32) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-User"); user != "" {
			c.Set(httpkit.ContextUserIDKey, user)
		}
		c.Next()
	})
	r.POST("/visits", Middleware(store, time.Hour, logger.New("development")), func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(status, gin.H{"call": n})
	})
	return r
}

func post(r *gin.Engine, user, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/visits", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(HeaderKey, key)
	}
	req.Header.Set("X-User", user)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRepeatedKeyReplaysFirstResponse(t *testing.T) {
	store, _ := newStore(t)
	var calls atomic.Int32
	r := newRouter(store, http.StatusCreated, &calls)

	first := post(r, "recA", "key-1")
	second := post(r, "recA", "key-1")

	if calls.Load() != 1 {
		t.Fatalf("handler ran %d times, want 1", calls.Load())
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Fatalf("replay = %d %s, want %d %s", second.Code, second.Body, first.Code, first.Body)
	}
	if second.Header().Get(HeaderReplayed) != "true" {
		t.Fatal("replayed response not marked")
	}
}

func TestKeysAreScopedPerUser(t *testing.T) {
	store, _ := newStore(t)
	var calls atomic.Int32
	r := newRouter(store, http.StatusCreated, &calls)

	post(r, "recA", "key-1")
	post(r, "recB", "key-1")
	post(r, "recA", "")
	post(r, "recA", "")

	if calls.Load() != 4 {
		t.Fatalf("handler ran %d times, want 4", calls.Load())
	}
}

func TestServerErrorsAreNotStored(t *testing.T) {
	store, _ := newStore(t)
	var calls atomic.Int32
	r := newRouter(store, http.StatusBadGateway, &calls)

	post(r, "recA", "key-1")
	post(r, "recA", "key-1")

	if calls.Load() != 2 {
		t.Fatalf("handler ran %d times, want 2", calls.Load())
	}
}

func TestInFlightKeyConflicts(t *testing.T) {
	store, _ := newStore(t)
	var calls atomic.Int32
	r := newRouter(store, http.StatusCreated, &calls)

	key := "recA:POST:/visits:key-1"
	if ok, err := store.Reserve(context.Background(), key, time.Minute); err != nil || !ok {
		t.Fatalf("Reserve = %v, %v", ok, err)
	}
	w := post(r, "recA", "key-1")
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if calls.Load() != 0 {
		t.Fatal("handler must not run while the key is held")
	}
}

func TestEntriesExpire(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, "k", Response{Status: 201, Body: []byte("{}")}, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	resp, err := store.Load(ctx, "k")
	if err != nil || resp != nil {
		t.Fatalf("Load after expiry = %v, %v", resp, err)
	}
}

func TestStoreOutageFailsOpen(t *testing.T) {
	store, mr := newStore(t)
	var calls atomic.Int32
	r := newRouter(store, http.StatusCreated, &calls)
	mr.Close()

	w := post(r, "recA", "key-1")
	if w.Code != http.StatusCreated || calls.Load() != 1 {
		t.Fatalf("status = %d calls = %d", w.Code, calls.Load())
	}
}
