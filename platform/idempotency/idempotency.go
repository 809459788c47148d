// Package idempotency replays the first response for requests that carry the
// same Idempotency-Key header, so a double submit books one visit.
package idempotency

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"storeroom_backend/platform/httpkit"
	"storeroom_backend/platform/logger"
)

const (
	// HeaderKey is the request header clients set.
	HeaderKey = "Idempotency-Key"
	// HeaderReplayed marks a response served from the store.
	HeaderReplayed = "Idempotent-Replayed"

	maxKeyLength = 255
	keyPrefix    = "idem:"
)

// ErrInFlight means another request with the same key is still running.
var ErrInFlight = errors.New("request with this idempotency key is still in progress")

// Response is a stored handler result.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

type entry struct {
	Done     bool      `json:"done"`
	Response *Response `json:"response,omitempty"`
}

// Store keeps idempotency entries.
type Store interface {
	// Reserve claims key. It returns false when the key is already claimed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Load returns the stored response, or nil while the first request runs.
	Load(ctx context.Context, key string) (*Response, error)
	Save(ctx context.Context, key string, resp Response, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// RedisStore keeps entries in Redis with a TTL.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a store over client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient connects to the Redis instance at url.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

func (s *RedisStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(entry{})
	if err != nil {
		return false, err
	}
	return s.client.SetNX(ctx, keyPrefix+key, data, ttl).Result()
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Response, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !e.Done {
		return nil, nil
	}
	return e.Response, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, resp Response, ttl time.Duration) error {
	data, err := json.Marshal(entry{Done: true, Response: &resp})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+key, data, ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

// Middleware replays stored responses for repeated keys. Keys are scoped to
// the caller and route. Server errors are not stored so the client can retry.
// When the store is unreachable requests run without protection.
func Middleware(store Store, ttl time.Duration, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderKey))
		if raw == "" {
			c.Next()
			return
		}
		if len(raw) > maxKeyLength {
			httpkit.Error(c, http.StatusBadRequest, "idempotency key too long", nil)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		key := scopedKey(c, raw)
		reserved, err := store.Reserve(ctx, key, ttl)
		if err != nil {
			log.Warn("idempotency store unavailable", "error", err, "path", c.FullPath())
			c.Next()
			return
		}

		if !reserved {
			replay(c, store, key, log)
			return
		}

		rec := &recorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		saveCtx := context.WithoutCancel(ctx)
		status := rec.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Release(saveCtx, key); err != nil {
				log.Warn("failed to release idempotency key", "error", err)
			}
			return
		}
		resp := Response{Status: status, ContentType: rec.Header().Get("Content-Type"), Body: rec.body.Bytes()}
		if err := store.Save(saveCtx, key, resp, ttl); err != nil {
			log.Warn("failed to store idempotent response", "error", err)
		}
	}
}

func replay(c *gin.Context, store Store, key string, log *logger.Logger) {
	resp, err := store.Load(c.Request.Context(), key)
	if err != nil {
		log.Warn("idempotency lookup failed", "error", err)
		httpkit.Error(c, http.StatusServiceUnavailable, "idempotency store unavailable", nil)
		c.Abort()
		return
	}
	if resp == nil {
		httpkit.Error(c, http.StatusConflict, ErrInFlight.Error(), nil)
		c.Abort()
		return
	}
	c.Header(HeaderReplayed, "true")
	c.Data(resp.Status, resp.ContentType, resp.Body)
	c.Abort()
}

func scopedKey(c *gin.Context, raw string) string {
	user := "anonymous"
	if identity := httpkit.GetIdentity(c); identity != nil && identity.UserID() != "" {
		user = identity.UserID()
	}
	return user + ":" + c.Request.Method + ":" + c.FullPath() + ":" + raw
}

type recorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}
