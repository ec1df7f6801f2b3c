// Package idempotency replays the stored response of a money-moving request
// when a client retries it with the same Idempotency-Key.
package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/infrastructure/cache"
)

const (
	// HeaderIdempotencyKey is the HTTP header for idempotency key
	HeaderIdempotencyKey = "Idempotency-Key"

	// MaxBodySize bounds the body hashed for conflict detection.
	MaxBodySize = 1 << 20

	// DefaultTTL is how long a stored response is replayed.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "idempotency:"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_\-:.]{8,128}$`)

// Store is the subset of the cache the middleware needs.
type Store interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}

// Record is a stored response.
type Record struct {
	RequestHash string `json:"request_hash"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
}

// responseWriter wraps gin.ResponseWriter to capture response
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ValidateKey checks the header value shape.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("key must be 8-128 characters of letters, digits, '-', '_', ':' or '.'")
	}
	return nil
}

// HashRequest fingerprints method, path and body.
func HashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Middleware replays stored responses for repeated keys. The key is scoped to
// the authenticated user when one is present. Requests without the header pass
// through untouched, and storage failures fail open.
func Middleware(store Store, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if err := ValidateKey(key); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":       "INVALID_IDEMPOTENCY_KEY",
				"message":    err.Error(),
				"request_id": c.GetString("request_id"),
			})
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxBodySize))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":       "INVALID_REQUEST",
				"message":    "Failed to read request body",
				"request_id": c.GetString("request_id"),
			})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		storeKey := scopedKey(c, key)
		hash := HashRequest(c.Request.Method, c.Request.URL.Path, body)

		var existing Record
		err = store.Get(c.Request.Context(), storeKey, &existing)
		switch {
		case err == nil:
			if existing.RequestHash != hash {
				logger.Warn("Idempotency key reused with a different request",
					zap.String("idempotency_key", key),
					zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"code":       "IDEMPOTENCY_CONFLICT",
					"message":    "Idempotency-Key was already used for a different request",
					"request_id": c.GetString("request_id"),
				})
				return
			}
			logger.Debug("Replaying stored response",
				zap.String("idempotency_key", key),
				zap.Int("status", existing.Status))
			c.Header("Idempotent-Replayed", "true")
			c.Data(existing.Status, "application/json; charset=utf-8", existing.Body)
			c.Abort()
			return
		case !errors.Is(err, cache.ErrCacheMiss):
			logger.Error("Failed to check idempotency key",
				zap.String("idempotency_key", key),
				zap.Error(err))
			c.Next()
			return
		}

		writer := &responseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		// 5xx responses stay retryable.
		status := writer.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		record := Record{
			RequestHash: hash,
			Method:      c.Request.Method,
			Path:        c.Request.URL.Path,
			Status:      status,
			Body:        writer.body.Bytes(),
		}
		if err := store.Set(c.Request.Context(), storeKey, record, ttl); err != nil {
			logger.Error("Failed to store idempotency key",
				zap.String("idempotency_key", key),
				zap.Error(err))
		}
	}
}

func scopedKey(c *gin.Context, key string) string {
	if userID, ok := c.Get("user_id"); ok {
		return fmt.Sprintf("%s%v:%s", keyPrefix, userID, key)
	}
	return keyPrefix + key
}
