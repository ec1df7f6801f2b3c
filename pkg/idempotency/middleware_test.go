package idempotency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/infrastructure/cache"
)

type brokenStore struct{}

func (brokenStore) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenStore) Get(context.Context, string, interface{}) error {
	return errors.New("connection refused")
}

func newRouter(store Store, status int, calls *int32) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/deposits", Middleware(store, time.Minute, zap.NewNop()), func(c *gin.Context) {
		n := atomic.AddInt32(calls, 1)
		c.JSON(status, gin.H{"call": n})
	})
	return r
}

func post(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/deposits", strings.NewReader(body))
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("a1b2c3d4"))
	assert.NoError(t, ValidateKey("order:2024-05-01.001"))
	assert.Error(t, ValidateKey("short"))
	assert.Error(t, ValidateKey("has space 123"))
	assert.Error(t, ValidateKey(strings.Repeat("k", 129)))
}

func TestHashRequest(t *testing.T) {
	base := HashRequest(http.MethodPost, "/deposits", []byte(`{"amount":"1"}`))
	assert.Equal(t, base, HashRequest(http.MethodPost, "/deposits", []byte(`{"amount":"1"}`)))
	assert.NotEqual(t, base, HashRequest(http.MethodPost, "/withdrawals", []byte(`{"amount":"1"}`)))
	assert.NotEqual(t, base, HashRequest(http.MethodPost, "/deposits", []byte(`{"amount":"2"}`)))
}

func TestMiddleware_Replay(t *testing.T) {
	var calls int32
	r := newRouter(cache.NewMemoryCache(), http.StatusCreated, &calls)

	first := post(r, "key-00001", `{"amount":"1"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := post(r, "key-00001", `{"amount":"1"}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, `{"call":1}`, second.Body.String())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	w := post(r, "key-00001", `{"amount":"9"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	post(r, "", `{"amount":"1"}`)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestMiddleware_ServerErrorsNotStored(t *testing.T) {
	var calls int32
	r := newRouter(cache.NewMemoryCache(), http.StatusServiceUnavailable, &calls)

	post(r, "key-00002", `{}`)
	post(r, "key-00002", `{}`)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestMiddleware_FailsOpen(t *testing.T) {
	var calls int32
	r := newRouter(brokenStore{}, http.StatusCreated, &calls)

	assert.Equal(t, http.StatusCreated, post(r, "key-00003", `{}`).Code)
	assert.Equal(t, http.StatusCreated, post(r, "key-00003", `{}`).Code)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestMiddleware_SameKeyOtherResource(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var calls int32
	r := gin.New()
	r.POST("/goals/:id/deposit", Middleware(cache.NewMemoryCache(), time.Minute, zap.NewNop()), func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		c.JSON(http.StatusOK, gin.H{"goal": c.Param("id")})
	})

	send := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"amount":"5"}`))
		req.Header.Set(HeaderIdempotencyKey, "goal-dep-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, send("/goals/a/deposit").Code)
	w := send("/goals/b/deposit")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
