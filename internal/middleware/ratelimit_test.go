package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skillswap-backend/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedHook answers redis commands in-process so the limiter can be
// driven through failure modes no live server produces on demand.
type scriptedHook struct {
	incrVal   int64
	incrErr   error
	expireErr error
	deleted   *bool
}

func (h scriptedHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, nil
	}
}

func (h scriptedHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		switch cmd.Name() {
		case "incr":
			if h.incrErr != nil {
				return h.incrErr
			}
			cmd.(*redis.IntCmd).SetVal(h.incrVal)
		case "expire":
			if h.expireErr != nil {
				return h.expireErr
			}
			cmd.(*redis.BoolCmd).SetVal(true)
		case "del":
			if h.deleted != nil {
				*h.deleted = true
			}
			cmd.(*redis.IntCmd).SetVal(1)
		}
		return nil
	}
}

func (h scriptedHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		return nil
	}
}

func scriptedClient(hook scriptedHook) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	client.AddHook(hook)
	return client
}

func limitedRequest(t *testing.T, client *redis.Client) *httptest.ResponseRecorder {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(client, 10, time.Minute)(next)

	token, err := services.NewAuthService(nil, "test-secret").GenerateJWT("member-1")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	authed := AuthMiddleware(services.NewAuthService(nil, "test-secret"))(handler)
	w := httptest.NewRecorder()
	authed.ServeHTTP(w, req)
	return w
}

func TestRateLimitNilClientPasses(t *testing.T) {
	w := limitedRequest(t, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitUnderLimitPasses(t *testing.T) {
	w := limitedRequest(t, scriptedClient(scriptedHook{incrVal: 1}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitOverLimitBlocks(t *testing.T) {
	w := limitedRequest(t, scriptedClient(scriptedHook{incrVal: 11}))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitIncrFailureFailsOpen(t *testing.T) {
	w := limitedRequest(t, scriptedClient(scriptedHook{incrErr: errors.New("redis down")}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitExpireFailureDropsCounter(t *testing.T) {
	deleted := false
	hook := scriptedHook{incrVal: 1, expireErr: errors.New("redis down"), deleted: &deleted}

	w := limitedRequest(t, scriptedClient(hook))

	// A counter that would never expire is dropped instead of
	// throttling the member forever
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, deleted)
}
