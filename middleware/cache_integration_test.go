//go:build integration

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	addr, err := ctr.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestResponseCacheInvalidatedPerTournament(t *testing.T) {
	rdb := setupRedis(t)
	e := echo.New()
	calls := 0
	e.GET("/api/leaderboard", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]int{"calls": calls})
	}, ResponseCache(rdb, time.Minute, zap.NewNop()))

	get := func(tid string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/leaderboard?tournamentId=%s&round=1", tid), nil))
		return rec
	}
	const a, b = "11111111-1111-1111-1111-111111111111", "22222222-2222-2222-2222-222222222222"

	assert.Equal(t, "MISS", get(a).Header().Get("X-Cache"))
	assert.Equal(t, "MISS", get(b).Header().Get("X-Cache"))
	assert.Equal(t, "HIT", get(a).Header().Get("X-Cache"))

	NewCacheInvalidator(rdb, zap.NewNop()).Invalidate(context.Background(), a)

	rec := get(a)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"calls":3}`, rec.Body.String())
	assert.Equal(t, "HIT", get(b).Header().Get("X-Cache"))
}
