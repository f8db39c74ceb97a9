package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	cachePrefix  = "juniortour:resp"
	maxCacheBody = 2 << 20
)

// captureWriter copies the response body while forwarding it to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.buf.Len() <= maxCacheBody {
		cw.buf.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

// cacheKey groups keys by tournament and hashes the route and query so
// keys stay short.
func cacheKey(c echo.Context) string {
	sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%s:%x", cachePrefix, tournamentScope(c.QueryParam("tournamentId")), sum[:])
}

func tournamentScope(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return "-"
	}
	return id
}

func tournamentPattern(id string) string {
	return fmt.Sprintf("%s:%s:*", cachePrefix, tournamentScope(id))
}

// CacheInvalidator drops the cached responses of a tournament after a
// write. A nil client makes it a no-op.
type CacheInvalidator struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewCacheInvalidator(rdb *redis.Client, logger *zap.Logger) *CacheInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheInvalidator{rdb: rdb, logger: logger}
}

// Invalidate deletes every cached response keyed to tournamentID.
// Failures are logged; entries then expire with their ttl.
func (ci *CacheInvalidator) Invalidate(ctx context.Context, tournamentID string) {
	if ci == nil || ci.rdb == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	pattern := tournamentPattern(tournamentID)

	var keys []string
	iter := ci.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		ci.logger.Warn("response cache scan failed", zap.String("pattern", pattern), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := ci.rdb.Del(ctx, keys...).Err(); err != nil {
		ci.logger.Warn("response cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// encodePayload packs [4 bytes status][4 bytes header length][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdr, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdr)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
	copy(out[8:], hdr)
	copy(out[8+len(hdr):], body)
	return out, nil
}

func decodePayload(bs []byte) (int, http.Header, []byte, bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status := int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	hdr := make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, hdr, bs[8+hlen:], true
}

// ResponseCache serves successful GET responses from Redis for ttl. A nil
// client or non-positive ttl turns it into a pass-through. Redis errors
// fall through to the handler.
func ResponseCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) echo.MiddlewareFunc {
	if rdb == nil || ttl <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(c)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, err := c.Response().Write(body)
					return err
				}
			} else if err != redis.Nil {
				logger.Warn("response cache read failed", zap.String("key", key), zap.Error(err))
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.buf.Len() > maxCacheBody {
				return nil
			}

			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := rdb.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
				logger.Warn("response cache write failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}
