package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/asanchezf/recetario-api/pkg/helpers"
	"github.com/asanchezf/recetario-api/pkg/response"
)

// CtxUserIDKey is the gin context key every handler reads the resolved
// caller identity from.
const CtxUserIDKey = "userID"

const tokenCacheTTL = 5 * time.Minute

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// Auth short-circuits requests without a valid bearer token and sets the
// resolved user id in the gin context. A request that fails here never
// reaches a use case. Verified tokens are cached in Redis for a short TTL
// when a client is available; cache errors fail open to the verifier.
func Auth(verifier TokenVerifier, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			response.AbortError(c, http.StatusServiceUnavailable, "auth not configured in this environment", nil)
			return
		}
		token := bearerToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "access denied: no token provided", nil)
			return
		}

		ctx := c.Request.Context()
		cacheKey := tokenCacheKey(token)
		if rdb != nil {
			if uid, found, err := helpers.RedisGetString(ctx, rdb, cacheKey); err == nil && found && uid != "" {
				c.Set(CtxUserIDKey, uid)
				c.Next()
				return
			}
		}

		uid, err := verifier.VerifyToken(ctx, token)
		if err != nil || uid == "" {
			response.AbortError(c, http.StatusUnauthorized, "invalid token", nil)
			return
		}
		if rdb != nil {
			_ = helpers.RedisSetString(ctx, rdb, cacheKey, uid, tokenCacheTTL)
		}
		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// tokenCacheKey hashes the token so raw credentials never land in Redis.
func tokenCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auth:token:" + hex.EncodeToString(sum[:])
}
