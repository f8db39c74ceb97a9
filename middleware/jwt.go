package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// TokenLifetime is how long an admin token stays valid.
const TokenLifetime = 30 * 24 * time.Hour

// Claims extends jwt.RegisteredClaims with the admin identity.
type Claims struct {
	Username string `json:"username"`
	UserHash string `json:"userHash"`
	jwt.RegisteredClaims
}

// UserHashFromUsername returns a deterministic HMAC hash for the given username and key.
func UserHashFromUsername(username string, key []byte) string {
	normalized := strings.ToLower(strings.TrimSpace(username))
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(normalized))
	return hex.EncodeToString(mac.Sum(nil))
}

// IssueToken signs an HS256 admin token valid from now.
func IssueToken(username string, key []byte, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(TokenLifetime)
	claims := &Claims{
		Username: username,
		UserHash: UserHashFromUsername(username, key),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	return signed, expiresAt, err
}

// JWT returns an Echo middleware that validates the Authorization header token
// using the provided signing key. A "Bearer " prefix is optional.
func JWT(key []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			claims := &Claims{}
			tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil {
				if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			if !tkn.Valid || !hmac.Equal([]byte(claims.UserHash), []byte(UserHashFromUsername(claims.Username, key))) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("username", claims.Username)
			c.Set("user_hash", claims.UserHash)
			return next(c)
		}
	}
}
