// Package jwtmw はJWTの発行と検証用Ginミドルウェアを提供します。
package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ContextUserID is the gin context key holding the authenticated user id (uint).
const ContextUserID = "userID"

// QueryTokenParam is the query parameter accepted when AllowQueryToken is set.
const QueryTokenParam = "access_token"

type options struct {
	allowQuery bool
}

// Option configures AuthRequired.
type Option func(*options)

// AllowQueryToken lets the token arrive as ?access_token=... when no
// Authorization header is present. Browser EventSource cannot set headers.
func AllowQueryToken() Option {
	return func(o *options) { o.allowQuery = true }
}

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
func AuthRequired(secret string, opts ...Option) gin.HandlerFunc {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		// 1. トークン取得
		tokenStr, ok := bearerToken(c, o.allowQuery)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		// 2. シークレット未設定はサーバー設定ミス
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		// 3. 署名検証（HMACのみ許可）
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		// 4. sub クレームからユーザーIDを取り出す（JSONの数値はfloat64）
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		sub, ok := claims["sub"].(float64)
		if !ok || sub < 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(ContextUserID, uint(sub))

		c.Next()
	}
}

// UserID returns the authenticated user id set by AuthRequired.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func bearerToken(c *gin.Context, allowQuery bool) (string, bool) {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		tok := strings.TrimPrefix(auth, "Bearer ")
		return tok, tok != ""
	}
	if auth == "" && allowQuery {
		if tok := c.Query(QueryTokenParam); tok != "" {
			return tok, true
		}
	}
	return "", false
}
