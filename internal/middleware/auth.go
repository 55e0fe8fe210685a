// Package middleware holds the gin middleware shared by all routes.
package middleware

import (
	"net/http"
	"strings"

	"ai-content-consultant/internal/model"
	"ai-content-consultant/internal/repository"
	"ai-content-consultant/internal/service"
	"ai-content-consultant/pkg/log"
	"ai-content-consultant/pkg/token"

	"github.com/gin-gonic/gin"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// AuthMiddleware requires a valid, unrevoked access token in the
// Authorization header and stores the account in the gin context.
func AuthMiddleware(jwtManager *token.JWTManager, userService service.UserService, blacklist repository.TokenBlacklistRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing or malformed Authorization header")
			return
		}

		claims, err := jwtManager.VerifyKind(tokenString, token.KindAccess)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		if blacklist != nil {
			revoked, err := blacklist.IsRevoked(c.Request.Context(), tokenString)
			if err != nil {
				log.Errorf("token blacklist lookup failed: %v", err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"code": http.StatusServiceUnavailable, "message": "session store unavailable"})
				return
			}
			if revoked {
				abortUnauthorized(c, "token has been revoked")
				return
			}
		}

		user, err := userService.GetProfile(claims.Username)
		if err != nil {
			abortUnauthorized(c, "user no longer exists")
			return
		}

		c.Set(userKey, user)
		c.Set(tokenKey, tokenString)
		c.Next()
	}
}

// CurrentUser returns the account stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

// CurrentToken returns the raw access token stored by AuthMiddleware.
func CurrentToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	t := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return t, t != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": message})
}
