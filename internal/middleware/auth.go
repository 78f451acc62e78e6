package middleware

import (
	"net/http"
	"strings"

	"github.com/go-authgate/mailbridge/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ContextUserID is the gin context key holding the authenticated user id
const ContextUserID = "user_id"

// RequireUser verifies the upstream session JWT (HS256) carried as a Bearer token
// and exposes its subject as the calling user's id
func RequireUser(secret string) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "mailbridge", "Bearer token required")
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
			return key, nil
		})
		if err != nil || claims.Subject == "" {
			abortUnauthorized(c, "mailbridge", "Invalid or expired session token")
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Request = c.Request.WithContext(util.SetUserIDContext(c.Request.Context(), claims.Subject))
		c.Next()
	}
}

// GetUserID returns the user id set by RequireUser
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, realm, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="`+realm+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":             "unauthorized",
		"error_description": message,
	})
}
