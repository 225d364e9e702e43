package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/schemabase/backend/internal/application/services"
	"github.com/schemabase/backend/pkg/constants"
)

// RequireAuth is a middleware that validates JWT tokens
func RequireAuth(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			unauthorized(c, "No authorization token provided")
			return
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := authSvc.ValidateSession(parts[1])
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		c.Set(constants.ContextKeyUser, claims.Session)
		c.Set(constants.ContextKeyToken, parts[1])
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		constants.ResponseError:   "Unauthorized",
		constants.ResponseMessage: message,
		"code":                    "UNAUTHORIZED",
		"data":                    nil,
	})
	c.Abort()
}
