package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/workmate-ai/assistant-be/types"
	"github.com/workmate-ai/assistant-be/utils"
)

// ContextKeyUser is the gin context key holding the authenticated claims.
const ContextKeyUser = "user"

// AuthMiddleware validates the bearer token issued by the external
// authentication service. No credential handling happens here.
func AuthMiddleware(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
			Status:  false,
			Message: "Authorization header is required",
		})
		return
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
			Status:  false,
			Message: "Authorization header format must be Bearer {token}",
		})
		return
	}

	claims, err := utils.ParseUserToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
			Status:  false,
			Message: "Invalid token",
		})
		return
	}

	c.Set(ContextKeyUser, claims)
	c.Next()
}
