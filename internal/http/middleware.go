package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenVerifier resolves a bearer token to an account id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// contextAccountKey is where the auth gate stores the resolved account id.
// Handlers must read it through accountID; it is the only source of owner
// identity for task operations.
const contextAccountKey = "auth.accountID"

// requireAuth extracts and verifies the bearer token before any business
// logic runs. All failure modes (absent header, malformed header, forged or
// expired token) produce the same response; the cause is not leaked.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		const prefix = "Bearer "
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, prefix) {
			unauthorized(c)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
		if token == "" {
			unauthorized(c)
			return
		}

		accountID, err := h.tokens.Verify(token)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(contextAccountKey, accountID)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
}

func accountID(c *gin.Context) string {
	v, _ := c.Get(contextAccountKey)
	id, _ := v.(string)
	return id
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
