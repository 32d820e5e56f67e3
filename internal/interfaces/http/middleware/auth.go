package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/zlpay/internal/infrastructure/auth"
	"github.com/orris-inc/zlpay/internal/shared/constants"
	"github.com/orris-inc/zlpay/internal/shared/logger"
	"github.com/orris-inc/zlpay/internal/shared/utils"
)

// TokenVerifier checks an admin bearer token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AdminAuthMiddleware struct {
	verifier TokenVerifier
	logger   logger.Interface
}

func NewAdminAuthMiddleware(verifier TokenVerifier, logger logger.Interface) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAdmin rejects requests without a valid admin bearer token and
// stores the token subject under constants.ContextKeyAdmin.
func (m *AdminAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.verifier.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify admin token", "error", err, "client_ip", c.ClientIP())
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyAdmin, claims.Subject)

		c.Next()
	}
}
