package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carewire/hospital-api/internal/handler"
	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/service/auth"
)

// ContextUser is the gin context key under which the authenticated user
// is stored for downstream handlers.
const ContextUser = "currentUser"

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and loads the current user from
// storage, so deleted accounts are rejected even with a valid token.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		user, err := m.authService.ResolveToken(c.Request.Context(), parts[1])
		if err != nil {
			handler.RespondError(c, err)
			return
		}

		c.Set(ContextUser, &model.AuthenticatedUser{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
			Name:  user.Name,
		})
		c.Next()
	}
}

// RequireRoles allows the request through only when the authenticated
// user's role is one of the given roles.
func (m *AuthMiddleware) RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
			c.Abort()
			return
		}

		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, handler.NewErrorResponse("insufficient role for this resource"))
		c.Abort()
	}
}

// CurrentUser returns the authenticated user attached by Authenticate.
func CurrentUser(c *gin.Context) (*model.AuthenticatedUser, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.AuthenticatedUser)
	return user, ok
}
