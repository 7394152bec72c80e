package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carewire/hospital-api/internal/handler"
	"github.com/carewire/hospital-api/internal/middleware"
	"github.com/carewire/hospital-api/internal/service/user"
)

type Handler struct {
	service *user.Service
}

func NewHandler(service *user.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.ListUsers)
	r.GET("/me", h.Me)
}

// ListUsers returns every non-admin account. Administrator accounts are
// never included in the listing.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListNonAdmin(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}

func (h *Handler) Me(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	u, err := h.service.Get(c.Request.Context(), caller.ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(u.Public()))
}
