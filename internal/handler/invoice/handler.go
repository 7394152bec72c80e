package invoice

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewire/hospital-api/internal/handler"
	"github.com/carewire/hospital-api/internal/middleware"
	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/service/invoice"
)

type Handler struct {
	service *invoice.Service
}

func NewHandler(service *invoice.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMW *middleware.AuthMiddleware) {
	staff := authMW.RequireRoles(model.RoleAdmin, model.RoleReceptionist)
	r.POST("", staff, h.IssueInvoice)
	r.GET("/all", staff, h.ListInvoices)
	r.GET("/my-invoices", authMW.RequireRoles(model.RolePatient), h.MyInvoices)
	r.PUT("/:id", staff, h.UpdateInvoiceStatus)
}

func (h *Handler) IssueInvoice(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	var req model.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	inv, err := h.service.Issue(c.Request.Context(), caller, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(inv))
}

func (h *Handler) ListInvoices(c *gin.Context) {
	invoices, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(invoices))
}

// MyInvoices returns only the caller's invoices, never another patient's.
func (h *Handler) MyInvoices(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	invoices, err := h.service.ListForPatient(c.Request.Context(), caller.ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(invoices))
}

func (h *Handler) UpdateInvoiceStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid invoice ID"))
		return
	}

	var req model.UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	inv, err := h.service.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(inv))
}
