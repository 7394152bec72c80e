package report

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewire/hospital-api/internal/handler"
	"github.com/carewire/hospital-api/internal/middleware"
	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/service/report"
)

type Handler struct {
	service *report.Service
}

func NewHandler(service *report.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMW *middleware.AuthMiddleware) {
	doctor := authMW.RequireRoles(model.RoleDoctor)
	r.POST("", doctor, h.FileReport)
	r.GET("", authMW.RequireRoles(model.RoleAdmin, model.RoleDoctor, model.RoleReceptionist), h.ListReports)
	r.GET("/my-reports", authMW.RequireRoles(model.RolePatient), h.MyReports)
	r.GET("/:id", doctor, h.GetReport)
	r.PUT("/:id", doctor, h.UpdateReport)
}

func (h *Handler) FileReport(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	var req model.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	rep, err := h.service.File(c.Request.Context(), caller, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rep))
}

func (h *Handler) ListReports(c *gin.Context) {
	reports, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(reports))
}

func (h *Handler) MyReports(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	reports, err := h.service.ListForPatient(c.Request.Context(), caller.ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(reports))
}

func (h *Handler) GetReport(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	rep, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rep))
}

func (h *Handler) UpdateReport(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	var req model.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	rep, err := h.service.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rep))
}
