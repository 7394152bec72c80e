package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/carewire/hospital-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes an error response using the status code carried by
// the application error, falling back to 500 for unknown error values.
func RespondError(c *gin.Context, err error) {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	c.Error(err)
	c.AbortWithStatusJSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
}
