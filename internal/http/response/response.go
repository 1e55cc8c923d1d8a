package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/codementor-backend/internal/platform/apierr"
)

// ErrorBody is the error contract shared by every endpoint.
type ErrorBody struct {
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Code    string              `json:"code,omitempty"`
	Details []apierr.FieldError `json:"details,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondAPIError(c, ae)
		return
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: msg, Code: code})
}

func RespondAPIError(c *gin.Context, e *apierr.Error) {
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if e.Err != nil {
		_ = c.Error(e.Err)
	}
	c.AbortWithStatusJSON(status, ErrorBody{
		Error:   e.Error(),
		Message: e.Message,
		Code:    e.Code,
		Details: e.Fields,
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
