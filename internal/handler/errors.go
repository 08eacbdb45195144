package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/medtrack/medtrack-api/pkg/errors"
)

var statusByCode = map[apperrors.ErrorCode]int{
	apperrors.ErrNotFound:          http.StatusNotFound,
	apperrors.ErrBadRequest:        http.StatusBadRequest,
	apperrors.ErrUnauthorized:      http.StatusUnauthorized,
	apperrors.ErrForbidden:         http.StatusForbidden,
	apperrors.ErrInvalidTransition: http.StatusConflict,
	apperrors.ErrValidation:        http.StatusBadRequest,
}

// RespondError writes the error as a JSON response with the HTTP status
// implied by its application code. Unknown errors collapse to 500 without
// leaking internals.
func RespondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status, ok := statusByCode[appErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		c.JSON(status, NewErrorResponse(appErr.Message))
		return
	}
	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}
