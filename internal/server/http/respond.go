package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akulakov/docscan/internal/errs"
)

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(code, message string) errorResponse {
	return errorResponse{Error: errorDetail{Code: code, Message: message}}
}

// writeError maps domain sentinels onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, errs.ErrValidation):
		status, code = http.StatusBadRequest, "validation"
	case errors.Is(err, errs.ErrUnsupportedType):
		status, code = http.StatusBadRequest, "unsupported_type"
	case errors.Is(err, errs.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errs.ErrInsufficientCredit):
		status, code = http.StatusPaymentRequired, "insufficient_credit"
	case errors.Is(err, errs.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, errs.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, errs.ErrAlreadyExists):
		status, code = http.StatusConflict, "already_exists"
	case errors.Is(err, errs.ErrRateLimited):
		status, code = http.StatusTooManyRequests, "rate_limited"
	default:
		status, code = http.StatusInternalServerError, "internal"
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, errorBody(code, msg))
}
