package api

import (
	"errors"
	"net/http"

	"github.com/T-Watch/T-Watch-Backend/internal/auth"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"github.com/T-Watch/T-Watch-Backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error codes carried in the response envelope.
const (
	CodeUnauthenticated      = "UNAUTHENTICATED"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	CodeValidation           = "VALIDATION"
	CodeConflict             = "CONFLICT"
	CodePartialFailure       = "PARTIAL_FAILURE"
	CodeStorageUnavailable   = "STORAGE_UNAVAILABLE"
	CodeNotImplemented       = "NOT_IMPLEMENTED"
	CodeInternal             = "INTERNAL"
)

// Envelope is the body of every response: Data on success, Error on failure,
// and on a partial failure both.
type Envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// successBody keeps a nil result as an explicit "data": null.
type successBody struct {
	Data any `json:"data"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, successBody{Data: data})
}

// classify maps an error onto its HTTP status and envelope code. Partial
// failure is checked first: it may wrap a storage error.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrPartialFailure):
		return http.StatusConflict, CodePartialFailure
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, CodeUnauthenticated
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, CodeTokenExpired
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, CodeInvalidToken
	case errors.Is(err, service.ErrAuthenticationFailed):
		return http.StatusUnauthorized, CodeAuthenticationFailed
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, repository.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, CodeStorageUnavailable
	case errors.Is(err, service.ErrPhotoStorageDisabled):
		return http.StatusNotImplemented, CodeNotImplemented
	}
	return http.StatusInternalServerError, CodeInternal
}

// respondError writes err in the envelope. data is only sent along with a
// partial failure.
func respondError(c *gin.Context, log *zap.Logger, err error, data any) {
	status, code := classify(err)
	body := Envelope{Error: &ErrorBody{Code: code, Message: err.Error()}}
	switch code {
	case CodePartialFailure:
		body.Data = data
	case CodeInternal:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		body.Error.Message = "internal server error"
	}
	c.AbortWithStatusJSON(status, body)
}
