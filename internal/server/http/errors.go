package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/tentech-me/tentech-api/internal/common"
	"github.com/tentech-me/tentech-api/internal/server/auth"
	"github.com/tentech-me/tentech-api/internal/server/services"
)

// apiError is the body of every error response.
type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// requestError reports a malformed request that never reached a service.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

var errorTable = []struct {
	err     error
	status  int
	errType string
	message string
}{
	{auth.ErrMissing, http.StatusUnauthorized, "TokenMissing", "x-api-key header is missing"},
	{auth.ErrBadCount, http.StatusUnauthorized, "TokenBadCount", "x-api-key header must be sent exactly once"},
	{auth.ErrInvalid, http.StatusUnauthorized, "CannotDecryptToken", "cannot decrypt token"},
	{auth.ErrMalformed, http.StatusUnauthorized, "CannotDecryptToken", "cannot decrypt token"},
	{auth.ErrExpired, http.StatusUnauthorized, "TokenExpired", "token has expired"},
	{services.ErrCannotVerifyPassword, http.StatusUnauthorized, "CannotVerifyPassword", "cannot verify password"},
	{services.ErrTooMany, http.StatusConflict, "TooManyReactions", "reaction limit reached"},
	{services.ErrTooFew, http.StatusUnprocessableEntity, "TooFewReactions", "no reaction to remove"},
	{services.ErrCannotSendEmail, http.StatusUnprocessableEntity, "CannotSendEmail", "cannot send email"},
	{services.ErrCannotDecodeBase64, http.StatusBadRequest, "CannotDecodeBase64", "attachment is not valid base64"},
	{services.ErrCannotPutObject, http.StatusBadGateway, "CannotPutS3Object", "cannot store the object"},
	{common.ErrorAlreadyActivated, http.StatusConflict, "AlreadyActivated", "account has already been activated"},
	{common.ErrorAlreadyExists, http.StatusConflict, "AlreadyExists", "already exists"},
	{common.ErrorForbidden, http.StatusForbidden, "Forbidden", "not allowed"},
	{common.ErrorNotFound, http.StatusNotFound, "NotFound", "not found"},
	{common.ErrorValidation, http.StatusBadRequest, "ValidationFailed", "validation failed"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "Timeout", "request timed out"},
}

// classify maps err to a status code and response body.
func classify(err error) (int, apiError) {
	var (
		reqErr *requestError
		fe     *common.FieldError
		ve     validator.ValidationErrors
		se     *json.SyntaxError
		te     *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, apiError{"ValidationFailed", reqErr.msg}
	case errors.As(err, &ve):
		return http.StatusBadRequest, apiError{"ValidationFailed", validationMessage(ve[0])}
	case errors.As(err, &se), errors.As(err, &te), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, apiError{"ValidationFailed", "malformed JSON body"}
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, apiError{"ValidationFailed", "request body is empty"}
	case errors.As(err, &fe) && errors.Is(fe.Err, common.ErrorAlreadyExists):
		return http.StatusConflict, apiError{"AlreadyExists", fe.Field + " has already been taken"}
	case errors.As(err, &fe) && errors.Is(fe.Err, common.ErrorNotFound):
		return http.StatusBadRequest, apiError{"ValidationFailed", fe.Field + " refers to an unknown record"}
	}

	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, apiError{e.errType, e.message}
		}
	}
	return http.StatusInternalServerError, apiError{"InternalError", "internal error"}
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "url":
		return field + " must be a valid URL"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// abortWithError writes the error response. Unexpected errors are logged,
// their text never reaches the client.
func (s *Server) abortWithError(c *gin.Context, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, body)
}
