package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
)

// wireError is the structured error body clients decode back into the
// shared taxonomy.
type wireError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
	Value    string `json:"value,omitempty"`
	Expected int64  `json:"expected,omitempty"`
	Actual   int64  `json:"actual,omitempty"`
}

// writeError maps a taxonomy error to an HTTP status and wire body.
func writeError(c echo.Context, err error) error {
	var dup *common.DuplicateError
	if errors.As(err, &dup) {
		return c.JSON(http.StatusConflict, wireError{
			Code: "duplicate", Message: dup.Error(), Field: dup.Field, Value: dup.Value,
		})
	}

	var conflict *common.VersionConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, wireError{
			Code: "version_conflict", Message: conflict.Error(),
			Expected: conflict.Expected, Actual: conflict.Actual,
		})
	}

	switch {
	case errors.Is(err, common.ErrForeignKey):
		return c.JSON(http.StatusConflict, wireError{Code: "foreign_key", Message: err.Error()})
	case errors.Is(err, common.ErrMissingField):
		return c.JSON(http.StatusBadRequest, wireError{Code: "not_null", Message: err.Error()})
	case errors.Is(err, common.ErrCheckViolation):
		return c.JSON(http.StatusBadRequest, wireError{Code: "check", Message: err.Error()})
	case errors.Is(err, common.ErrUndefinedTable):
		return c.JSON(http.StatusInternalServerError, wireError{Code: "undefined_table", Message: err.Error()})
	case errors.Is(err, common.ErrNotFound):
		return c.JSON(http.StatusNotFound, wireError{Code: "not_found", Message: err.Error()})
	case errors.Is(err, common.ErrTokenExpired):
		return c.JSON(http.StatusUnauthorized, wireError{Code: "token_expired", Message: err.Error()})
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return c.JSON(http.StatusUnauthorized, wireError{Code: "unauthorized", Message: "unauthorized"})
	}

	return c.JSON(http.StatusInternalServerError, wireError{Code: "internal", Message: "internal error"})
}
