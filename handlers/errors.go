package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/padraicbc/f1picks/apperr"
)

// httpError converts an error from the store, scoring or ingestion into an
// echo.HTTPError with a matching status.
func httpError(err error) error {
	code := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindPrecondition:
		code = http.StatusPreconditionFailed
	case apperr.KindNotFound:
		code = http.StatusNotFound
	case apperr.KindValidation:
		code = http.StatusBadRequest
	case apperr.KindConflict:
		code = http.StatusConflict
	case apperr.KindClosed, apperr.KindForbidden:
		code = http.StatusForbidden
	case apperr.KindUnauthorized:
		code = http.StatusUnauthorized
	}
	return echo.NewHTTPError(code, err.Error())
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.Validate(req)
}
