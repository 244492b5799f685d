package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SuccessResponse writes a bare {success:true}.
func SuccessResponse(c echo.Context) error {
	return c.JSON(http.StatusOK, Envelope{Success: true})
}

// MessageResponse writes {success, message}.
func MessageResponse(c echo.Context, success bool, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: success, Message: message})
}

// DataResponse writes an arbitrary JSON body with status 200. Callers shape
// their own envelope when the standard one does not fit.
func DataResponse(c echo.Context, v interface{}) error {
	return c.JSON(http.StatusOK, v)
}

// ErrorResponse writes {success:false, error} with the given HTTP status.
func ErrorResponse(c echo.Context, status int, msg string) error {
	return c.JSON(status, Envelope{Success: false, Error: msg})
}

// BadRequestResponse writes a 400 with validation detail in data.
func BadRequestResponse(c echo.Context, detail interface{}) error {
	return c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Error:   "validation failed",
		Data:    detail,
	})
}

// NotFoundResponse writes a 404 error.
func NotFoundResponse(c echo.Context, msg string) error {
	return ErrorResponse(c, http.StatusNotFound, msg)
}

// InternalServerErrorResponse writes a generic 500.
func InternalServerErrorResponse(c echo.Context) error {
	return ErrorResponse(c, http.StatusInternalServerError, "something went wrong")
}
