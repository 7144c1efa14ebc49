package httpapi

import (
	"errors"
	"net/http"

	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
)

// statusFor maps a pkg/errors.Error's category to an HTTP status code for
// the JSON-response endpoints (/execute-query, /explain-sql,
// /save-sql-feedback); /generate-sql never uses this since its failures
// are reported in-band as CRITICAL_ERROR frames.
func statusFor(err error) int {
	var svcErr *srvErrors.Error
	if !errors.As(err, &svcErr) {
		return http.StatusInternalServerError
	}
	switch svcErr.Category {
	case srvErrors.CategoryUserInput, srvErrors.CategoryValidation:
		return http.StatusBadRequest
	case srvErrors.CategoryConfiguration:
		return http.StatusNotFound
	case srvErrors.CategoryAuthentication:
		return http.StatusUnauthorized
	case srvErrors.CategoryResource:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
