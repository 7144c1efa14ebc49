package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
)

func TestStatusForMapsServiceErrorCategories(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"user input", srvErrors.NewInvalidQuestionError("empty"), http.StatusBadRequest},
		{"configuration", srvErrors.NewConfigurationNotFoundError(), http.StatusNotFound},
		{"database", srvErrors.NewCriticalDBError("postgresql", "connection refused"), http.StatusInternalServerError},
		{"vector db", srvErrors.NewVectorDBUnavailableError("timeout"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusFor(tc.err))
		})
	}
}

func TestStatusForDefaultsToInternalServerErrorForUnknownErrors(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
