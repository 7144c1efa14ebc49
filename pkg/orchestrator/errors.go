package orchestrator

import (
	"errors"

	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
)

// asServiceError unwraps err into this module's typed *errors.Error, if it
// is (or wraps) one.
func asServiceError(err error) (*srvErrors.Error, bool) {
	var svcErr *srvErrors.Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
