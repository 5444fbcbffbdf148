package codes

import (
	"errors"
	"strconv"

	"stablevault/core"

	"github.com/twitchtv/twirp"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"
	// HintKey symbolic error name
	HintKey = "hint"

	// InvalidArguments invalid arguments
	InvalidArguments = 100001
)

// With with specified error
func With(err error, code int) error {
	twerr, ok := err.(twirp.Error)
	if !ok {
		twerr = twirp.InternalErrorWith(err)
	}

	return twerr.WithMeta(CustomCodeKey, strconv.Itoa(code))
}

// Get get error code
func Get(code twirp.ErrorCode) int {
	switch code {
	case twirp.InvalidArgument:
		return InvalidArguments
	default:
		return twirp.ServerHTTPStatusFromErrorCode(code)
	}
}

// From maps a protocol error onto a twirp error carrying its numeric code and name
func From(err error) twirp.Error {
	if twerr, ok := err.(twirp.Error); ok {
		return twerr
	}

	var e *core.Error
	if !errors.As(err, &e) {
		return twirp.InternalErrorWith(err)
	}

	var code twirp.ErrorCode
	switch e.Kind {
	case core.KindValidation:
		code = twirp.InvalidArgument
	case core.KindPrecondition:
		code = twirp.FailedPrecondition
	case core.KindEnvironmental:
		code = twirp.Unavailable
	case core.KindAuthorization:
		code = twirp.PermissionDenied
	default:
		code = twirp.Internal
	}

	return twirp.NewError(code, err.Error()).
		WithMeta(CustomCodeKey, e.Code.String()).
		WithMeta(HintKey, e.Name)
}
