package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/journal/internal/api"
	"github.com/dmitrijs2005/journal/internal/common"
	"google.golang.org/grpc/codes"
)

// toStatus maps a service error to a status error with its reason code.
// Internal failures are reported without their message.
func toStatus(err error) error {
	code := codeOf(err)
	msg := err.Error()
	if code == codes.Internal {
		msg = common.ErrorInternal.Error()
	}
	return api.StatusWithReason(code, msg, common.ReasonOf(err))
}

func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return codes.NotFound
	case errors.Is(err, common.ErrorAlreadyExists):
		return codes.AlreadyExists
	case errors.Is(err, common.ErrorValidation):
		return codes.InvalidArgument
	case errors.Is(err, common.ErrResetTokenExpired):
		return codes.FailedPrecondition
	case errors.Is(err, common.ErrorForbidden):
		return codes.PermissionDenied
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return codes.Unauthenticated
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case common.ReasonOf(err) == common.ReasonNetworkRequestFailed:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}
