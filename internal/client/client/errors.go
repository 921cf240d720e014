package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/journal/internal/api"
	"github.com/dmitrijs2005/journal/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotSignedIn  = errors.New("not signed in")
)

// mapError turns a gRPC status into the shared sentinels. The server's
// reason code survives as a common.ReasonError so callers can pick a
// message for it.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var base error
	switch st.Code() {
	case codes.Unauthenticated:
		base = ErrUnauthorized
	case codes.PermissionDenied:
		base = common.ErrorForbidden
	case codes.NotFound:
		base = common.ErrorNotFound
	case codes.AlreadyExists:
		base = common.ErrorAlreadyExists
	case codes.InvalidArgument, codes.FailedPrecondition:
		base = common.ErrorValidation
	case codes.Unavailable, codes.DeadlineExceeded:
		base = ErrUnavailable
	default:
		base = common.ErrorInternal
	}

	mapped := fmt.Errorf("%w: %s", base, st.Message())
	if reason := api.Reason(err); reason != "" {
		return common.WithReason(mapped, reason)
	}
	return mapped
}
