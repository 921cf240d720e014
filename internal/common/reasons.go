package common

import "errors"

// Reason codes travel with errors from the server to the client, which maps
// them to user-facing messages.
const (
	ReasonInvalidEmail           = "auth/invalid-email"
	ReasonMissingEmail           = "auth/missing-email"
	ReasonUserNotFound           = "auth/user-not-found"
	ReasonEmailAlreadyInUse      = "auth/email-already-in-use"
	ReasonWrongPassword          = "auth/wrong-password"
	ReasonInvalidCredential      = "auth/invalid-credential"
	ReasonWeakPassword           = "auth/weak-password"
	ReasonInvalidActionCode      = "auth/invalid-action-code"
	ReasonExpiredActionCode      = "auth/expired-action-code"
	ReasonAccountExists          = "auth/account-exists-with-different-credential"
	ReasonAccessDenied           = "auth/access-denied"
	ReasonInvalidDeviceCode      = "auth/invalid-device-code"
	ReasonProviderDisabled       = "auth/operation-not-allowed"
	ReasonTokenExpired           = "auth/user-token-expired"
	ReasonInvalidToken           = "auth/invalid-user-token"
	ReasonRequiresRecentLogin    = "auth/requires-recent-login"
	ReasonNetworkRequestFailed   = "auth/network-request-failed"
	ReasonPostNotFound           = "posts/not-found"
	ReasonPostPermissionDenied   = "posts/permission-denied"
	ReasonPostInvalidArgument    = "posts/invalid-argument"
	ReasonImageTooLarge          = "storage/image-too-large"
	ReasonInvalidContentType     = "storage/invalid-content-type"
	ReasonInvalidObjectKey       = "storage/invalid-key"
	ReasonProfileInvalidArgument = "profile/invalid-argument"
)

// ReasonError attaches a reason code to an error. errors.Is still sees the
// wrapped error.
type ReasonError struct {
	Reason string
	Err    error
}

func (e *ReasonError) Error() string {
	return e.Reason + ": " + e.Err.Error()
}

func (e *ReasonError) Unwrap() error { return e.Err }

// WithReason wraps err with a reason code.
func WithReason(err error, reason string) error {
	return &ReasonError{Reason: reason, Err: err}
}

// ReasonOf returns the first reason code found in err's chain.
func ReasonOf(err error) string {
	var re *ReasonError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}
