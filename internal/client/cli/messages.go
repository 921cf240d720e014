package cli

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/journal/internal/client/client"
	"github.com/dmitrijs2005/journal/internal/client/services"
	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/filex"
)

const genericMessage = "Something went wrong. Please try again."

var reasonMessages = map[string]string{
	common.ReasonInvalidEmail:           "Please enter a valid email address.",
	common.ReasonMissingEmail:           "Please enter your email address.",
	common.ReasonUserNotFound:           "No account found with this email address.",
	common.ReasonEmailAlreadyInUse:      "An account with this email already exists.",
	common.ReasonWrongPassword:          "Incorrect password. Please try again.",
	common.ReasonInvalidCredential:      "Invalid email or password.",
	common.ReasonWeakPassword:           "Password should be at least 6 characters.",
	common.ReasonInvalidActionCode:      "The reset code is invalid or has already been used.",
	common.ReasonExpiredActionCode:      "The reset code has expired. Please request a new one.",
	common.ReasonAccountExists:          "An account already exists with the same email address but different sign-in credentials.",
	common.ReasonAccessDenied:           "Sign-in was cancelled.",
	common.ReasonInvalidDeviceCode:      "The sign-in code has expired. Please try again.",
	common.ReasonProviderDisabled:       "This sign-in method is not enabled.",
	common.ReasonTokenExpired:           "Your session has expired. Please log in again.",
	common.ReasonInvalidToken:           "Your session is no longer valid. Please log in again.",
	common.ReasonRequiresRecentLogin:    "Please log in again to continue.",
	common.ReasonNetworkRequestFailed:   "Network error. Please check your connection and try again.",
	common.ReasonPostNotFound:           "This post no longer exists.",
	common.ReasonPostPermissionDenied:   "You can only change your own posts.",
	common.ReasonPostInvalidArgument:    "Title and content are required.",
	common.ReasonImageTooLarge:          "Image must be 1MB or smaller.",
	common.ReasonInvalidContentType:     "Please choose an image file.",
	common.ReasonInvalidObjectKey:       "The uploaded image could not be attached.",
	common.ReasonProfileInvalidArgument: "Please enter a display name.",
}

// friendly turns err into the message shown to the user. Reason codes go
// through the table; a few local conditions have their own wording;
// everything else gets the generic message.
func friendly(err error) string {
	if msg, ok := reasonMessages[common.ReasonOf(err)]; ok {
		if errors.Is(err, services.ErrImageNotSaved) {
			return "Post saved, but the image was not: " + msg
		}
		return msg
	}

	switch {
	case errors.Is(err, services.ErrImageNotSaved):
		return "Post saved, but the image could not be uploaded."
	case errors.Is(err, services.ErrBusy):
		return "Please wait, the previous request is still running."
	case errors.Is(err, services.ErrNotSignedIn), errors.Is(err, client.ErrNotSignedIn):
		return "Please log in first."
	case errors.Is(err, client.ErrUnavailable):
		return "The server is unavailable. Please try again later."
	case errors.Is(err, filex.ErrTooLarge):
		return reasonMessages[common.ReasonImageTooLarge]
	case errors.Is(err, filex.ErrNotImage):
		return reasonMessages[common.ReasonInvalidContentType]
	case errors.Is(err, common.ErrorValidation):
		return capitalize(strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": "))
	}
	return genericMessage
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
