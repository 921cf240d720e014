package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// MaxImageSize is the upper bound for post images and profile photos.
const MaxImageSize = 1024 * 1024
