// Package client is the CLI's connection to the journal backend.
//
// GRPCClient wraps the generated-style api.JournalServiceClient. It
// derives password verifiers locally, attaches the access token to private
// calls, rotates tokens when the server reports them expired and keeps the
// refresh token in the local metadata store so a later run can restore the
// session. Every change of the signed-in identity is reported to an
// AuthStateListener, normally the session reconciler.
//
// Errors are mapped to the sentinels in internal/common plus ErrUnavailable
// and ErrUnauthorized; the server's reason code is preserved and can be
// read with common.ReasonOf.
//
// InitDatabase and OpenDataDir open the local SQLite database and apply
// its embedded goose migrations.
package client
