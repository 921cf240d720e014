package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/journal/internal/dbx"
	"github.com/dmitrijs2005/journal/internal/server/repositories/posts"
	"github.com/dmitrijs2005/journal/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/journal/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/journal/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or a
// transaction, so services can run several repositories inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
	Posts(db dbx.DBTX) posts.Repository
}
