package repomanager

import (
	"context"
	"database/sql"

	"github.com/tentech-me/tentech-api/internal/dbx"
	"github.com/tentech-me/tentech-api/internal/server/repositories/products"
	"github.com/tentech-me/tentech-api/internal/server/repositories/reactions"
	"github.com/tentech-me/tentech-api/internal/server/repositories/tags"
	"github.com/tentech-me/tentech-api/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Products(db dbx.DBTX) products.Repository
	Reactions(db dbx.DBTX) reactions.Repository
	Tags(db dbx.DBTX) tags.Repository
}
