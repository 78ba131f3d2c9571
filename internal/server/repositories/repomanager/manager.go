package repomanager

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethnnections/authkeeper/internal/dbx"
	"github.com/sethnnections/authkeeper/internal/server/repositories/sessions"
	"github.com/sethnnections/authkeeper/internal/server/repositories/tokens"
	"github.com/sethnnections/authkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tokens(db dbx.DBTX) tokens.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}

// Stores bundles the credential store, token ledger and session registry.
// The three are independent; no operation spans them in a transaction.
type Stores struct {
	Users    users.Repository
	Tokens   tokens.Repository
	Sessions sessions.Repository
}

// PostgresStores binds every store to db.
func PostgresStores(m RepositoryManager, db dbx.DBTX) Stores {
	return Stores{
		Users:    m.Users(db),
		Tokens:   m.Tokens(db),
		Sessions: m.Sessions(db),
	}
}

// MemoryStores returns process-local stores for development and tests.
func MemoryStores() Stores {
	return Stores{
		Users:    users.NewMemoryRepository(),
		Tokens:   tokens.NewMemoryRepository(),
		Sessions: sessions.NewMemoryRepository(),
	}
}

// WithRedisLedger moves the ledger and the session registry to Redis while
// users stay where they are.
func (s Stores) WithRedisLedger(rdb redis.UniversalClient, prefix string, sessionTTL time.Duration) Stores {
	s.Tokens = tokens.NewRedisRepository(rdb, prefix)
	s.Sessions = sessions.NewRedisRepository(rdb, prefix, sessionTTL)
	return s
}
