package postgres

import (
	"context"
	"database/sql"

	"github.com/fidena/fidena/internal/dbx"
	"github.com/fidena/fidena/ports"
)

// repositories binds every repository to one DBTX
type repositories struct {
	users        *UserRepository
	credentials  *CredentialRepository
	currencies   *CurrencyRepository
	bankAccounts *BankAccountRepository
	labels       *LabelRepository
	merchants    *MerchantRepository
}

func newRepositories(db dbx.DBTX) *repositories {
	return &repositories{
		users:        NewUserRepository(db),
		credentials:  NewCredentialRepository(db),
		currencies:   NewCurrencyRepository(db),
		bankAccounts: NewBankAccountRepository(db),
		labels:       NewLabelRepository(db),
		merchants:    NewMerchantRepository(db),
	}
}

func (r *repositories) Users() ports.UserRepository               { return r.users }
func (r *repositories) Credentials() ports.CredentialRepository   { return r.credentials }
func (r *repositories) Currencies() ports.CurrencyRepository      { return r.currencies }
func (r *repositories) BankAccounts() ports.BankAccountRepository { return r.bankAccounts }
func (r *repositories) Labels() ports.LabelRepository             { return r.labels }
func (r *repositories) Merchants() ports.MerchantRepository       { return r.merchants }

// Storage is the PostgreSQL implementation of ports.Storage
type Storage struct {
	*repositories
	db *sql.DB
}

// NewStorage creates a storage on top of an open database handle
func NewStorage(db *sql.DB) *Storage {
	return &Storage{
		repositories: newRepositories(db),
		db:           db,
	}
}

var _ ports.Storage = (*Storage)(nil)

// WithTx runs fn with repositories bound to a single transaction
func (s *Storage) WithTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, newRepositories(tx))
	})
}

// Ping checks that the database is reachable
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
