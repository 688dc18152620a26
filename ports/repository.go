package ports

import (
	"context"

	"github.com/fidena/fidena/core"
)

// UserRepository persists users
type UserRepository interface {
	Create(ctx context.Context, user *core.User) (*core.User, error)
	GetByID(ctx context.Context, id string) (*core.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CompleteRegistration(ctx context.Context, id string) error
}

// CredentialRepository persists WebAuthn credentials
type CredentialRepository interface {
	Create(ctx context.Context, cred *core.Credential) error
	ListByUser(ctx context.Context, userID string) ([]core.Credential, error)
}

// CurrencyRepository reads and seeds currencies
type CurrencyRepository interface {
	List(ctx context.Context) ([]core.Currency, error)
	Seed(ctx context.Context, currencies []core.Currency) (int64, error)
}

// BankAccountRepository persists bank accounts
type BankAccountRepository interface {
	Create(ctx context.Context, account *core.BankAccount) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]core.BankAccount, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// LabelRepository persists labels
type LabelRepository interface {
	Create(ctx context.Context, label *core.Label) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]core.Label, error)
}

// MerchantRepository persists preset and user merchants
type MerchantRepository interface {
	ListPresets(ctx context.Context) ([]core.Merchant, error)
	ListByUser(ctx context.Context, userID string) ([]core.UserMerchant, error)
	CreateUserMerchant(ctx context.Context, m *core.UserMerchant) (int64, error)
	// LinkLabels attaches labels owned by userID, or preset labels. Unknown
	// or foreign label ids yield core.ErrValidation.
	LinkLabels(ctx context.Context, userID string, userMerchantID int64, labelIDs []int64) error
}

// Repositories groups the repositories bound to one connection or transaction
type Repositories interface {
	Users() UserRepository
	Credentials() CredentialRepository
	Currencies() CurrencyRepository
	BankAccounts() BankAccountRepository
	Labels() LabelRepository
	Merchants() MerchantRepository
}

// Storage is the credential and finance store. WithTx runs fn against
// repositories bound to a single transaction; an error from fn rolls it back.
type Storage interface {
	Repositories
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
