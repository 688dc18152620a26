package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency known to the application
type Currency struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// BankAccount is a user-owned account with an opening balance
type BankAccount struct {
	ID             int64
	UserID         string
	Name           string
	AccountNumber  *string
	InitialBalance decimal.Decimal
	Currency       string
	CreatedAt      time.Time
}

// Label tags merchants and, later, transactions
type Label struct {
	ID     int64
	UserID string
	Name   string
	Color  string
}

// Merchant is either a preset merchant shared by all users or a user's own
// merchant, optionally layered on top of a preset.
type Merchant struct {
	ID            int64
	Name          string
	PfpLocation   *string
	Color         *string
	DefaultLabels []Label
}

// UserMerchant is the user-owned overlay row. Nil fields fall back to the
// underlying preset merchant.
type UserMerchant struct {
	ID            int64
	UserID        string
	MerchantID    *int64
	Name          *string
	Color         *string
	PfpLocation   *string
	Underlying    *Merchant
	DefaultLabels []Label
}

// NewMerchant describes a merchant to create together with its labels
type NewMerchant struct {
	Name                 *string
	Color                *string
	PfpLocation          *string
	UnderlyingMerchantID *int64
	DefaultLabelIDs      []int64
	NewDefaultLabels     []Label
}
