package postgres

import (
	"context"
	"fmt"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/internal/dbx"
)

type BankAccountRepository struct {
	db dbx.DBTX
}

func NewBankAccountRepository(db dbx.DBTX) *BankAccountRepository {
	return &BankAccountRepository{db: db}
}

func (r *BankAccountRepository) Create(ctx context.Context, account *core.BankAccount) (int64, error) {
	query :=
		`INSERT INTO bank_accounts (user_id, name, account_number, initial_balance, default_currency)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		account.UserID, account.Name, account.AccountNumber, account.InitialBalance, account.Currency).
		Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, core.NewValidationError(core.Issue{Field: "currency", Message: "unknown currency"})
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *BankAccountRepository) ListByUser(ctx context.Context, userID string) ([]core.BankAccount, error) {
	query :=
		`SELECT id, user_id, name, account_number, initial_balance, default_currency, created_at
		 FROM bank_accounts
		 WHERE user_id = $1
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	accounts := []core.BankAccount{}
	for rows.Next() {
		var a core.BankAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.AccountNumber,
			&a.InitialBalance, &a.Currency, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return accounts, nil
}

// Delete removes the account only if it belongs to userID
func (r *BankAccountRepository) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM bank_accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	return nil
}
