package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/internal/dbx"
)

type CurrencyRepository struct {
	db dbx.DBTX
}

func NewCurrencyRepository(db dbx.DBTX) *CurrencyRepository {
	return &CurrencyRepository{db: db}
}

func (r *CurrencyRepository) List(ctx context.Context) ([]core.Currency, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, symbol FROM currency ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	currencies := []core.Currency{}
	for rows.Next() {
		var c core.Currency
		if err := rows.Scan(&c.ID, &c.Name, &c.Symbol); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return currencies, nil
}

// Seed inserts the currencies in one statement, skipping ids that already
// exist. It returns the number of rows inserted.
func (r *CurrencyRepository) Seed(ctx context.Context, currencies []core.Currency) (int64, error) {
	if len(currencies) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO currency (id, name, symbol) VALUES `)
	args := make([]any, 0, len(currencies)*3)
	for i, c := range currencies {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3)
		args = append(args, c.ID, c.Name, c.Symbol)
	}
	sb.WriteString(` ON CONFLICT (id) DO NOTHING`)

	res, err := r.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
