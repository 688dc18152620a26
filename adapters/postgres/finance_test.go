package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fidena/fidena/core"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyRepository_Seed(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCurrencyRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO currency (id, name, symbol) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (id) DO NOTHING`)).
		WithArgs("USD", "US Dollar", "$", "EUR", "Euro", "€").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.Seed(context.Background(), []core.Currency{
		{ID: "USD", Name: "US Dollar", Symbol: "$"},
		{ID: "EUR", Name: "Euro", Symbol: "€"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCurrencyRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCurrencyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, symbol FROM currency ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "symbol"}))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBankAccountRepository_CreateAndList(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankAccountRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO bank_accounts (user_id, name, account_number, initial_balance, default_currency)`)).
		WithArgs("u-1", "Main", nil, "1250.75", "EUR").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.Create(ctx, &core.BankAccount{
		UserID:         "u-1",
		Name:           "Main",
		InitialBalance: decimal.RequireFromString("1250.75"),
		Currency:       "EUR",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	mock.ExpectQuery(`SELECT id, user_id, name, account_number, initial_balance, default_currency, created_at\s+FROM bank_accounts`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "account_number", "initial_balance", "default_currency", "created_at"}).
			AddRow(int64(7), "u-1", "Main", "DE89", "1250.7500", "EUR", time.Now()))

	accounts, err := repo.ListByUser(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].InitialBalance.Equal(decimal.RequireFromString("1250.75")))
	require.NotNil(t, accounts[0].AccountNumber)
	assert.Equal(t, "DE89", *accounts[0].AccountNumber)
}

func TestBankAccountRepository_DeleteScopedToOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankAccountRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bank_accounts WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(7), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bank_accounts WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(7), "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "u-1", 7))
	require.ErrorIs(t, repo.Delete(context.Background(), "intruder", 7), core.ErrNotFound)
}

func TestLabelRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLabelRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO labels (user_id, name, color)`)).
		WithArgs("u-1", "Groceries", "#00ff00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	id, err := repo.Create(context.Background(), &core.Label{UserID: "u-1", Name: "Groceries", Color: "#00ff00"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
}

func TestMerchantRepository_ListPresets(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMerchantRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, pfp_location, color FROM merchants ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "pfp_location", "color"}).
			AddRow(int64(1), "Lidl", nil, "#0050aa").
			AddRow(int64(2), "Shell", "/shell.png", nil))
	mock.ExpectQuery(`FROM merchant_default_labels mdl`).
		WillReturnRows(sqlmock.NewRows([]string{"merchant_id", "id", "name", "color"}).
			AddRow(int64(1), int64(10), "Groceries", "#00ff00"))

	got, err := repo.ListPresets(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Lidl", got[0].Name)
	require.Len(t, got[0].DefaultLabels, 1)
	assert.Equal(t, "Groceries", got[0].DefaultLabels[0].Name)
	assert.Empty(t, got[1].DefaultLabels)
	assert.Nil(t, got[1].Color)
}

func TestMerchantRepository_ListByUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMerchantRepository(db)

	mock.ExpectQuery(`FROM user_merchants um\s+LEFT JOIN merchants m`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "merchant_id", "name", "color", "pfp_location", "m_id", "m_name", "m_pfp", "m_color"}).
			AddRow(int64(5), "u-1", int64(1), nil, nil, nil, int64(1), "Lidl", nil, "#0050aa").
			AddRow(int64(6), "u-1", nil, "Corner shop", "#123456", nil, nil, nil, nil, nil))
	mock.ExpectQuery(`FROM user_merchant_default_labels uml`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_merchant_id", "id", "name", "color"}).
			AddRow(int64(6), int64(11), "Snacks", "#ff0000"))

	got, err := repo.ListByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Underlying)
	assert.Equal(t, "Lidl", got[0].Underlying.Name)
	assert.Empty(t, got[0].DefaultLabels)
	assert.Nil(t, got[1].Underlying)
	require.Len(t, got[1].DefaultLabels, 1)
}

func TestMerchantRepository_LinkLabels(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMerchantRepository(db)

	mock.ExpectExec(`INSERT INTO user_merchant_default_labels .* id IN \(\$3, \$4\)`).
		WithArgs(int64(5), "u-1", int64(10), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.LinkLabels(context.Background(), "u-1", 5, []int64{10, 11, 10}))
}

func TestMerchantRepository_LinkForeignLabel(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMerchantRepository(db)

	mock.ExpectExec(`INSERT INTO user_merchant_default_labels`).
		WithArgs(int64(5), "u-1", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.LinkLabels(context.Background(), "u-1", 5, []int64{99})
	require.ErrorIs(t, err, core.ErrValidation)
}

func TestMerchantRepository_LinkNoLabels(t *testing.T) {
	db, _ := newMock(t)
	repo := NewMerchantRepository(db)
	require.NoError(t, repo.LinkLabels(context.Background(), "u-1", 5, nil))
}

func TestBankAccountRepository_UnknownCurrency(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO bank_accounts`)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Create(context.Background(), &core.BankAccount{UserID: "u-1", Name: "Main", Currency: "XXX"})
	require.ErrorIs(t, err, core.ErrValidation)
}
