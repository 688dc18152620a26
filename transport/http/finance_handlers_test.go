package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/fidena/fidena/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) initCurrencies() {
	s.t.Helper()
	rec := s.do(request{method: http.MethodGet, path: "/api/init"})
	require.Equal(s.t, http.StatusOK, rec.Code)
	require.JSONEq(s.t, `{"ok":true}`, rec.Body.String())
}

func TestFinance_InitAndCurrencies(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(request{method: http.MethodGet, path: "/api/currencies"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	s.initCurrencies()
	s.initCurrencies()

	rec = s.do(request{method: http.MethodGet, path: "/api/currencies"})
	require.Equal(t, http.StatusOK, rec.Code)

	var currencies []core.Currency
	decodeJSON(t, rec, &currencies)
	assert.Len(t, currencies, 22)
}

func TestFinance_BankAccounts(t *testing.T) {
	s := newTestServer(t)
	s.initCurrencies()
	_, token := s.signUp("bank@example.com")
	_, other := s.signUp("other@example.com")

	rec := s.do(request{
		method: http.MethodPost,
		path:   "/api/bank-accounts",
		cookie: token,
		body:   `{"name":"Checking","accountNumber":"NL01","balance":"1250.75","currency":"EUR"}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created struct {
		BankAccountID int64 `json:"bankAccountId"`
	}
	decodeJSON(t, rec, &created)
	require.NotZero(t, created.BankAccountID)

	rec = s.do(request{method: http.MethodGet, path: "/api/bank-accounts", cookie: token})
	require.Equal(t, http.StatusOK, rec.Code)

	var accounts []struct {
		ID            int64           `json:"id"`
		Name          string          `json:"name"`
		AccountNumber *string         `json:"accountNumber"`
		Balance       decimal.Decimal `json:"balance"`
		Currency      string          `json:"currency"`
	}
	decodeJSON(t, rec, &accounts)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Checking", accounts[0].Name)
	assert.True(t, decimal.RequireFromString("1250.75").Equal(accounts[0].Balance))
	assert.Equal(t, "EUR", accounts[0].Currency)

	rec = s.do(request{method: http.MethodGet, path: "/api/bank-accounts", cookie: other})
	assert.JSONEq(t, `[]`, rec.Body.String())

	path := fmt.Sprintf("/api/bank-accounts/%d", created.BankAccountID)
	rec = s.do(request{method: http.MethodDelete, path: path, cookie: other})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Bank account not found", errorOf(t, rec).Error)

	rec = s.do(request{method: http.MethodDelete, path: path, cookie: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = s.do(request{method: http.MethodDelete, path: path, cookie: token})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFinance_BankAccountValidation(t *testing.T) {
	s := newTestServer(t)
	s.initCurrencies()
	_, token := s.signUp("v@example.com")

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing balance", `{"name":"A","currency":"EUR"}`, "balance"},
		{"missing name", `{"balance":1,"currency":"EUR"}`, "name"},
		{"bad currency length", `{"name":"A","balance":1,"currency":"EURO"}`, "currency"},
		{"unknown currency", `{"name":"A","balance":1,"currency":"XXX"}`, "currency"},
		{"unknown field", `{"name":"A","balance":1,"currency":"EUR","owner":"x"}`, "owner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(request{method: http.MethodPost, path: "/api/bank-accounts", cookie: token, body: tt.body})
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			resp := errorOf(t, rec)
			require.NotEmpty(t, resp.Details)
			assert.Equal(t, tt.field, resp.Details[0].Field)
		})
	}
}

func TestFinance_DeleteBankAccountBadID(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("id@example.com")

	for _, id := range []string{"abc", "0", "-4"} {
		rec := s.do(request{method: http.MethodDelete, path: "/api/bank-accounts/" + id, cookie: token})
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
	}
}

func TestFinance_Labels(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("labels@example.com")

	rec := s.do(request{method: http.MethodPost, path: "/api/labels", cookie: token, body: `{"name":"Food","color":"#ff0000"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"labelId"`)

	rec = s.do(request{method: http.MethodGet, path: "/api/labels", cookie: token})
	require.Equal(t, http.StatusOK, rec.Code)

	var labels []labelResponse
	decodeJSON(t, rec, &labels)
	require.Len(t, labels, 1)
	assert.Equal(t, "Food", labels[0].Name)
	assert.Equal(t, "#ff0000", labels[0].Color)

	rec = s.do(request{method: http.MethodPost, path: "/api/labels", cookie: token, body: `{"name":"Food"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFinance_Merchants(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("shop@example.com")

	groceries := s.storage.AddPresetLabel("Groceries", "#00ff00")
	color := "#123456"
	albert := s.storage.AddPreset(core.Merchant{Name: "Albert Heijn", Color: &color}, groceries)
	s.storage.AddPreset(core.Merchant{Name: "Jumbo", Color: &color})

	rec := s.do(request{method: http.MethodGet, path: "/api/merchants/presets"})
	require.Equal(t, http.StatusOK, rec.Code)
	var presets []merchantResponse
	decodeJSON(t, rec, &presets)
	require.Len(t, presets, 2)

	body := fmt.Sprintf(`{"underlyingMerchantId":%d,"defaultLabels":[%d],"newDefaultLabels":[{"name":"Weekly","color":"#000"}]}`, albert, groceries)
	rec = s.do(request{method: http.MethodPost, path: "/api/merchants", cookie: token, body: body})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(request{method: http.MethodPost, path: "/api/merchants", cookie: token, body: `{"name":"Corner Shop","color":"#abcdef"}`})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(request{method: http.MethodGet, path: "/api/merchants", cookie: token})
	require.Equal(t, http.StatusOK, rec.Code)

	var merchants []merchantResponse
	decodeJSON(t, rec, &merchants)
	require.Len(t, merchants, 3)

	assert.Equal(t, "Albert Heijn", merchants[0].Name)
	assert.Len(t, merchants[0].DefaultLabels, 2)
	assert.Equal(t, "Corner Shop", merchants[1].Name)
	assert.Empty(t, merchants[1].DefaultLabels)
	assert.Equal(t, "Jumbo", merchants[2].Name)
	assert.NotNil(t, merchants[2].DefaultLabels)
	assert.Empty(t, merchants[2].DefaultLabels)
}

func TestFinance_MerchantValidation(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("mv@example.com")
	_, otherToken := s.signUp("mv2@example.com")

	rec := s.do(request{method: http.MethodPost, path: "/api/labels", cookie: otherToken, body: `{"name":"Private","color":"#111"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	var foreign struct {
		LabelID int64 `json:"labelId"`
	}
	decodeJSON(t, rec, &foreign)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"no name", `{"color":"#fff"}`, "name"},
		{"no color or picture", `{"name":"Shop"}`, "color"},
		{"foreign label", fmt.Sprintf(`{"name":"Shop","color":"#fff","defaultLabels":[%d]}`, foreign.LabelID), "defaultLabels"},
		{"bad new label", `{"name":"Shop","color":"#fff","newDefaultLabels":[{"name":"x"}]}`, "newDefaultLabels[0].color"},
		{"unknown underlying", `{"underlyingMerchantId":999999}`, "underlyingMerchantId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(request{method: http.MethodPost, path: "/api/merchants", cookie: token, body: tt.body})
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			resp := errorOf(t, rec)
			require.NotEmpty(t, resp.Details)
			assert.Equal(t, tt.field, resp.Details[0].Field)
		})
	}

	rec = s.do(request{method: http.MethodGet, path: "/api/merchants", cookie: token})
	assert.JSONEq(t, `[]`, rec.Body.String())
}
