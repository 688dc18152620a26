package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FinanceHandlers serves currencies, bank accounts, labels and merchants
type FinanceHandlers struct {
	finance *service.FinanceService
	logger  *zap.Logger
}

func NewFinanceHandlers(finance *service.FinanceService, logger *zap.Logger) *FinanceHandlers {
	return &FinanceHandlers{finance: finance, logger: logger}
}

func (h *FinanceHandlers) Currencies(c *gin.Context) {
	currencies, err := h.finance.ListCurrencies(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch currencies")
		return
	}
	if currencies == nil {
		currencies = []core.Currency{}
	}
	c.JSON(http.StatusOK, currencies)
}

// Init seeds the currency table on first run
func (h *FinanceHandlers) Init(c *gin.Context) {
	if err := h.finance.InitCurrencies(c.Request.Context()); err != nil {
		respondError(c, h.logger, err, "Failed to initialize")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type createBankAccountRequest struct {
	Name          string           `json:"name" validate:"required,max=255"`
	AccountNumber *string          `json:"accountNumber" validate:"omitempty,max=255"`
	Balance       *decimal.Decimal `json:"balance" validate:"required"`
	Currency      string           `json:"currency" validate:"required,len=3"`
}

type bankAccountResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	AccountNumber *string         `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
}

func (h *FinanceHandlers) CreateBankAccount(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req createBankAccountRequest
	if !h.decode(c, &req) {
		return
	}

	id, err := h.finance.CreateBankAccount(c.Request.Context(), &core.BankAccount{
		UserID:         userID,
		Name:           req.Name,
		AccountNumber:  req.AccountNumber,
		InitialBalance: *req.Balance,
		Currency:       req.Currency,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to create bank account")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bankAccountId": id})
}

func (h *FinanceHandlers) ListBankAccounts(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	accounts, err := h.finance.ListBankAccounts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch bank accounts")
		return
	}

	out := make([]bankAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, bankAccountResponse{
			ID:            a.ID,
			Name:          a.Name,
			AccountNumber: a.AccountNumber,
			Balance:       a.InitialBalance,
			Currency:      a.Currency,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *FinanceHandlers) DeleteBankAccount(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	// Ids that cannot name a row are indistinguishable from foreign ones.
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, errorResponse{Error: "Bank account not found"})
		return
	}

	err = h.finance.DeleteBankAccount(c.Request.Context(), userID, id)
	switch {
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "Bank account not found"})
	case err != nil:
		respondError(c, h.logger, err, "Failed to delete bank account")
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

type labelRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Color string `json:"color" validate:"required,max=32"`
}

type labelResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func toLabelResponses(labels []core.Label) []labelResponse {
	out := make([]labelResponse, 0, len(labels))
	for _, l := range labels {
		out = append(out, labelResponse{ID: l.ID, Name: l.Name, Color: l.Color})
	}
	return out
}

func (h *FinanceHandlers) CreateLabel(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req labelRequest
	if !h.decode(c, &req) {
		return
	}

	id, err := h.finance.CreateLabel(c.Request.Context(), &core.Label{
		UserID: userID,
		Name:   req.Name,
		Color:  req.Color,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to create label")
		return
	}

	c.JSON(http.StatusOK, gin.H{"labelId": id})
}

func (h *FinanceHandlers) ListLabels(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	labels, err := h.finance.ListLabels(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch labels")
		return
	}
	c.JSON(http.StatusOK, toLabelResponses(labels))
}

type createMerchantRequest struct {
	Name                 *string        `json:"name" validate:"omitempty,max=255"`
	Color                *string        `json:"color" validate:"omitempty,max=32"`
	PfpLocation          *string        `json:"pfpLocation" validate:"omitempty,max=1024"`
	UnderlyingMerchantID *int64         `json:"underlyingMerchantId"`
	DefaultLabels        []int64        `json:"defaultLabels"`
	NewDefaultLabels     []labelRequest `json:"newDefaultLabels" validate:"omitempty,dive"`
}

type merchantResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	PfpLocation   *string         `json:"pfpLocation,omitempty"`
	Color         *string         `json:"color,omitempty"`
	DefaultLabels []labelResponse `json:"defaultLabels"`
}

func toMerchantResponses(merchants []core.Merchant) []merchantResponse {
	out := make([]merchantResponse, 0, len(merchants))
	for _, m := range merchants {
		out = append(out, merchantResponse{
			ID:            m.ID,
			Name:          m.Name,
			PfpLocation:   m.PfpLocation,
			Color:         m.Color,
			DefaultLabels: toLabelResponses(m.DefaultLabels),
		})
	}
	return out
}

func (h *FinanceHandlers) ListMerchants(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	merchants, err := h.finance.ListMerchants(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch merchants")
		return
	}
	c.JSON(http.StatusOK, toMerchantResponses(merchants))
}

func (h *FinanceHandlers) PresetMerchants(c *gin.Context) {
	merchants, err := h.finance.ListPresetMerchants(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch merchants")
		return
	}
	c.JSON(http.StatusOK, toMerchantResponses(merchants))
}

func (h *FinanceHandlers) CreateMerchant(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req createMerchantRequest
	if !h.decode(c, &req) {
		return
	}

	m := &core.NewMerchant{
		Name:                 req.Name,
		Color:                req.Color,
		PfpLocation:          req.PfpLocation,
		UnderlyingMerchantID: req.UnderlyingMerchantID,
		DefaultLabelIDs:      req.DefaultLabels,
	}
	for _, l := range req.NewDefaultLabels {
		m.NewDefaultLabels = append(m.NewDefaultLabels, core.Label{Name: l.Name, Color: l.Color})
	}

	if _, err := h.finance.CreateMerchant(c.Request.Context(), userID, m); err != nil {
		respondError(c, h.logger, err, "Failed to create merchant")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinanceHandlers) decode(c *gin.Context, dst any) bool {
	body, err := readBody(c.Request.Body)
	if err == nil {
		err = decodeStrict(body, dst)
	}
	if err != nil {
		respondError(c, h.logger, err, "Invalid request data")
		return false
	}
	return true
}
