package service

import (
	"context"
	"fmt"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/ports"
	"go.uber.org/zap"
)

// UnknownMerchantName is shown for a user merchant with neither its own
// name nor an underlying preset
const UnknownMerchantName = "Unknown Merchant"

// MajorCurrencies is seeded by InitCurrencies
var MajorCurrencies = []core.Currency{
	{ID: "USD", Name: "US Dollar", Symbol: "$"},
	{ID: "EUR", Name: "Euro", Symbol: "€"},
	{ID: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	{ID: "GBP", Name: "British Pound", Symbol: "£"},
	{ID: "AUD", Name: "Australian Dollar", Symbol: "A$"},
	{ID: "CAD", Name: "Canadian Dollar", Symbol: "C$"},
	{ID: "CHF", Name: "Swiss Franc", Symbol: "CHF"},
	{ID: "CNY", Name: "Chinese Yuan", Symbol: "¥"},
	{ID: "HKD", Name: "Hong Kong Dollar", Symbol: "HK$"},
	{ID: "NZD", Name: "New Zealand Dollar", Symbol: "NZ$"},
	{ID: "SEK", Name: "Swedish Krona", Symbol: "kr"},
	{ID: "NOK", Name: "Norwegian Krone", Symbol: "kr"},
	{ID: "SGD", Name: "Singapore Dollar", Symbol: "S$"},
	{ID: "KRW", Name: "South Korean Won", Symbol: "₩"},
	{ID: "INR", Name: "Indian Rupee", Symbol: "₹"},
	{ID: "BRL", Name: "Brazilian Real", Symbol: "R$"},
	{ID: "MXN", Name: "Mexican Peso", Symbol: "$"},
	{ID: "ZAR", Name: "South African Rand", Symbol: "R"},
	{ID: "RUB", Name: "Russian Ruble", Symbol: "₽"},
	{ID: "TRY", Name: "Turkish Lira", Symbol: "₺"},
	{ID: "AED", Name: "UAE Dirham", Symbol: "د.إ"},
	{ID: "SAR", Name: "Saudi Riyal", Symbol: "﷼"},
}

// FinanceService manages bank accounts, labels and merchants
type FinanceService struct {
	storage ports.Storage
	logger  *zap.Logger
}

func NewFinanceService(storage ports.Storage, logger *zap.Logger) *FinanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinanceService{storage: storage, logger: logger}
}

func (s *FinanceService) ListCurrencies(ctx context.Context) ([]core.Currency, error) {
	return s.storage.Currencies().List(ctx)
}

// InitCurrencies seeds MajorCurrencies when the table is empty
func (s *FinanceService) InitCurrencies(ctx context.Context) error {
	existing, err := s.storage.Currencies().List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	n, err := s.storage.Currencies().Seed(ctx, MajorCurrencies)
	if err != nil {
		return err
	}
	s.logger.Info("seeded currencies", zap.Int64("inserted", n))
	return nil
}

func (s *FinanceService) CreateBankAccount(ctx context.Context, account *core.BankAccount) (int64, error) {
	return s.storage.BankAccounts().Create(ctx, account)
}

func (s *FinanceService) ListBankAccounts(ctx context.Context, userID string) ([]core.BankAccount, error) {
	return s.storage.BankAccounts().ListByUser(ctx, userID)
}

// DeleteBankAccount returns core.ErrNotFound unless the account belongs to userID
func (s *FinanceService) DeleteBankAccount(ctx context.Context, userID string, id int64) error {
	return s.storage.BankAccounts().Delete(ctx, userID, id)
}

func (s *FinanceService) CreateLabel(ctx context.Context, label *core.Label) (int64, error) {
	return s.storage.Labels().Create(ctx, label)
}

func (s *FinanceService) ListLabels(ctx context.Context, userID string) ([]core.Label, error) {
	return s.storage.Labels().ListByUser(ctx, userID)
}

func (s *FinanceService) ListPresetMerchants(ctx context.Context) ([]core.Merchant, error) {
	return s.storage.Merchants().ListPresets(ctx)
}

// ListMerchants returns the user's merchants, resolved against their
// presets, followed by the presets none of them references. Presets in
// this list carry no labels.
func (s *FinanceService) ListMerchants(ctx context.Context, userID string) ([]core.Merchant, error) {
	own, err := s.storage.Merchants().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	presets, err := s.storage.Merchants().ListPresets(ctx)
	if err != nil {
		return nil, err
	}

	referenced := make(map[int64]bool, len(own))
	out := make([]core.Merchant, 0, len(own)+len(presets))
	for _, um := range own {
		if um.MerchantID != nil {
			referenced[*um.MerchantID] = true
		}
		out = append(out, resolveMerchant(um))
	}
	for _, p := range presets {
		if referenced[p.ID] {
			continue
		}
		p.DefaultLabels = []core.Label{}
		out = append(out, p)
	}

	return out, nil
}

func resolveMerchant(um core.UserMerchant) core.Merchant {
	m := core.Merchant{
		ID:            um.ID,
		Name:          UnknownMerchantName,
		PfpLocation:   um.PfpLocation,
		Color:         um.Color,
		DefaultLabels: um.DefaultLabels,
	}
	if m.DefaultLabels == nil {
		m.DefaultLabels = []core.Label{}
	}

	if u := um.Underlying; u != nil {
		if u.Name != "" {
			m.Name = u.Name
		}
		if m.PfpLocation == nil {
			m.PfpLocation = u.PfpLocation
		}
		if m.Color == nil {
			m.Color = u.Color
		}
	}
	if um.Name != nil {
		m.Name = *um.Name
	}

	return m
}

// ValidateNewMerchant checks the fields a brand new merchant needs
func ValidateNewMerchant(m *core.NewMerchant) error {
	if m.UnderlyingMerchantID != nil {
		return nil
	}

	var issues []core.Issue
	if (m.Color == nil || *m.Color == "") && (m.PfpLocation == nil || *m.PfpLocation == "") {
		issues = append(issues, core.Issue{
			Field:   "color",
			Message: "Either color or profile picture must be provided if you're registering an entirely new merchant.",
		})
	}
	if m.Name == nil || *m.Name == "" {
		issues = append(issues, core.Issue{
			Field:   "name",
			Message: "Merchant name is required when registering a new merchant.",
		})
	}
	if len(issues) > 0 {
		return core.NewValidationError(issues...)
	}
	return nil
}

// CreateMerchant inserts the new labels, the merchant and its label links
// in one transaction
func (s *FinanceService) CreateMerchant(ctx context.Context, userID string, m *core.NewMerchant) (int64, error) {
	if err := ValidateNewMerchant(m); err != nil {
		return 0, err
	}

	var merchantID int64
	err := s.storage.WithTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		labelIDs := append([]int64(nil), m.DefaultLabelIDs...)
		for _, l := range m.NewDefaultLabels {
			id, err := repos.Labels().Create(ctx, &core.Label{UserID: userID, Name: l.Name, Color: l.Color})
			if err != nil {
				return fmt.Errorf("create label: %w", err)
			}
			labelIDs = append(labelIDs, id)
		}

		id, err := repos.Merchants().CreateUserMerchant(ctx, &core.UserMerchant{
			UserID:      userID,
			MerchantID:  m.UnderlyingMerchantID,
			Name:        m.Name,
			Color:       m.Color,
			PfpLocation: m.PfpLocation,
		})
		if err != nil {
			return err
		}

		if err := repos.Merchants().LinkLabels(ctx, userID, id, labelIDs); err != nil {
			return err
		}

		merchantID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	return merchantID, nil
}
