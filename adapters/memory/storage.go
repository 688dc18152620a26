// Package memory is an in-process implementation of ports.Storage
// used by tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/ports"
	"github.com/google/uuid"
)

type state struct {
	users        map[string]core.User
	credentials  map[string]core.Credential
	currencies   map[string]core.Currency
	bankAccounts map[int64]core.BankAccount
	labels       map[int64]core.Label
	presets      map[int64]core.Merchant
	presetLabels map[int64][]int64
	userMerchant map[int64]core.UserMerchant
	merchantTags map[int64][]int64
	seq          int64
}

func newState() *state {
	return &state{
		users:        map[string]core.User{},
		credentials:  map[string]core.Credential{},
		currencies:   map[string]core.Currency{},
		bankAccounts: map[int64]core.BankAccount{},
		labels:       map[int64]core.Label{},
		presets:      map[int64]core.Merchant{},
		presetLabels: map[int64][]int64{},
		userMerchant: map[int64]core.UserMerchant{},
		merchantTags: map[int64][]int64{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.credentials {
		c.credentials[k] = v
	}
	for k, v := range s.currencies {
		c.currencies[k] = v
	}
	for k, v := range s.bankAccounts {
		c.bankAccounts[k] = v
	}
	for k, v := range s.labels {
		c.labels[k] = v
	}
	for k, v := range s.presets {
		c.presets[k] = v
	}
	for k, v := range s.presetLabels {
		c.presetLabels[k] = append([]int64(nil), v...)
	}
	for k, v := range s.userMerchant {
		c.userMerchant[k] = v
	}
	for k, v := range s.merchantTags {
		c.merchantTags[k] = append([]int64(nil), v...)
	}
	c.seq = s.seq
	return c
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// Storage keeps every table in maps. WithTx serializes transactions and
// restores a snapshot when fn fails.
type Storage struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	state *state
	now   func() time.Time

	// FailNext, when set, is returned by the next repository call and cleared
	FailNext error
}

// NewStorage creates an empty in-memory storage
func NewStorage() *Storage {
	return &Storage{state: newState(), now: time.Now}
}

var _ ports.Storage = (*Storage)(nil)

func (s *Storage) Users() ports.UserRepository               { return (*users)(s) }
func (s *Storage) Credentials() ports.CredentialRepository   { return (*credentials)(s) }
func (s *Storage) Currencies() ports.CurrencyRepository      { return (*currencies)(s) }
func (s *Storage) BankAccounts() ports.BankAccountRepository { return (*bankAccounts)(s) }
func (s *Storage) Labels() ports.LabelRepository             { return (*labels)(s) }
func (s *Storage) Merchants() ports.MerchantRepository       { return (*merchants)(s) }

func (s *Storage) WithTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.state.clone()
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// AddPreset registers a shared merchant with the given label ids
func (s *Storage) AddPreset(m core.Merchant, labelIDs ...int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.state.nextID()
	m.DefaultLabels = nil
	s.state.presets[m.ID] = m
	s.state.presetLabels[m.ID] = labelIDs
	return m.ID
}

// AddPresetLabel registers a label not owned by any user
func (s *Storage) AddPresetLabel(name, color string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.state.nextID()
	s.state.labels[id] = core.Label{ID: id, Name: name, Color: color}
	return id
}

// CountUsers returns the number of stored users
func (s *Storage) CountUsers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.users)
}

// CountCredentials returns the number of stored credentials
func (s *Storage) CountCredentials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.credentials)
}

// lock acquires the data lock and reports a pending injected failure
func (s *Storage) lock() error {
	s.mu.Lock()
	if err := s.FailNext; err != nil {
		s.FailNext = nil
		s.mu.Unlock()
		return err
	}
	return nil
}

type users Storage

func (r *users) Create(ctx context.Context, user *core.User) (*core.User, error) {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if user.Email != nil {
		for _, u := range s.state.users {
			if u.Email != nil && *u.Email == *user.Email {
				return nil, core.ErrEmailTaken
			}
		}
	}

	now := s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.state.users[user.ID] = *user
	return user, nil
}

func (r *users) GetByID(ctx context.Context, id string) (*core.User, error) {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	u, ok := s.state.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return &u, nil
}

func (r *users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()

	for _, u := range s.state.users {
		if u.Email != nil && *u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *users) CompleteRegistration(ctx context.Context, id string) error {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	u, ok := s.state.users[id]
	if !ok {
		return core.ErrUserNotFound
	}
	u.CompletedRegistration = true
	u.UpdatedAt = s.now()
	s.state.users[id] = u
	return nil
}

type credentials Storage

func (r *credentials) Create(ctx context.Context, cred *core.Credential) error {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.state.users[cred.UserID]; !ok {
		return core.ErrUserNotFound
	}
	cred.CreatedAt = s.now()
	s.state.credentials[cred.ID] = *cred
	return nil
}

func (r *credentials) ListByUser(ctx context.Context, userID string) ([]core.Credential, error) {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var out []core.Credential
	for _, c := range s.state.credentials {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type currencies Storage

func (r *currencies) List(ctx context.Context) ([]core.Currency, error) {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := []core.Currency{}
	for _, c := range s.state.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *currencies) Seed(ctx context.Context, list []core.Currency) (int64, error) {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	var n int64
	for _, c := range list {
		if _, ok := s.state.currencies[c.ID]; ok {
			continue
		}
		s.state.currencies[c.ID] = c
		n++
	}
	return n, nil
}

type bankAccounts Storage

func (r *bankAccounts) Create(ctx context.Context, account *core.BankAccount) (int64, error) {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	if _, ok := s.state.currencies[account.Currency]; !ok {
		return 0, core.NewValidationError(core.Issue{Field: "currency", Message: "unknown currency"})
	}
	a := *account
	a.ID = s.state.nextID()
	a.CreatedAt = s.now()
	s.state.bankAccounts[a.ID] = a
	return a.ID, nil
}

func (r *bankAccounts) ListByUser(ctx context.Context, userID string) ([]core.BankAccount, error) {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := []core.BankAccount{}
	for _, a := range s.state.bankAccounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *bankAccounts) Delete(ctx context.Context, userID string, id int64) error {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	a, ok := s.state.bankAccounts[id]
	if !ok || a.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.state.bankAccounts, id)
	return nil
}

type labels Storage

func (r *labels) Create(ctx context.Context, label *core.Label) (int64, error) {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	l := *label
	l.ID = s.state.nextID()
	s.state.labels[l.ID] = l
	return l.ID, nil
}

func (r *labels) ListByUser(ctx context.Context, userID string) ([]core.Label, error) {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := []core.Label{}
	for _, l := range s.state.labels {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type merchants Storage

func (s *state) labelsFor(ids []int64) []core.Label {
	out := []core.Label{}
	for _, id := range ids {
		if l, ok := s.labels[id]; ok {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *merchants) ListPresets(ctx context.Context) ([]core.Merchant, error) {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := []core.Merchant{}
	for id, m := range s.state.presets {
		m.DefaultLabels = s.state.labelsFor(s.state.presetLabels[id])
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *merchants) ListByUser(ctx context.Context, userID string) ([]core.UserMerchant, error) {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := []core.UserMerchant{}
	for id, um := range s.state.userMerchant {
		if um.UserID != userID {
			continue
		}
		if um.MerchantID != nil {
			if p, ok := s.state.presets[*um.MerchantID]; ok {
				um.Underlying = &p
			}
		}
		um.DefaultLabels = s.state.labelsFor(s.state.merchantTags[id])
		out = append(out, um)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *merchants) CreateUserMerchant(ctx context.Context, m *core.UserMerchant) (int64, error) {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	if m.MerchantID != nil {
		if _, ok := s.state.presets[*m.MerchantID]; !ok {
			return 0, core.NewValidationError(core.Issue{Field: "underlyingMerchantId", Message: "unknown merchant"})
		}
	}
	um := *m
	um.ID = s.state.nextID()
	s.state.userMerchant[um.ID] = um
	return um.ID, nil
}

func (r *merchants) LinkLabels(ctx context.Context, userID string, userMerchantID int64, labelIDs []int64) error {
	s := (*Storage)(r)
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	seen := map[int64]bool{}
	for _, id := range labelIDs {
		l, ok := s.state.labels[id]
		if !ok || (l.UserID != "" && l.UserID != userID) {
			return core.NewValidationError(core.Issue{Field: "defaultLabels", Message: "unknown label"})
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		s.state.merchantTags[userMerchantID] = append(s.state.merchantTags[userMerchantID], id)
	}
	return nil
}
