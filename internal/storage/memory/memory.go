// Package memory provides an in-memory storage gateway used for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/slug"
)

// Store keeps every collection in maps guarded by one RWMutex.
// Uniqueness and reference rules mirror the Postgres schema.
type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]ledger.User
	accounts     map[uuid.UUID]ledger.Account
	categories   map[uuid.UUID]ledger.Category
	currencies   map[uuid.UUID]ledger.Currency
	transactions map[uuid.UUID]ledger.Transaction
}

// New constructs an empty in-memory store.
func New() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Seed helpers for local dev/tests. They bypass validation.
func (s *Store) SeedUser(u ledger.User)         { s.mu.Lock(); s.users[u.ID] = u; s.mu.Unlock() }
func (s *Store) SeedAccount(a ledger.Account)   { s.mu.Lock(); s.accounts[a.ID] = a; s.mu.Unlock() }
func (s *Store) SeedCategory(c ledger.Category) { s.mu.Lock(); s.categories[c.ID] = c; s.mu.Unlock() }
func (s *Store) SeedCurrency(c ledger.Currency) { s.mu.Lock(); s.currencies[c.ID] = c; s.mu.Unlock() }

// SeedTransaction stores t as-is without touching the account balance.
func (s *Store) SeedTransaction(t ledger.Transaction) {
	s.mu.Lock()
	s.transactions[t.ID] = t
	s.mu.Unlock()
}

func (s *Store) Reset() {
	s.mu.Lock()
	s.users = map[uuid.UUID]ledger.User{}
	s.accounts = map[uuid.UUID]ledger.Account{}
	s.categories = map[uuid.UUID]ledger.Category{}
	s.currencies = map[uuid.UUID]ledger.Currency{}
	s.transactions = map[uuid.UUID]ledger.Transaction{}
	s.mu.Unlock()
}

// --- Users ---

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return ledger.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return ledger.User{}, errs.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, u ledger.User) (ledger.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Username == u.Username {
			return ledger.User{}, fmt.Errorf("%w: username already taken", errs.ErrConflict)
		}
	}
	s.users[u.ID] = u
	return u, nil
}

// DeleteUser cascades to the user's accounts and their transactions.
func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return errs.ErrNotFound
	}
	for aid, a := range s.accounts {
		if a.UserID != id {
			continue
		}
		for tid, t := range s.transactions {
			if t.AccountID == aid {
				delete(s.transactions, tid)
			}
		}
		delete(s.accounts, aid)
	}
	delete(s.users, id)
	return nil
}

// --- Accounts ---

func (s *Store) ListAccounts(_ context.Context, userID uuid.UUID) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Account, 0)
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) GetAccount(_ context.Context, id uuid.UUID) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return ledger.Account{}, errs.ErrNotFound
	}
	return a, nil
}

// accountClashLocked reports a name or number already used by another account.
func (s *Store) accountClashLocked(a ledger.Account) error {
	for _, other := range s.accounts {
		if other.ID == a.ID {
			continue
		}
		if other.Name == a.Name {
			return fmt.Errorf("%w: account name already in use", errs.ErrConflict)
		}
		if other.Number == a.Number {
			return fmt.Errorf("%w: account number already in use", errs.ErrConflict)
		}
	}
	return nil
}

func (s *Store) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[a.UserID]; !ok {
		return ledger.Account{}, errs.ErrNotFound
	}
	if err := s.accountClashLocked(a); err != nil {
		return ledger.Account{}, err
	}
	s.accounts[a.ID] = a
	return a, nil
}

// UpdateAccount persists name, number and status. A non-nil balance overwrites
// the balance in the same write and moves the opening balance by the same delta.
func (s *Store) UpdateAccount(_ context.Context, a ledger.Account, balance *decimal.Decimal) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accounts[a.ID]
	if !ok {
		return ledger.Account{}, errs.ErrNotFound
	}
	if err := s.accountClashLocked(a); err != nil {
		return ledger.Account{}, err
	}
	cur.Name, cur.Number, cur.Status, cur.UpdatedAt = a.Name, a.Number, a.Status, a.UpdatedAt
	if balance != nil {
		cur.OpeningBalance = cur.OpeningBalance.Add(balance.Sub(cur.Balance))
		cur.Balance = *balance
	}
	s.accounts[a.ID] = cur
	return cur, nil
}

func (s *Store) DeleteAccount(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return errs.ErrNotFound
	}
	for _, t := range s.transactions {
		if t.AccountID == id {
			return fmt.Errorf("%w: account has transactions", errs.ErrConflict)
		}
	}
	delete(s.accounts, id)
	return nil
}

func (s *Store) SignedTotal(_ context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, t := range s.transactions {
		if t.AccountID == accountID {
			total = total.Add(t.SignedAmount())
		}
	}
	return total, nil
}

// --- Categories ---

func (s *Store) ListCategories(_ context.Context) ([]ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id uuid.UUID) (ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return ledger.Category{}, errs.ErrNotFound
	}
	return c, nil
}

func (s *Store) categoryClashLocked(c ledger.Category) error {
	for _, other := range s.categories {
		if other.ID != c.ID && slug.Same(other.Name, c.Name) {
			return fmt.Errorf("%w: category %q already exists", errs.ErrConflict, other.Name)
		}
	}
	return nil
}

func (s *Store) CreateCategory(_ context.Context, c ledger.Category) (ledger.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.categoryClashLocked(c); err != nil {
		return ledger.Category{}, err
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c ledger.Category) (ledger.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return ledger.Category{}, errs.ErrNotFound
	}
	if err := s.categoryClashLocked(c); err != nil {
		return ledger.Category{}, err
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return errs.ErrNotFound
	}
	for _, t := range s.transactions {
		if t.CategoryID == id {
			return fmt.Errorf("%w: category is used by transactions", errs.ErrConflict)
		}
	}
	delete(s.categories, id)
	return nil
}

// --- Currencies ---

func (s *Store) ListCurrencies(_ context.Context) ([]ledger.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Currency, 0, len(s.currencies))
	for _, c := range s.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) GetCurrency(_ context.Context, id uuid.UUID) (ledger.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.currencies[id]
	if !ok {
		return ledger.Currency{}, errs.ErrNotFound
	}
	return c, nil
}

func (s *Store) currencyClashLocked(c ledger.Currency) error {
	for _, other := range s.currencies {
		if other.ID == c.ID {
			continue
		}
		if other.Code == c.Code {
			return fmt.Errorf("%w: currency code %s already exists", errs.ErrConflict, c.Code)
		}
		if strings.EqualFold(other.Name, c.Name) {
			return fmt.Errorf("%w: currency name already exists", errs.ErrConflict)
		}
	}
	return nil
}

func (s *Store) CreateCurrency(_ context.Context, c ledger.Currency) (ledger.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.currencyClashLocked(c); err != nil {
		return ledger.Currency{}, err
	}
	s.currencies[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCurrency(_ context.Context, c ledger.Currency) (ledger.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.currencies[c.ID]; !ok {
		return ledger.Currency{}, errs.ErrNotFound
	}
	if err := s.currencyClashLocked(c); err != nil {
		return ledger.Currency{}, err
	}
	s.currencies[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCurrency(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.currencies[id]; !ok {
		return errs.ErrNotFound
	}
	for _, t := range s.transactions {
		if t.CurrencyID == id {
			return fmt.Errorf("%w: currency is used by transactions", errs.ErrConflict)
		}
	}
	delete(s.currencies, id)
	return nil
}
