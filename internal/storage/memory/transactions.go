package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/service/transaction"
)

// viewLocked joins t with its reference labels. Caller must hold s.mu.
func (s *Store) viewLocked(t ledger.Transaction) ledger.TransactionView {
	v := ledger.TransactionView{Transaction: t}
	if a, ok := s.accounts[t.AccountID]; ok {
		v.UserID = a.UserID
		v.AccountName = a.Name
	}
	if c, ok := s.categories[t.CategoryID]; ok {
		v.CategoryName = c.Name
	}
	if c, ok := s.currencies[t.CurrencyID]; ok {
		v.CurrencyCode = c.Code
	}
	return v
}

func (s *Store) GetTransaction(_ context.Context, id uuid.UUID) (ledger.TransactionView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return ledger.TransactionView{}, errs.ErrNotFound
	}
	return s.viewLocked(t), nil
}

// userViewsLocked returns the user's transactions newest first.
func (s *Store) userViewsLocked(userID uuid.UUID, keep func(ledger.TransactionView) bool) []ledger.TransactionView {
	out := make([]ledger.TransactionView, 0)
	for _, t := range s.transactions {
		v := s.viewLocked(t)
		if v.UserID != userID || !keep(v) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	return out
}

func matches(v ledger.TransactionView, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range []string{v.Name, v.Description, v.AccountName, v.CategoryName, v.CurrencyCode} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (s *Store) ListTransactions(_ context.Context, userID uuid.UUID, f ledger.TransactionFilter) (ledger.TransactionPage, error) {
	f = f.Normalize()
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	s.mu.RLock()
	all := s.userViewsLocked(userID, func(v ledger.TransactionView) bool { return matches(v, needle) })
	s.mu.RUnlock()

	page := ledger.TransactionPage{Total: len(all), Page: f.Page, Limit: f.Limit, Items: []ledger.TransactionView{}}
	from := f.Offset()
	if from >= len(all) {
		return page, nil
	}
	to := from + f.Limit
	if to > len(all) {
		to = len(all)
	}
	page.Items = all[from:to]
	return page, nil
}

func (s *Store) TransactionsBetween(_ context.Context, userID uuid.UUID, start, end time.Time) ([]ledger.TransactionView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userViewsLocked(userID, func(v ledger.TransactionView) bool {
		return !v.CreatedAt.Before(start) && !v.CreatedAt.After(end)
	}), nil
}

func (s *Store) UpdateTransactionSlip(_ context.Context, id uuid.UUID, slip string) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return ledger.Transaction{}, errs.ErrNotFound
	}
	t.SlipURL = slip
	t.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	s.transactions[id] = t
	return t, nil
}

// Within runs fn while holding the write lock. Writes are staged on the
// unit of work and copied into the maps only when fn returns nil.
func (s *Store) Within(ctx context.Context, fn func(tx transaction.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &unitOfWork{
		s:        s,
		balances: map[uuid.UUID]decimal.Decimal{},
		inserted: map[uuid.UUID]ledger.Transaction{},
		deleted:  map[uuid.UUID]struct{}{},
	}
	if err := fn(u); err != nil {
		return err
	}
	u.commitLocked()
	return nil
}

type unitOfWork struct {
	s        *Store
	balances map[uuid.UUID]decimal.Decimal
	inserted map[uuid.UUID]ledger.Transaction
	deleted  map[uuid.UUID]struct{}
}

func (u *unitOfWork) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal, requireNonNegative bool) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Decimal{}, err
	}
	a, ok := u.s.accounts[accountID]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("account %s: %w", accountID, errs.ErrNotFound)
	}
	cur, staged := u.balances[accountID]
	if !staged {
		cur = a.Balance
	}
	next := cur.Add(delta)
	if requireNonNegative && next.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: balance %s cannot cover %s", errs.ErrInsufficientFunds, cur, delta.Abs())
	}
	u.balances[accountID] = next
	return next, nil
}

func (u *unitOfWork) InsertTransaction(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Transaction{}, err
	}
	if _, ok := u.s.transactions[t.ID]; ok {
		return ledger.Transaction{}, fmt.Errorf("%w: transaction %s exists", errs.ErrConflict, t.ID)
	}
	if _, ok := u.inserted[t.ID]; ok {
		return ledger.Transaction{}, fmt.Errorf("%w: transaction %s exists", errs.ErrConflict, t.ID)
	}
	if _, ok := u.s.accounts[t.AccountID]; !ok {
		return ledger.Transaction{}, fmt.Errorf("account %s: %w", t.AccountID, errs.ErrNotFound)
	}
	if _, ok := u.s.categories[t.CategoryID]; !ok {
		return ledger.Transaction{}, fmt.Errorf("category %s: %w", t.CategoryID, errs.ErrNotFound)
	}
	if _, ok := u.s.currencies[t.CurrencyID]; !ok {
		return ledger.Transaction{}, fmt.Errorf("currency %s: %w", t.CurrencyID, errs.ErrNotFound)
	}
	u.inserted[t.ID] = t
	return t, nil
}

func (u *unitOfWork) DeleteTransaction(ctx context.Context, id uuid.UUID) (ledger.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Transaction{}, err
	}
	if t, ok := u.inserted[id]; ok {
		delete(u.inserted, id)
		return t, nil
	}
	if _, gone := u.deleted[id]; gone {
		return ledger.Transaction{}, errs.ErrNotFound
	}
	t, ok := u.s.transactions[id]
	if !ok {
		return ledger.Transaction{}, errs.ErrNotFound
	}
	u.deleted[id] = struct{}{}
	return t, nil
}

// commitLocked applies the staged writes. Caller must hold s.mu.
func (u *unitOfWork) commitLocked() {
	now := time.Now().UTC()
	for id, bal := range u.balances {
		a := u.s.accounts[id]
		a.Balance = bal
		a.UpdatedAt = now
		u.s.accounts[id] = a
	}
	for id := range u.deleted {
		delete(u.s.transactions, id)
	}
	for id, t := range u.inserted {
		u.s.transactions[id] = t
	}
}
