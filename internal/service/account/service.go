// Package account implements the account service rules: required identity fields,
// non-negative balances and the opening balance bookkeeping that keeps
// balance == opening + signed sum of transactions true across direct edits.
package account

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
)

type Repo interface {
	GetUser(ctx context.Context, id uuid.UUID) (ledger.User, error)
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]ledger.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (ledger.Account, error)
	// SignedTotal sums +income and -expense over the account's transactions.
	SignedTotal(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
}

type Writer interface {
	CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	// UpdateAccount writes name, number and status. A non-nil balance is applied in
	// the same write and shifts the opening balance by the same delta.
	UpdateAccount(ctx context.Context, a ledger.Account, balance *decimal.Decimal) (ledger.Account, error)
	// DeleteAccount refuses with errs.ErrConflict while transactions reference the account.
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type CreateInput struct {
	UserID         uuid.UUID
	Name           string
	Number         string
	OpeningBalance string
}

// Patch lists optional changes; nil fields are left alone.
type Patch struct {
	Name    *string
	Number  *string
	Balance *string
}

// Reconciliation compares the stored balance with the one implied by history.
type Reconciliation struct {
	AccountID      uuid.UUID
	OpeningBalance decimal.Decimal
	SignedTotal    decimal.Decimal
	Expected       decimal.Decimal
	Balance        decimal.Decimal
	Consistent     bool
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (ledger.Account, error)
	List(ctx context.Context, userID uuid.UUID) ([]ledger.Account, error)
	Get(ctx context.Context, id uuid.UUID) (ledger.Account, error)
	Update(ctx context.Context, id uuid.UUID, p Patch) (ledger.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reconcile(ctx context.Context, id uuid.UUID) (Reconciliation, error)
}

type service struct {
	repo   Repo
	writer Writer
	now    func() time.Time
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer, now: time.Now} }

func parseBalance(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errs.Field(field, "must be a number")
	}
	if d.IsNegative() {
		return decimal.Decimal{}, errs.Field(field, "must not be negative")
	}
	return d, nil
}

func (s *service) Create(ctx context.Context, in CreateInput) (ledger.Account, error) {
	if in.UserID == uuid.Nil {
		return ledger.Account{}, errs.Field("user_id", "is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ledger.Account{}, errs.Field("name", "is required")
	}
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return ledger.Account{}, errs.Field("number", "is required")
	}
	opening, err := parseBalance("opening_balance", in.OpeningBalance)
	if err != nil {
		return ledger.Account{}, err
	}
	if _, err := s.repo.GetUser(ctx, in.UserID); err != nil {
		return ledger.Account{}, err
	}
	now := s.now().UTC()
	return s.writer.CreateAccount(ctx, ledger.Account{
		ID:             uuid.New(),
		UserID:         in.UserID,
		Name:           name,
		Number:         number,
		Status:         ledger.StatusActive,
		OpeningBalance: opening,
		Balance:        opening,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ledger.Account, error) {
	if userID == uuid.Nil {
		return nil, errs.Field("user_id", "is required")
	}
	return s.repo.ListAccounts(ctx, userID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// Update applies name/number changes and a direct balance edit as one store write.
func (s *service) Update(ctx context.Context, id uuid.UUID, p Patch) (ledger.Account, error) {
	if p.Name == nil && p.Number == nil && p.Balance == nil {
		return ledger.Account{}, errs.Field("body", "no updatable fields provided")
	}
	var balance *decimal.Decimal
	if p.Balance != nil {
		if strings.TrimSpace(*p.Balance) == "" {
			return ledger.Account{}, errs.Field("balance", "must not be empty")
		}
		b, err := parseBalance("balance", *p.Balance)
		if err != nil {
			return ledger.Account{}, err
		}
		balance = &b
	}
	next, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return ledger.Account{}, err
	}
	if p.Name != nil {
		if next.Name = strings.TrimSpace(*p.Name); next.Name == "" {
			return ledger.Account{}, errs.Field("name", "must not be empty")
		}
	}
	if p.Number != nil {
		if next.Number = strings.TrimSpace(*p.Number); next.Number == "" {
			return ledger.Account{}, errs.Field("number", "must not be empty")
		}
	}
	next.UpdatedAt = s.now().UTC()
	return s.writer.UpdateAccount(ctx, next, balance)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.Field("id", "is required")
	}
	return s.writer.DeleteAccount(ctx, id)
}

func (s *service) Reconcile(ctx context.Context, id uuid.UUID) (Reconciliation, error) {
	a, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return Reconciliation{}, err
	}
	total, err := s.repo.SignedTotal(ctx, id)
	if err != nil {
		return Reconciliation{}, err
	}
	expected := a.OpeningBalance.Add(total)
	return Reconciliation{
		AccountID:      a.ID,
		OpeningBalance: a.OpeningBalance,
		SignedTotal:    total,
		Expected:       expected,
		Balance:        a.Balance,
		Consistent:     expected.Equal(a.Balance),
	}, nil
}
