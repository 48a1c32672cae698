// Package transaction implements the ledger engine: posting and removing
// income/expense transactions together with their account balance effect.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
)

const maxSlipLen = 2048

// Repo defines read operations needed by the service.
type Repo interface {
	GetAccount(ctx context.Context, id uuid.UUID) (ledger.Account, error)
	GetCategory(ctx context.Context, id uuid.UUID) (ledger.Category, error)
	GetCurrency(ctx context.Context, id uuid.UUID) (ledger.Currency, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (ledger.TransactionView, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, f ledger.TransactionFilter) (ledger.TransactionPage, error)
}

// Writer defines writes that do not touch balances.
type Writer interface {
	UpdateTransactionSlip(ctx context.Context, id uuid.UUID, slip string) (ledger.Transaction, error)
}

// Tx is the write surface available inside a unit of work.
type Tx interface {
	// AdjustBalance adds delta to the account balance and returns the new balance.
	// With requireNonNegative the change is refused with errs.ErrInsufficientFunds
	// when the result would drop below zero.
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal, requireNonNegative bool) (decimal.Decimal, error)
	InsertTransaction(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error)
	// DeleteTransaction removes the row and returns it as it was.
	DeleteTransaction(ctx context.Context, id uuid.UUID) (ledger.Transaction, error)
}

// UnitOfWork commits every write made through Tx when fn returns nil and none otherwise.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(tx Tx) error) error
}

// Sanitizer masks unwanted words in free text.
type Sanitizer interface {
	Clean(text string) string
}

// CreateInput carries the raw fields of a new transaction.
type CreateInput struct {
	Name        string
	Amount      string
	Description string
	AccountID   uuid.UUID
	CurrencyID  uuid.UUID
	CategoryID  uuid.UUID
	PaymentType string
	SlipURL     string
}

type Service interface {
	// Validate runs the field checks Create performs before it touches storage.
	Validate(in CreateInput) error
	Create(ctx context.Context, in CreateInput) (ledger.TransactionView, error)
	Delete(ctx context.Context, id uuid.UUID) (ledger.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (ledger.TransactionView, error)
	List(ctx context.Context, userID uuid.UUID, f ledger.TransactionFilter) (ledger.TransactionPage, error)
	UpdateSlip(ctx context.Context, id uuid.UUID, slip string) (ledger.TransactionView, error)
}

type service struct {
	repo   Repo
	writer Writer
	uow    UnitOfWork
	clean  Sanitizer
	now    func() time.Time
}

func New(repo Repo, writer Writer, uow UnitOfWork, clean Sanitizer) Service {
	return &service{repo: repo, writer: writer, uow: uow, clean: clean, now: time.Now}
}

// validated is a CreateInput that passed field checks.
type validated struct {
	amount      decimal.Decimal
	paymentType ledger.PaymentType
}

// validate checks fields in a fixed order and stops at the first problem.
func validate(in CreateInput) (validated, error) {
	var v validated
	if strings.TrimSpace(in.Name) == "" {
		return v, errs.Field("name", "is required")
	}
	raw := strings.TrimSpace(in.Amount)
	if raw == "" {
		return v, errs.Field("amount", "is required")
	}
	amt, err := decimal.NewFromString(raw)
	if err != nil {
		return v, errs.Field("amount", "must be a number")
	}
	if !amt.IsPositive() {
		return v, errs.Field("amount", "must be greater than zero")
	}
	if strings.TrimSpace(in.Description) == "" {
		return v, errs.Field("description", "is required")
	}
	if in.AccountID == uuid.Nil {
		return v, errs.Field("account_id", "is required")
	}
	if in.CurrencyID == uuid.Nil {
		return v, errs.Field("currency_id", "is required")
	}
	if in.CategoryID == uuid.Nil {
		return v, errs.Field("category_id", "is required")
	}
	if strings.TrimSpace(in.PaymentType) == "" {
		return v, errs.Field("payment_type", "is required")
	}
	pt, ok := ledger.ParsePaymentType(in.PaymentType)
	if !ok {
		return v, errs.Field("payment_type", "must be income or expense")
	}
	if len(in.SlipURL) > maxSlipLen {
		return v, errs.Field("slip_url", "is too long")
	}
	v.amount = amt
	v.paymentType = pt
	return v, nil
}

func (s *service) Validate(in CreateInput) error {
	_, err := validate(in)
	return err
}

type references struct {
	account  ledger.Account
	category ledger.Category
	currency ledger.Currency
}

// resolve looks up all three references before anything is written.
func (s *service) resolve(ctx context.Context, in CreateInput) (references, error) {
	var refs references
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.repo.GetAccount(gctx, in.AccountID)
		if err != nil {
			return fmt.Errorf("account %s: %w", in.AccountID, err)
		}
		refs.account = a
		return nil
	})
	g.Go(func() error {
		c, err := s.repo.GetCategory(gctx, in.CategoryID)
		if err != nil {
			return fmt.Errorf("category %s: %w", in.CategoryID, err)
		}
		refs.category = c
		return nil
	})
	g.Go(func() error {
		c, err := s.repo.GetCurrency(gctx, in.CurrencyID)
		if err != nil {
			return fmt.Errorf("currency %s: %w", in.CurrencyID, err)
		}
		refs.currency = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return references{}, err
	}
	return refs, nil
}

func (s *service) Create(ctx context.Context, in CreateInput) (ledger.TransactionView, error) {
	v, err := validate(in)
	if err != nil {
		observe(in.PaymentType, err)
		return ledger.TransactionView{}, err
	}
	refs, err := s.resolve(ctx, in)
	if err != nil {
		observe(string(v.paymentType), err)
		return ledger.TransactionView{}, err
	}

	// summary windows end at .999, so stored times carry millisecond precision
	now := s.now().UTC().Truncate(time.Millisecond)
	t := ledger.Transaction{
		ID:          uuid.New(),
		AccountID:   refs.account.ID,
		CategoryID:  refs.category.ID,
		CurrencyID:  refs.currency.ID,
		Name:        s.sanitize(strings.TrimSpace(in.Name)),
		Description: s.sanitize(strings.TrimSpace(in.Description)),
		Amount:      v.amount,
		PaymentType: v.paymentType,
		SlipURL:     strings.TrimSpace(in.SlipURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var created ledger.Transaction
	err = s.uow.Within(ctx, func(tx Tx) error {
		if _, err := tx.AdjustBalance(ctx, t.AccountID, t.SignedAmount(), t.PaymentType == ledger.PaymentExpense); err != nil {
			return err
		}
		out, err := tx.InsertTransaction(ctx, t)
		if err != nil {
			return err
		}
		created = out
		return nil
	})
	observe(string(v.paymentType), err)
	if err != nil {
		return ledger.TransactionView{}, err
	}
	return ledger.TransactionView{
		Transaction:  created,
		UserID:       refs.account.UserID,
		AccountName:  refs.account.Name,
		CategoryName: refs.category.Name,
		CurrencyCode: refs.currency.Code,
	}, nil
}

// Delete removes a transaction and reverses its balance effect in one unit of work.
// The reversal is not subject to the overdraft check.
func (s *service) Delete(ctx context.Context, id uuid.UUID) (ledger.Transaction, error) {
	if id == uuid.Nil {
		return ledger.Transaction{}, errs.Field("id", "is required")
	}
	var removed ledger.Transaction
	err := s.uow.Within(ctx, func(tx Tx) error {
		t, err := tx.DeleteTransaction(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.AdjustBalance(ctx, t.AccountID, t.SignedAmount().Neg(), false); err != nil {
			return err
		}
		removed = t
		return nil
	})
	if err != nil {
		return ledger.Transaction{}, err
	}
	return removed, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.TransactionView, error) {
	if id == uuid.Nil {
		return ledger.TransactionView{}, errs.Field("id", "is required")
	}
	return s.repo.GetTransaction(ctx, id)
}

func (s *service) List(ctx context.Context, userID uuid.UUID, f ledger.TransactionFilter) (ledger.TransactionPage, error) {
	if userID == uuid.Nil {
		return ledger.TransactionPage{}, errs.Field("user_id", "is required")
	}
	f = f.Normalize()
	f.Search = strings.TrimSpace(f.Search)
	page, err := s.repo.ListTransactions(ctx, userID, f)
	if err != nil {
		return ledger.TransactionPage{}, err
	}
	page.Page, page.Limit = f.Page, f.Limit
	if page.Items == nil {
		page.Items = []ledger.TransactionView{}
	}
	return page, nil
}

// UpdateSlip replaces the receipt reference, the only field editable after creation.
func (s *service) UpdateSlip(ctx context.Context, id uuid.UUID, slip string) (ledger.TransactionView, error) {
	slip = strings.TrimSpace(slip)
	if len(slip) > maxSlipLen {
		return ledger.TransactionView{}, errs.Field("slip_url", "is too long")
	}
	if _, err := s.writer.UpdateTransactionSlip(ctx, id, slip); err != nil {
		return ledger.TransactionView{}, err
	}
	return s.repo.GetTransaction(ctx, id)
}

func (s *service) sanitize(text string) string {
	if s.clean == nil {
		return text
	}
	return s.clean.Clean(text)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "posted"
	case errors.Is(err, errs.ErrInvalid):
		return "invalid"
	case errors.Is(err, errs.ErrNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "error"
	}
}
