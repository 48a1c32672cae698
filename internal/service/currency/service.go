// Package currency manages the currency labels transactions are tagged with.
// Currencies are descriptive only; nothing converts between them.
package currency

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
)

type Repo interface {
	ListCurrencies(ctx context.Context) ([]ledger.Currency, error)
	GetCurrency(ctx context.Context, id uuid.UUID) (ledger.Currency, error)
}

type Writer interface {
	CreateCurrency(ctx context.Context, c ledger.Currency) (ledger.Currency, error)
	UpdateCurrency(ctx context.Context, c ledger.Currency) (ledger.Currency, error)
	DeleteCurrency(ctx context.Context, id uuid.UUID) error
}

// Patch lists optional changes; nil fields are left alone.
type Patch struct {
	Code *string
	Name *string
}

type Service interface {
	Create(ctx context.Context, code, name string) (ledger.Currency, error)
	List(ctx context.Context) ([]ledger.Currency, error)
	Get(ctx context.Context, id uuid.UUID) (ledger.Currency, error)
	Update(ctx context.Context, id uuid.UUID, p Patch) (ledger.Currency, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
	now    func() time.Time
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer, now: time.Now} }

// normalizeCode upper-cases code and requires 2-10 letters or digits.
func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", errs.Field("code", "is required")
	}
	if len(code) < 2 || len(code) > 10 {
		return "", errs.Field("code", "must be 2 to 10 characters")
	}
	for _, r := range code {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", errs.Field("code", "must contain only letters and digits")
		}
	}
	return code, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errs.Field("name", "is required")
	}
	return name, nil
}

func (s *service) Create(ctx context.Context, code, name string) (ledger.Currency, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return ledger.Currency{}, err
	}
	if name, err = normalizeName(name); err != nil {
		return ledger.Currency{}, err
	}
	now := s.now().UTC()
	return s.writer.CreateCurrency(ctx, ledger.Currency{ID: uuid.New(), Code: code, Name: name, CreatedAt: now, UpdatedAt: now})
}

func (s *service) List(ctx context.Context) ([]ledger.Currency, error) {
	return s.repo.ListCurrencies(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.Currency, error) {
	return s.repo.GetCurrency(ctx, id)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, p Patch) (ledger.Currency, error) {
	if p.Code == nil && p.Name == nil {
		return ledger.Currency{}, errs.Field("body", "no updatable fields provided")
	}
	c, err := s.repo.GetCurrency(ctx, id)
	if err != nil {
		return ledger.Currency{}, err
	}
	if p.Code != nil {
		if c.Code, err = normalizeCode(*p.Code); err != nil {
			return ledger.Currency{}, err
		}
	}
	if p.Name != nil {
		if c.Name, err = normalizeName(*p.Name); err != nil {
			return ledger.Currency{}, err
		}
	}
	c.UpdatedAt = s.now().UTC()
	return s.writer.UpdateCurrency(ctx, c)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.Field("id", "is required")
	}
	return s.writer.DeleteCurrency(ctx, id)
}
