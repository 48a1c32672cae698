package category

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/slug"
)

const maxNameLen = 100

type Repo interface {
	ListCategories(ctx context.Context) ([]ledger.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (ledger.Category, error)
}

// Writer persists categories. Stores reject two names with the same slug with errs.ErrConflict
// and refuse DeleteCategory with errs.ErrConflict while transactions use the category.
type Writer interface {
	CreateCategory(ctx context.Context, c ledger.Category) (ledger.Category, error)
	UpdateCategory(ctx context.Context, c ledger.Category) (ledger.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type Service interface {
	Create(ctx context.Context, name string) (ledger.Category, error)
	List(ctx context.Context) ([]ledger.Category, error)
	Get(ctx context.Context, id uuid.UUID) (ledger.Category, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (ledger.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
	now    func() time.Time
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer, now: time.Now} }

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", errs.Field("name", "is required")
	case len(name) > maxNameLen:
		return "", errs.Field("name", "is too long")
	case slug.Slugify(name) == "":
		return "", errs.Field("name", "must contain a letter or digit")
	}
	return name, nil
}

func (s *service) Create(ctx context.Context, name string) (ledger.Category, error) {
	name, err := validName(name)
	if err != nil {
		return ledger.Category{}, err
	}
	now := s.now().UTC()
	return s.writer.CreateCategory(ctx, ledger.Category{ID: uuid.New(), Name: name, CreatedAt: now, UpdatedAt: now})
}

func (s *service) List(ctx context.Context) ([]ledger.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *service) Rename(ctx context.Context, id uuid.UUID, name string) (ledger.Category, error) {
	name, err := validName(name)
	if err != nil {
		return ledger.Category{}, err
	}
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return ledger.Category{}, err
	}
	c.Name = name
	c.UpdatedAt = s.now().UTC()
	return s.writer.UpdateCategory(ctx, c)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.Field("id", "is required")
	}
	return s.writer.DeleteCategory(ctx, id)
}
