package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/slug"
)

// --- Categories ---

const categoryColumns = `id, name, created_at, updated_at`

func scanCategory(row scanner) (ledger.Category, error) {
	var c ledger.Category
	err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) ListCategories(ctx context.Context) ([]ledger.Category, error) {
	rows, err := s.pool.Query(ctx, `select `+categoryColumns+` from categories order by lower(name)`)
	if err != nil {
		return nil, mapErr("list categories", err)
	}
	defer rows.Close()
	out := make([]ledger.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, mapErr("list categories", err)
		}
		out = append(out, c)
	}
	return out, mapErr("list categories", rows.Err())
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (ledger.Category, error) {
	c, err := scanCategory(s.pool.QueryRow(ctx, `select `+categoryColumns+` from categories where id = $1`, id))
	return c, mapErr("get category", err)
}

// CreateCategory stores the slug alongside the name; the unique slug rejects near-duplicates.
func (s *Store) CreateCategory(ctx context.Context, c ledger.Category) (ledger.Category, error) {
	_, err := s.pool.Exec(ctx, `
		insert into categories (id, name, slug, created_at, updated_at)
		values ($1,$2,$3,$4,$5)
	`, c.ID, c.Name, slug.Slugify(c.Name), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return ledger.Category{}, mapErr("create category", err)
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c ledger.Category) (ledger.Category, error) {
	out, err := scanCategory(s.pool.QueryRow(ctx, `
		update categories set name = $2, slug = $3, updated_at = $4
		where id = $1
		returning `+categoryColumns,
		c.ID, c.Name, slug.Slugify(c.Name), c.UpdatedAt))
	return out, mapErr("update category", err)
}

// DeleteCategory fails with errs.ErrConflict through the restricting foreign key.
func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from categories where id = $1`, id)
	if err != nil {
		return mapErr("delete category", err)
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// --- Currencies ---

const currencyColumns = `id, code, name, created_at, updated_at`

func scanCurrency(row scanner) (ledger.Currency, error) {
	var c ledger.Currency
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) ListCurrencies(ctx context.Context) ([]ledger.Currency, error) {
	rows, err := s.pool.Query(ctx, `select `+currencyColumns+` from currencies order by code`)
	if err != nil {
		return nil, mapErr("list currencies", err)
	}
	defer rows.Close()
	out := make([]ledger.Currency, 0)
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, mapErr("list currencies", err)
		}
		out = append(out, c)
	}
	return out, mapErr("list currencies", rows.Err())
}

func (s *Store) GetCurrency(ctx context.Context, id uuid.UUID) (ledger.Currency, error) {
	c, err := scanCurrency(s.pool.QueryRow(ctx, `select `+currencyColumns+` from currencies where id = $1`, id))
	return c, mapErr("get currency", err)
}

func (s *Store) CreateCurrency(ctx context.Context, c ledger.Currency) (ledger.Currency, error) {
	_, err := s.pool.Exec(ctx, `
		insert into currencies (id, code, name, created_at, updated_at)
		values ($1,$2,$3,$4,$5)
	`, c.ID, c.Code, c.Name, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return ledger.Currency{}, mapErr("create currency", err)
	}
	return c, nil
}

func (s *Store) UpdateCurrency(ctx context.Context, c ledger.Currency) (ledger.Currency, error) {
	out, err := scanCurrency(s.pool.QueryRow(ctx, `
		update currencies set code = $2, name = $3, updated_at = $4
		where id = $1
		returning `+currencyColumns,
		c.ID, c.Code, c.Name, c.UpdatedAt))
	return out, mapErr("update currency", err)
}

func (s *Store) DeleteCurrency(ctx context.Context, id uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from currencies where id = $1`, id)
	if err != nil {
		return mapErr("delete currency", err)
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
