package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
)

const accountColumns = `id, user_id, name, number, status, opening_balance::text, balance::text, created_at, updated_at`

func scanAccount(row scanner) (ledger.Account, error) {
	var a ledger.Account
	var status, opening, balance string
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Number, &status, &opening, &balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return ledger.Account{}, err
	}
	var err error
	if a.OpeningBalance, err = parseDecimal(opening); err != nil {
		return ledger.Account{}, err
	}
	if a.Balance, err = parseDecimal(balance); err != nil {
		return ledger.Account{}, err
	}
	a.Status = ledger.Status(status)
	return a, nil
}

// ListAccounts returns all accounts for a user, oldest first.
func (s *Store) ListAccounts(ctx context.Context, userID uuid.UUID) ([]ledger.Account, error) {
	rows, err := s.pool.Query(ctx, `
		select `+accountColumns+`
		from accounts
		where user_id = $1
		order by created_at, name
	`, userID)
	if err != nil {
		return nil, mapErr("list accounts", err)
	}
	defer rows.Close()
	out := make([]ledger.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, mapErr("list accounts", err)
		}
		out = append(out, a)
	}
	return out, mapErr("list accounts", rows.Err())
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (ledger.Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx, `select `+accountColumns+` from accounts where id = $1`, id))
	return a, mapErr("get account", err)
}

func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	_, err := s.pool.Exec(ctx, `
		insert into accounts (id, user_id, name, number, status, opening_balance, balance, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6::numeric,$7::numeric,$8,$9)
	`, a.ID, a.UserID, a.Name, a.Number, string(a.Status), a.OpeningBalance.String(), a.Balance.String(), a.CreatedAt, a.UpdatedAt)
	if isForeignKeyViolation(err) {
		return ledger.Account{}, fmt.Errorf("user %s: %w", a.UserID, errs.ErrNotFound)
	}
	if err != nil {
		return ledger.Account{}, mapErr("create account", err)
	}
	return a, nil
}

// UpdateAccount persists name, number and status. A non-nil balance overwrites
// the balance in the same statement and moves the opening balance by the same delta.
func (s *Store) UpdateAccount(ctx context.Context, a ledger.Account, balance *decimal.Decimal) (ledger.Account, error) {
	var next *string
	if balance != nil {
		v := balance.String()
		next = &v
	}
	out, err := scanAccount(s.pool.QueryRow(ctx, `
		update accounts
		set name = $2, number = $3, status = $4, updated_at = $5,
		    opening_balance = opening_balance + (coalesce($6::numeric, balance) - balance),
		    balance = coalesce($6::numeric, balance)
		where id = $1
		returning `+accountColumns,
		a.ID, a.Name, a.Number, string(a.Status), a.UpdatedAt, next))
	return out, mapErr("update account", err)
}

// DeleteAccount refuses while any transaction references the account.
func (s *Store) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `
		delete from accounts a
		where a.id = $1
		  and not exists (select 1 from transactions t where t.account_id = a.id)
	`, id)
	if err != nil {
		return mapErr("delete account", err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, `select exists (select 1 from accounts where id = $1)`, id).Scan(&exists); err != nil {
		return mapErr("delete account", err)
	}
	if exists {
		return fmt.Errorf("%w: account has transactions", errs.ErrConflict)
	}
	return errs.ErrNotFound
}

// SignedTotal sums +income and -expense over the account's transactions.
func (s *Store) SignedTotal(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var raw string
	err := s.pool.QueryRow(ctx, `
		select coalesce(sum(case when payment_type = 'expense' then -amount else amount end), 0)::text
		from transactions
		where account_id = $1
	`, accountID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Decimal{}, mapErr("signed total", err)
	}
	return parseDecimal(raw)
}
