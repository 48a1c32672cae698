package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/service/transaction"
)

const transactionColumns = `t.id, t.account_id, t.category_id, t.currency_id, t.name, t.description,
	t.amount::text, t.payment_type, t.slip_url, t.created_at, t.updated_at`

// viewFrom joins a transaction with the labels of its references.
const viewFrom = `
	from transactions t
	join accounts a on a.id = t.account_id
	join categories c on c.id = t.category_id
	join currencies cu on cu.id = t.currency_id`

const viewColumns = transactionColumns + `, a.user_id, a.name, c.name, cu.code`

func scanTransaction(row scanner, extra ...any) (ledger.Transaction, error) {
	var t ledger.Transaction
	var amount, paymentType string
	dest := append([]any{
		&t.ID, &t.AccountID, &t.CategoryID, &t.CurrencyID, &t.Name, &t.Description,
		&amount, &paymentType, &t.SlipURL, &t.CreatedAt, &t.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return ledger.Transaction{}, err
	}
	d, err := parseDecimal(amount)
	if err != nil {
		return ledger.Transaction{}, err
	}
	t.Amount = d
	t.PaymentType = ledger.PaymentType(paymentType)
	return t, nil
}

func scanView(row scanner) (ledger.TransactionView, error) {
	var v ledger.TransactionView
	t, err := scanTransaction(row, &v.UserID, &v.AccountName, &v.CategoryName, &v.CurrencyCode)
	if err != nil {
		return ledger.TransactionView{}, err
	}
	v.Transaction = t
	return v, nil
}

func collectViews(rows pgx.Rows, op string) ([]ledger.TransactionView, error) {
	defer rows.Close()
	out := make([]ledger.TransactionView, 0)
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		out = append(out, v)
	}
	return out, mapErr(op, rows.Err())
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (ledger.TransactionView, error) {
	v, err := scanView(s.pool.QueryRow(ctx, `select `+viewColumns+viewFrom+` where t.id = $1`, id))
	return v, mapErr("get transaction", err)
}

// ListTransactions pages through the user's transactions newest first.
func (s *Store) ListTransactions(ctx context.Context, userID uuid.UUID, f ledger.TransactionFilter) (ledger.TransactionPage, error) {
	f = f.Normalize()
	where := ` where a.user_id = $1`
	args := []any{userID}
	if needle := strings.TrimSpace(f.Search); needle != "" {
		args = append(args, likePattern(needle))
		where += ` and (t.name ilike $2 or t.description ilike $2 or a.name ilike $2 or c.name ilike $2 or cu.code ilike $2)`
	}
	page := ledger.TransactionPage{Page: f.Page, Limit: f.Limit}
	if err := s.pool.QueryRow(ctx, `select count(*)`+viewFrom+where, args...).Scan(&page.Total); err != nil {
		return ledger.TransactionPage{}, mapErr("count transactions", err)
	}
	n := len(args)
	rows, err := s.pool.Query(ctx,
		`select `+viewColumns+viewFrom+where+
			fmt.Sprintf(` order by t.created_at desc, t.id desc limit $%d offset $%d`, n+1, n+2),
		append(args, f.Limit, f.Offset())...)
	if err != nil {
		return ledger.TransactionPage{}, mapErr("list transactions", err)
	}
	items, err := collectViews(rows, "list transactions")
	if err != nil {
		return ledger.TransactionPage{}, err
	}
	page.Items = items
	return page, nil
}

// TransactionsBetween returns the user's transactions with start <= created_at <= end.
func (s *Store) TransactionsBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]ledger.TransactionView, error) {
	rows, err := s.pool.Query(ctx, `select `+viewColumns+viewFrom+`
		where a.user_id = $1 and t.created_at >= $2 and t.created_at <= $3
		order by t.created_at desc, t.id desc`, userID, start, end)
	if err != nil {
		return nil, mapErr("transactions between", err)
	}
	return collectViews(rows, "transactions between")
}

func (s *Store) UpdateTransactionSlip(ctx context.Context, id uuid.UUID, slip string) (ledger.Transaction, error) {
	t, err := scanTransaction(s.pool.QueryRow(ctx, `
		update transactions t set slip_url = $2, updated_at = date_trunc('milliseconds', now())
		where t.id = $1
		returning `+transactionColumns, id, slip))
	return t, mapErr("update transaction slip", err)
}

// Within runs fn inside one database transaction, committing only when fn returns nil.
func (s *Store) Within(ctx context.Context, fn func(tx transaction.Tx) error) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&unitOfWork{tx: tx})
	})
	return errs.Storage("unit of work", err)
}

type unitOfWork struct {
	tx pgx.Tx
}

// AdjustBalance applies delta in one conditional update. The row lock serializes
// concurrent writers and the non-negative guard is re-evaluated against the locked row.
func (u *unitOfWork) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal, requireNonNegative bool) (decimal.Decimal, error) {
	var raw string
	err := u.tx.QueryRow(ctx, `
		update accounts
		set balance = balance + $2::numeric, updated_at = now()
		where id = $1 and (not $3::boolean or balance + $2::numeric >= 0)
		returning balance::text
	`, accountID, delta.String(), requireNonNegative).Scan(&raw)
	if err == nil {
		return parseDecimal(raw)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Decimal{}, mapErr("adjust balance", err)
	}
	var balance string
	err = u.tx.QueryRow(ctx, `select balance::text from accounts where id = $1`, accountID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Decimal{}, fmt.Errorf("account %s: %w", accountID, errs.ErrNotFound)
	}
	if err != nil {
		return decimal.Decimal{}, mapErr("adjust balance", err)
	}
	return decimal.Decimal{}, fmt.Errorf("%w: balance %s cannot cover %s", errs.ErrInsufficientFunds, balance, delta.Abs())
}

func (u *unitOfWork) InsertTransaction(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	_, err := u.tx.Exec(ctx, `
		insert into transactions
			(id, account_id, category_id, currency_id, name, description, amount, payment_type, slip_url, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7::numeric,$8,$9,$10,$11)
	`, t.ID, t.AccountID, t.CategoryID, t.CurrencyID, t.Name, t.Description, t.Amount.String(),
		string(t.PaymentType), t.SlipURL, t.CreatedAt, t.UpdatedAt)
	if isForeignKeyViolation(err) {
		return ledger.Transaction{}, fmt.Errorf("transaction reference: %w", errs.ErrNotFound)
	}
	if err != nil {
		return ledger.Transaction{}, mapErr("insert transaction", err)
	}
	return t, nil
}

func (u *unitOfWork) DeleteTransaction(ctx context.Context, id uuid.UUID) (ledger.Transaction, error) {
	t, err := scanTransaction(u.tx.QueryRow(ctx, `
		delete from transactions t
		where t.id = $1
		returning `+transactionColumns, id))
	return t, mapErr("delete transaction", err)
}
