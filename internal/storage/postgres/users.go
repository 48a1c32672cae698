package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
)

const userColumns = `id, username, password_hash, first_name, last_name, status, created_at, updated_at`

func scanUser(row scanner) (ledger.User, error) {
	var u ledger.User
	var status string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return ledger.User{}, err
	}
	u.Status = ledger.Status(status)
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (ledger.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `select `+userColumns+` from users where id = $1`, id))
	return u, mapErr("get user", err)
}

func (s *Store) UserByUsername(ctx context.Context, username string) (ledger.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `select `+userColumns+` from users where username = $1`, username))
	return u, mapErr("get user by username", err)
}

func (s *Store) CreateUser(ctx context.Context, u ledger.User) (ledger.User, error) {
	_, err := s.pool.Exec(ctx, `
		insert into users (id, username, password_hash, first_name, last_name, status, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, u.ID, u.Username, u.PasswordHash, u.FirstName, u.LastName, string(u.Status), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return ledger.User{}, mapErr("create user", err)
	}
	return u, nil
}

// DeleteUser relies on on-delete-cascade to drop accounts and their transactions.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from users where id = $1`, id)
	if err != nil {
		return mapErr("delete user", err)
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
