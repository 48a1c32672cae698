// Package user registers identities and exchanges credentials for bearer tokens.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
)

const (
	minPasswordLen = 8
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordLen = 72
)

type Repo interface {
	GetUser(ctx context.Context, id uuid.UUID) (ledger.User, error)
	UserByUsername(ctx context.Context, username string) (ledger.User, error)
}

// Writer persists users. CreateUser reports a taken username with errs.ErrConflict.
type Writer interface {
	CreateUser(ctx context.Context, u ledger.User) (ledger.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(u ledger.User) (string, time.Time, error)
}

type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// Session is the result of a successful login.
type Session struct {
	User      ledger.User
	Token     string
	ExpiresAt time.Time
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (ledger.User, error)
	Login(ctx context.Context, username, password string) (Session, error)
	Get(ctx context.Context, id uuid.UUID) (ledger.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
	tokens TokenIssuer
	cost   int
	now    func() time.Time
}

// New builds the service. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func New(repo Repo, writer Writer, tokens TokenIssuer, cost int) Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &service{repo: repo, writer: writer, tokens: tokens, cost: cost, now: time.Now}
}

func normalizeUsername(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *service) Register(ctx context.Context, in RegisterInput) (ledger.User, error) {
	username := normalizeUsername(in.Username)
	switch {
	case username == "":
		return ledger.User{}, errs.Field("username", "is required")
	case utf8.RuneCountInString(username) < 3 || utf8.RuneCountInString(username) > 50:
		return ledger.User{}, errs.Field("username", "must be 3 to 50 characters")
	case strings.ContainsAny(username, " \t\n"):
		return ledger.User{}, errs.Field("username", "must not contain spaces")
	}
	if len(in.Password) < minPasswordLen {
		return ledger.User{}, errs.Field("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	if len(in.Password) > maxPasswordLen {
		return ledger.User{}, errs.Field("password", fmt.Sprintf("must be at most %d bytes", maxPasswordLen))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return ledger.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	return s.writer.CreateUser(ctx, ledger.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Status:       ledger.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Login answers every credential problem with the same errs.ErrUnauthorized.
func (s *service) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.repo.UserByUsername(ctx, normalizeUsername(username))
	if errors.Is(err, errs.ErrNotFound) {
		return Session{}, fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)
	}
	if u.Status != ledger.StatusActive {
		return Session{}, fmt.Errorf("%w: user is not active", errs.ErrUnauthorized)
	}
	tok, exp, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: tok, ExpiresAt: exp}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.User, error) {
	return s.repo.GetUser(ctx, id)
}

// Delete removes the user together with their accounts and transactions.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.Field("id", "is required")
	}
	return s.writer.DeleteUser(ctx, id)
}
