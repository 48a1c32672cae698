package user_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/service/user"
	"github.com/tinoosan/fintrack/internal/storage/memory"
)

type stubTokens struct{}

func (stubTokens) Issue(u ledger.User) (string, time.Time, error) {
	return "token-" + u.Username, time.Now().Add(time.Hour), nil
}

func newService() (user.Service, *memory.Store) {
	store := memory.New()
	return user.New(store, store, stubTokens{}, bcrypt.MinCost), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	u, err := svc.Register(ctx, user.RegisterInput{Username: " Ada ", Password: "correct horse", FirstName: "Ada"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Username != "ada" || u.PasswordHash == "correct horse" || u.PasswordHash == "" {
		t.Fatalf("unexpected user: %+v", u)
	}
	sess, err := svc.Login(ctx, "ADA", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token != "token-ada" || sess.User.ID != u.ID {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if _, err := svc.Register(ctx, user.RegisterInput{Username: "ada", Password: "another pass"}); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("duplicate: expected ErrConflict, got %v", err)
	}
}

func TestLogin_Failures(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	u, _ := svc.Register(ctx, user.RegisterInput{Username: "ada", Password: "correct horse"})
	if _, err := svc.Login(ctx, "ada", "wrong password"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("bad password: expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "whatever1"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("unknown user: expected ErrUnauthorized, got %v", err)
	}
	u.Status = ledger.StatusInactive
	store.SeedUser(u)
	if _, err := svc.Login(ctx, "ada", "correct horse"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("inactive: expected ErrUnauthorized, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService()
	cases := []struct {
		name  string
		in    user.RegisterInput
		field string
	}{
		{"missing username", user.RegisterInput{Password: "longenough"}, "username"},
		{"short username", user.RegisterInput{Username: "ab", Password: "longenough"}, "username"},
		{"space", user.RegisterInput{Username: "a b c", Password: "longenough"}, "username"},
		{"short password", user.RegisterInput{Username: "ada", Password: "short"}, "password"},
		{"long password", user.RegisterInput{Username: "ada", Password: strings.Repeat("x", 73)}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			var fe *errs.FieldError
			if !errors.As(err, &fe) || fe.Field != tc.field {
				t.Fatalf("expected field error on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	u, _ := svc.Register(ctx, user.RegisterInput{Username: "ada", Password: "correct horse"})
	if err := svc.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, u.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
