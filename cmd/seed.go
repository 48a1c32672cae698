package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tinoosan/fintrack/internal/dictionary"
	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/httpapi"
	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/service/account"
	"github.com/tinoosan/fintrack/internal/service/user"
)

const (
	devUsername = "demo"
	devPassword = "demo-password"
)

type devSeed struct {
	user    ledger.User
	account ledger.Account
	token   string
}

// seedDev loads the dictionary defaults and a demo user with one account.
// Running it twice is harmless: existing rows are skipped.
func seedDev(ctx context.Context, svc httpapi.Services) (devSeed, error) {
	for _, c := range dictionary.Categories() {
		if _, err := svc.Categories.Create(ctx, c.Label); err != nil && !errors.Is(err, errs.ErrConflict) {
			return devSeed{}, fmt.Errorf("seed category %s: %w", c.Code, err)
		}
	}
	for _, c := range dictionary.Currencies() {
		if _, err := svc.Currencies.Create(ctx, c.Code, c.Name); err != nil && !errors.Is(err, errs.ErrConflict) {
			return devSeed{}, fmt.Errorf("seed currency %s: %w", c.Code, err)
		}
	}

	_, err := svc.Users.Register(ctx, user.RegisterInput{Username: devUsername, Password: devPassword, FirstName: "Demo", LastName: "User"})
	if err != nil && !errors.Is(err, errs.ErrConflict) {
		return devSeed{}, fmt.Errorf("seed user: %w", err)
	}
	sess, err := svc.Users.Login(ctx, devUsername, devPassword)
	if err != nil {
		return devSeed{}, fmt.Errorf("seed login: %w", err)
	}

	accts, err := svc.Accounts.List(ctx, sess.User.ID)
	if err != nil {
		return devSeed{}, err
	}
	var acct ledger.Account
	if len(accts) > 0 {
		acct = accts[0]
	} else {
		acct, err = svc.Accounts.Create(ctx, account.CreateInput{UserID: sess.User.ID, Name: "Demo Wallet", Number: "DEMO-0001", OpeningBalance: "1000"})
		if err != nil {
			return devSeed{}, fmt.Errorf("seed account: %w", err)
		}
	}
	return devSeed{user: sess.User, account: acct, token: sess.Token}, nil
}

func logDevSeed(l *slog.Logger, s devSeed) {
	l.Info("DEV seed", "user_id", s.user.ID.String(), "username", s.user.Username, "account_id", s.account.ID.String())
}

// printDevSeedBanner prints the demo credentials for easy copy/paste.
func printDevSeedBanner(s devSeed) {
	fmt.Println("==================== DEV SEED ====================")
	fmt.Printf("username:   %s\n", devUsername)
	fmt.Printf("password:   %s\n", devPassword)
	fmt.Printf("user_id:    %s\n", s.user.ID.String())
	fmt.Printf("account_id: %s\n", s.account.ID.String())
	fmt.Printf("token:      %s\n", s.token)
	fmt.Println("==================================================")
}
