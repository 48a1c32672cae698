package currency_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/service/currency"
	"github.com/tinoosan/fintrack/internal/storage/memory"
)

func TestCreate_NormalizesCode(t *testing.T) {
	store := memory.New()
	svc := currency.New(store, store)
	ctx := context.Background()
	c, err := svc.Create(ctx, " usd ", "US Dollar")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Code != "USD" {
		t.Fatalf("code = %q", c.Code)
	}
	if _, err := svc.Create(ctx, "USD", "Another"); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("duplicate code: expected ErrConflict, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := currency.New(memory.New(), memory.New())
	cases := []struct{ code, name, field string }{
		{"", "X", "code"},
		{"U", "X", "code"},
		{"US-D", "X", "code"},
		{"ABCDEFGHIJK", "X", "code"},
		{"EUR", " ", "name"},
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), tc.code, tc.name)
		var fe *errs.FieldError
		if !errors.As(err, &fe) || fe.Field != tc.field {
			t.Fatalf("%q/%q: expected field error on %s, got %v", tc.code, tc.name, tc.field, err)
		}
	}
}

func TestUpdateAndDelete(t *testing.T) {
	store := memory.New()
	svc := currency.New(store, store)
	ctx := context.Background()
	c, _ := svc.Create(ctx, "EUR", "Euro")
	name := "Euro (EU)"
	got, err := svc.Update(ctx, c.ID, currency.Patch{Name: &name})
	if err != nil || got.Name != name || got.Code != "EUR" {
		t.Fatalf("update: %v %+v", err, got)
	}
	if _, err := svc.Update(ctx, c.ID, currency.Patch{}); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("empty patch: expected ErrInvalid, got %v", err)
	}
	store.SeedTransaction(ledger.Transaction{ID: uuid.New(), CurrencyID: c.ID, Amount: decimal.NewFromInt(1), PaymentType: ledger.PaymentIncome})
	if err := svc.Delete(ctx, c.ID); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
