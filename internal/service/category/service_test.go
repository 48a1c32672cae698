package category_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/service/category"
	"github.com/tinoosan/fintrack/internal/storage/memory"
)

func TestCreateAndRename(t *testing.T) {
	store := memory.New()
	svc := category.New(store, store)
	ctx := context.Background()

	food, err := svc.Create(ctx, "  Food & Drink ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if food.Name != "Food & Drink" {
		t.Fatalf("name = %q", food.Name)
	}
	if _, err := svc.Create(ctx, "food-drink"); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("slug collision: expected ErrConflict, got %v", err)
	}
	renamed, err := svc.Rename(ctx, food.ID, "Dining")
	if err != nil || renamed.Name != "Dining" {
		t.Fatalf("rename: %v %+v", err, renamed)
	}
	if _, err := svc.Rename(ctx, uuid.New(), "Other"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("rename missing: expected ErrNotFound, got %v", err)
	}
	list, _ := svc.List(ctx)
	if len(list) != 1 {
		t.Fatalf("list len = %d", len(list))
	}
}

func TestValidation(t *testing.T) {
	svc := category.New(memory.New(), memory.New())
	for _, name := range []string{"", "   ", "!!!", strings.Repeat("a", 101)} {
		if _, err := svc.Create(context.Background(), name); !errors.Is(err, errs.ErrInvalid) {
			t.Fatalf("%q: expected ErrInvalid, got %v", name, err)
		}
	}
}

func TestDelete_RefusedWhileUsed(t *testing.T) {
	store := memory.New()
	svc := category.New(store, store)
	ctx := context.Background()
	c, _ := svc.Create(ctx, "Rent")
	store.SeedTransaction(ledger.Transaction{ID: uuid.New(), CategoryID: c.ID, Amount: decimal.NewFromInt(1), PaymentType: ledger.PaymentExpense})
	if err := svc.Delete(ctx, c.ID); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	unused, _ := svc.Create(ctx, "Travel")
	if err := svc.Delete(ctx, unused.ID); err != nil {
		t.Fatalf("delete unused: %v", err)
	}
}
