package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType determines the sign of a transaction's effect on its account balance.
type PaymentType string

const (
	// PaymentIncome adds the amount to the account balance.
	PaymentIncome PaymentType = "income"
	// PaymentExpense subtracts the amount from the account balance.
	PaymentExpense PaymentType = "expense"
)

// ParsePaymentType accepts the two known payment types, case-insensitively.
func ParsePaymentType(s string) (PaymentType, bool) {
	switch PaymentType(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentIncome:
		return PaymentIncome, true
	case PaymentExpense:
		return PaymentExpense, true
	}
	return "", false
}

// Valid reports whether p is one of the known payment types.
func (p PaymentType) Valid() bool { return p == PaymentIncome || p == PaymentExpense }

// Status marks the lifecycle state of users and accounts.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User captures the owner of ledger data.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Account is a financial container owned by a user.
type Account struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
	Number string
	Status Status
	// OpeningBalance is the balance the account started with before any transaction.
	OpeningBalance decimal.Decimal
	Balance        decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Category is a free-text label attached to transactions.
type Category struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Currency is a descriptive code/name pair. It carries no conversion semantics.
type Currency struct {
	ID        uuid.UUID
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction is a single income or expense posted against an account.
// Only SlipURL may change after creation.
type Transaction struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	CategoryID  uuid.UUID
	CurrencyID  uuid.UUID
	Name        string
	Description string
	Amount      decimal.Decimal
	PaymentType PaymentType
	SlipURL     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SignedAmount returns the balance effect of t: +amount for income, -amount for expense.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.PaymentType == PaymentExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionView is a transaction joined with the labels of its references.
type TransactionView struct {
	Transaction
	// UserID owns the account the transaction is posted to.
	UserID       uuid.UUID
	AccountName  string
	CategoryName string
	CurrencyCode string
}
