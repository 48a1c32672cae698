package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// TransactionFilter narrows a transaction listing for one user.
// Search matches name, description, account name, category name and currency code, case-insensitively.
type TransactionFilter struct {
	Page   int
	Limit  int
	Search string
}

// Normalize clamps paging to the supported window.
func (f TransactionFilter) Normalize() TransactionFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	return f
}

// Offset is the number of rows skipped before the current page.
func (f TransactionFilter) Offset() int { return (f.Page - 1) * f.Limit }

// TransactionPage is one page of a listing plus the total number of matches.
type TransactionPage struct {
	Items []TransactionView
	Total int
	Page  int
	Limit int
}

// CurrencyTotal holds income and expense sums for one currency code.
type CurrencyTotal struct {
	CurrencyCode string
	Income       decimal.Decimal
	Expense      decimal.Decimal
}

// Summary aggregates a user's income and expense over an inclusive time window.
type Summary struct {
	UserID       uuid.UUID
	Start        time.Time
	End          time.Time
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal
	ByCurrency   []CurrencyTotal
	Transactions []TransactionView
}

// Summarize totals the given transactions. Callers pass only rows inside [start, end].
func Summarize(userID uuid.UUID, start, end time.Time, txs []TransactionView) Summary {
	s := Summary{
		UserID:       userID,
		Start:        start,
		End:          end,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Transactions: txs,
	}
	if s.Transactions == nil {
		s.Transactions = []TransactionView{}
	}
	byCode := map[string]*CurrencyTotal{}
	for _, t := range txs {
		ct, ok := byCode[t.CurrencyCode]
		if !ok {
			ct = &CurrencyTotal{CurrencyCode: t.CurrencyCode, Income: decimal.Zero, Expense: decimal.Zero}
			byCode[t.CurrencyCode] = ct
		}
		switch t.PaymentType {
		case PaymentIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
			ct.Income = ct.Income.Add(t.Amount)
		case PaymentExpense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			ct.Expense = ct.Expense.Add(t.Amount)
		}
	}
	s.Net = s.TotalIncome.Sub(s.TotalExpense)
	s.ByCurrency = make([]CurrencyTotal, 0, len(byCode))
	for _, ct := range byCode {
		s.ByCurrency = append(s.ByCurrency, *ct)
	}
	sort.Slice(s.ByCurrency, func(i, j int) bool { return s.ByCurrency[i].CurrencyCode < s.ByCurrency[j].CurrencyCode })
	return s
}

// FormatAmount renders d with the minor-unit scale of an ISO 4217 code.
// Unknown codes fall back to the plain decimal string.
func FormatAmount(code string, d decimal.Decimal) string {
	curr, err := money.ParseCurr(code)
	if err != nil {
		return d.String()
	}
	return d.StringFixed(int32(curr.Scale()))
}
