package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/service/account"
	"github.com/tinoosan/fintrack/internal/service/user"
)

// Requests

type registerRequest struct {
	Username  string `json:"username" validate:"required,max=50"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type postAccountRequest struct {
	Name           string     `json:"name" validate:"required,max=100"`
	Number         string     `json:"number" validate:"required,max=50"`
	OpeningBalance flexString `json:"opening_balance"`
}

type patchAccountRequest struct {
	Name    *string     `json:"name" validate:"omitempty,max=100"`
	Number  *string     `json:"number" validate:"omitempty,max=50"`
	Balance *flexString `json:"balance"`
}

type namedRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type postCurrencyRequest struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required,max=100"`
}

type patchCurrencyRequest struct {
	Code *string `json:"code"`
	Name *string `json:"name" validate:"omitempty,max=100"`
}

// postTransactionRequest leaves field rules to the engine, which checks them in a fixed order.
type postTransactionRequest struct {
	Name        string     `json:"name"`
	Amount      flexString `json:"amount"`
	Description string     `json:"description"`
	AccountID   uuid.UUID  `json:"account_id"`
	CurrencyID  uuid.UUID  `json:"currency_id"`
	CategoryID  uuid.UUID  `json:"category_id"`
	PaymentType string     `json:"payment_type"`
	SlipURL     string     `json:"slip_url"`
}

type patchTransactionRequest struct {
	SlipURL *string `json:"slip_url" validate:"required"`
}

// Responses

type userResponse struct {
	ID        uuid.UUID     `json:"id"`
	Username  string        `json:"username"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Status    ledger.Status `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func toUserResponse(u ledger.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type sessionResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func toSessionResponse(s user.Session) sessionResponse {
	return sessionResponse{Token: s.Token, TokenType: "Bearer", ExpiresAt: s.ExpiresAt, User: toUserResponse(s.User)}
}

type accountResponse struct {
	ID             uuid.UUID     `json:"id"`
	UserID         uuid.UUID     `json:"user_id"`
	Name           string        `json:"name"`
	Number         string        `json:"number"`
	Status         ledger.Status `json:"status"`
	OpeningBalance string        `json:"opening_balance"`
	Balance        string        `json:"balance"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func toAccountResponse(a ledger.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		UserID:         a.UserID,
		Name:           a.Name,
		Number:         a.Number,
		Status:         a.Status,
		OpeningBalance: a.OpeningBalance.String(),
		Balance:        a.Balance.String(),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

type reconciliationResponse struct {
	AccountID      uuid.UUID `json:"account_id"`
	OpeningBalance string    `json:"opening_balance"`
	SignedTotal    string    `json:"signed_total"`
	Expected       string    `json:"expected_balance"`
	Balance        string    `json:"balance"`
	Consistent     bool      `json:"consistent"`
}

func toReconciliationResponse(r account.Reconciliation) reconciliationResponse {
	return reconciliationResponse{
		AccountID:      r.AccountID,
		OpeningBalance: r.OpeningBalance.String(),
		SignedTotal:    r.SignedTotal.String(),
		Expected:       r.Expected.String(),
		Balance:        r.Balance.String(),
		Consistent:     r.Consistent,
	}
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCategoryResponse(c ledger.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

type currencyResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCurrencyResponse(c ledger.Currency) currencyResponse {
	return currencyResponse{ID: c.ID, Code: c.Code, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

type transactionResponse struct {
	ID            uuid.UUID          `json:"id"`
	AccountID     uuid.UUID          `json:"account_id"`
	AccountName   string             `json:"account_name"`
	CategoryID    uuid.UUID          `json:"category_id"`
	CategoryName  string             `json:"category_name"`
	CurrencyID    uuid.UUID          `json:"currency_id"`
	CurrencyCode  string             `json:"currency_code"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Amount        string             `json:"amount"`
	AmountDisplay string             `json:"amount_display"`
	PaymentType   ledger.PaymentType `json:"payment_type"`
	SlipURL       string             `json:"slip_url,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func toTransactionResponse(v ledger.TransactionView) transactionResponse {
	return transactionResponse{
		ID:            v.ID,
		AccountID:     v.AccountID,
		AccountName:   v.AccountName,
		CategoryID:    v.CategoryID,
		CategoryName:  v.CategoryName,
		CurrencyID:    v.CurrencyID,
		CurrencyCode:  v.CurrencyCode,
		Name:          v.Name,
		Description:   v.Description,
		Amount:        v.Amount.String(),
		AmountDisplay: ledger.FormatAmount(v.CurrencyCode, v.Amount),
		PaymentType:   v.PaymentType,
		SlipURL:       v.SlipURL,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func toTransactionResponses(vs []ledger.TransactionView) []transactionResponse {
	out := make([]transactionResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, toTransactionResponse(v))
	}
	return out
}

type transactionPageResponse struct {
	Items []transactionResponse `json:"items"`
	Total int                   `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

type currencyTotalResponse struct {
	CurrencyCode string `json:"currency_code"`
	Income       string `json:"income"`
	Expense      string `json:"expense"`
}

type summaryResponse struct {
	Start        time.Time               `json:"start"`
	End          time.Time               `json:"end"`
	TotalIncome  string                  `json:"total_income"`
	TotalExpense string                  `json:"total_expense"`
	Net          string                  `json:"net"`
	ByCurrency   []currencyTotalResponse `json:"by_currency"`
	Transactions []transactionResponse   `json:"transactions"`
}

func toSummaryResponse(s ledger.Summary) summaryResponse {
	out := summaryResponse{
		Start:        s.Start,
		End:          s.End,
		TotalIncome:  s.TotalIncome.String(),
		TotalExpense: s.TotalExpense.String(),
		Net:          s.Net.String(),
		ByCurrency:   make([]currencyTotalResponse, 0, len(s.ByCurrency)),
		Transactions: toTransactionResponses(s.Transactions),
	}
	for _, ct := range s.ByCurrency {
		out.ByCurrency = append(out.ByCurrency, currencyTotalResponse{
			CurrencyCode: ct.CurrencyCode,
			Income:       ct.Income.String(),
			Expense:      ct.Expense.String(),
		})
	}
	return out
}
