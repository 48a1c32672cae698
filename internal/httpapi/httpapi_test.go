package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tinoosan/fintrack/internal/auth"
	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/sanitize"
	"github.com/tinoosan/fintrack/internal/service/account"
	"github.com/tinoosan/fintrack/internal/service/category"
	"github.com/tinoosan/fintrack/internal/service/currency"
	"github.com/tinoosan/fintrack/internal/service/summary"
	"github.com/tinoosan/fintrack/internal/service/transaction"
	"github.com/tinoosan/fintrack/internal/service/user"
	"github.com/tinoosan/fintrack/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type errResp struct {
	Error   string        `json:"error"`
	Code    string        `json:"code"`
	Details []fieldDetail `json:"details"`
}

type acctResp struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	OpeningBalance string `json:"opening_balance"`
	Balance        string `json:"balance"`
}

type txResp struct {
	ID            string `json:"id"`
	AccountName   string `json:"account_name"`
	CategoryName  string `json:"category_name"`
	CurrencyCode  string `json:"currency_code"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	AmountDisplay string `json:"amount_display"`
	PaymentType   string `json:"payment_type"`
	SlipURL       string `json:"slip_url"`
}

type pageResp struct {
	Items []txResp `json:"items"`
	Total int      `json:"total"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
}

type env struct {
	store    *memory.Store
	srv      *Server
	h        http.Handler
	category ledger.Category
	currency ledger.Currency
}

func setup(t *testing.T, ready ...ReadyChecker) env {
	t.Helper()
	return setupWithLogger(t, testLogger(), ready...)
}

func setupWithLogger(t *testing.T, logger *slog.Logger, ready ...ReadyChecker) env {
	t.Helper()
	store := memory.New()
	tokens, err := auth.New(auth.Options{Secret: "test-secret-0123456789", Issuer: "fintrack", TTL: time.Hour})
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	cat := ledger.Category{ID: uuid.New(), Name: "Groceries"}
	cur := ledger.Currency{ID: uuid.New(), Code: "USD", Name: "US Dollar"}
	store.SeedCategory(cat)
	store.SeedCurrency(cur)

	svc := Services{
		Users:        user.New(store, store, tokens, bcrypt.MinCost),
		Accounts:     account.New(store, store),
		Categories:   category.New(store, store),
		Currencies:   currency.New(store, store),
		Transactions: transaction.New(store, store, store, sanitize.New(sanitize.DefaultWords)),
		Summaries:    summary.New(store, nil, time.UTC),
	}
	srv := New(svc, tokens, logger, ready...)
	return env{store: store, srv: srv, h: srv.Handler(), category: cat, currency: cur}
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

// signUp registers and logs in a user, returning the bearer token.
func (e env) signUp(t *testing.T, username string) string {
	t.Helper()
	rec := do(t, e.h, http.MethodPost, "/v1/auth/register", "", map[string]any{"username": username, "password": "correct-horse"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, e.h, http.MethodPost, "/v1/auth/login", "", map[string]any{"username": username, "password": "correct-horse"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var sess struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil || sess.Token == "" {
		t.Fatalf("login response %q: %v", rec.Body.String(), err)
	}
	return sess.Token
}

func (e env) openAccount(t *testing.T, token, name, opening string) acctResp {
	t.Helper()
	rec := do(t, e.h, http.MethodPost, "/v1/accounts", token, map[string]any{"name": name, "number": name + "-001", "opening_balance": opening})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[acctResp](t, rec)
}

func (e env) txBody(accountID string, amount any, paymentType string) map[string]any {
	return map[string]any{
		"name":         "Weekly shop",
		"amount":       amount,
		"description":  "Market run",
		"account_id":   accountID,
		"currency_id":  e.currency.ID.String(),
		"category_id":  e.category.ID.String(),
		"payment_type": paymentType,
	}
}

func (e env) balance(t *testing.T, token, accountID string) string {
	t.Helper()
	rec := do(t, e.h, http.MethodGet, "/v1/accounts/"+accountID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get account: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[acctResp](t, rec).Balance
}

func TestAuth_RegisterLoginAndBearer(t *testing.T) {
	e := setup(t)

	token := e.signUp(t, "Ada")

	rec := do(t, e.h, http.MethodPost, "/v1/auth/register", "", map[string]any{"username": "ada", "password": "another-pass"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate username: expected 409, got %d", rec.Code)
	}
	rec = do(t, e.h, http.MethodPost, "/v1/auth/login", "", map[string]any{"username": "ada", "password": "wrong-password"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", rec.Code)
	}
	rec = do(t, e.h, http.MethodPost, "/v1/auth/register", "", map[string]any{"username": "bob", "password": "short"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short password: expected 400, got %d", rec.Code)
	}
	if er := decode[errResp](t, rec); len(er.Details) != 1 || er.Details[0].Field != "password" {
		t.Fatalf("expected password detail, got %+v", er)
	}

	if rec := do(t, e.h, http.MethodGet, "/v1/users/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}
	if rec := do(t, e.h, http.MethodGet, "/v1/users/me", "not-a-jwt", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", rec.Code)
	}
	rec = do(t, e.h, http.MethodGet, "/v1/users/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	var me struct {
		Username string `json:"username"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.Username != "ada" || me.Status != "active" {
		t.Fatalf("unexpected user %+v", me)
	}
}

func TestAuth_TokenFromOtherSecretRejected(t *testing.T) {
	e := setup(t)
	other, _ := auth.New(auth.Options{Secret: "a-different-secret-value", TTL: time.Hour})
	tok, _, err := other.Issue(ledger.User{ID: uuid.New(), Username: "mallory"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if rec := do(t, e.h, http.MethodGet, "/v1/accounts", tok, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPostTransaction_IncomeThenExpense(t *testing.T) {
	e := setup(t)
	token := e.signUp(t, "ada")
	acct := e.openAccount(t, token, "Main", "100")

	rec := do(t, e.h, http.MethodPost, "/v1/transactions", token, e.txBody(acct.ID, "50", "Income"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("income: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	tr := decode[txResp](t, rec)
	if tr.PaymentType != "income" || tr.AccountName != "Main" || tr.CategoryName != "Groceries" || tr.CurrencyCode != "USD" {
		t.Fatalf("unexpected view %+v", tr)
	}
	if tr.AmountDisplay != "50.00" {
		t.Fatalf("amount_display = %q", tr.AmountDisplay)
	}
	if got := e.balance(t, token, acct.ID); got != "150" {
		t.Fatalf("balance after income = %s, want 150", got)
	}

	// numeric amounts are accepted too
	rec = do(t, e.h, http.MethodPost, "/v1/transactions", token, e.txBody(acct.ID, 30, "expense"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expense: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := e.balance(t, token, acct.ID); got != "120" {
		t.Fatalf("balance after expense = %s, want 120", got)
	}
}

func TestPostTransaction_InsufficientFunds(t *testing.T) {
	e := setup(t)
	token := e.signUp(t, "ada")
	acct := e.openAccount(t, token, "Main", "20")

	rec := do(t, e.h, http.MethodPost, "/v1/transactions", token, e.txBody(acct.ID, "20.01", "expense"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if er := decode[errResp](t, rec); er.Code != "insufficient_funds" {
		t.Fatalf("code = %q", er.Code)
	}
	if got := e.balance(t, token, acct.ID); got != "20" {
		t.Fatalf("balance changed to %s", got)
	}
	page := decode[pageResp](t, do(t, e.h, http.MethodGet, "/v1/transactions", token, nil))
	if page.Total != 0 {
		t.Fatalf("rejected expense was stored")
	}

	// spending the whole balance is allowed
	if rec := do(t, e.h, http.MethodPost, "/v1/transactions", token, e.txBody(acct.ID, "20", "expense")); rec.Code != http.StatusCreated {
		t.Fatalf("exact balance: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPostTransaction_Validation(t *testing.T) {
	e := setup(t)
	token := e.signUp(t, "ada")
	acct := e.openAccount(t, token, "Main", "100")

	cases := []struct {
		name  string
		edit  func(map[string]any)
		field string
	}{
		{"missing name", func(b map[string]any) { delete(b, "name") }, "name"},
		{"everything missing reports name first", func(b map[string]any) {
			for k := range b {
				delete(b, k)
			}
		}, "name"},
		{"zero amount", func(b map[string]any) { b["amount"] = "0" }, "amount"},
		{"negative amount", func(b map[string]any) { b["amount"] = -5 }, "amount"},
		{"non numeric amount", func(b map[string]any) { b["amount"] = "ten" }, "amount"},
		{"blank description", func(b map[string]any) { b["description"] = "  " }, "description"},
		{"unknown payment type", func(b map[string]any) { b["payment_type"] = "transfer" }, "payment_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := e.txBody(acct.ID, "10", "income")
			tc.edit(body)
			rec := do(t, e.h, http.MethodPost, "/v1/transactions", token, body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			er := decode[errResp](t, rec)
			if er.Code != "validation_error" || len(er.Details) != 1 || er.Details[0].Field != tc.field {
				t.Fatalf("expected %s detail, got %+v", tc.field, er)
			}
		})
	}
	if got := e.balance(t, token, acct.ID); got != "100" {
		t.Fatalf("balance changed to %s", got)
	}
}

func TestPostTransaction_UnknownReferences(t *testing.T) {
	e := setup(t)
	token := e.signUp(t, "ada")
	acct := e.openAccount(t, token, "Main", "100")

	for _, key := range []string{"account_id", "category_id", "currency_id"} {
		body := e.txBody(acct.ID, "10", "income")
		body[key] = uuid.NewString()
		rec := do(t, e.h, http.MethodPost, "/v1/transactions", token, body)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d: %s", key, rec.Code, rec.Body.String())
		}
	}
	body := e.txBody(acct.ID, "10", "income")
	body["account_id"] = "not-a-uuid"
	if rec := do(t, e.h, http.MethodPost, "/v1/transactions", token, body); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: expected 400, got %d", rec.Code)
	}
}

func TestOwnership(t *testing.T) {
	e := setup(t)
	alice := e.signUp(t, "alice")
	bob := e.signUp(t, "bob")
	acct := e.openAccount(t, alice, "Alice main", "100")

	rec := do(t, e.h, http.MethodPost, "/v1/transactions", alice, e.txBody(acct.ID, "5", "income"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("owner post: expected 201, got %d", rec.Code)
	}
	tr := decode[txResp](t, rec)

	checks := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/v1/accounts/" + acct.ID, nil},
		{http.MethodPatch, "/v1/accounts/" + acct.ID, map[string]any{"name": "Stolen"}},
		{http.MethodDelete, "/v1/accounts/" + acct.ID, nil},
		{http.MethodGet, "/v1/accounts/" + acct.ID + "/reconciliation", nil},
		{http.MethodPost, "/v1/transactions", e.txBody(acct.ID, "5", "expense")},
		{http.MethodGet, "/v1/transactions/" + tr.ID, nil},
		{http.MethodPatch, "/v1/transactions/" + tr.ID, map[string]any{"slip_url": "x"}},
		{http.MethodDelete, "/v1/transactions/" + tr.ID, nil},
	}
	for _, c := range checks {
		if rec := do(t, e.h, c.method, c.path, bob, c.body); rec.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403, got %d: %s", c.method, c.path, rec.Code, rec.Body.String())
		}
	}
	if got := e.balance(t, alice, acct.ID); got != "105" {
		t.Fatalf("balance = %s, want 105", got)
	}
	list := decode[[]acctResp](t, do(t, e.h, http.MethodGet, "/v1/accounts", bob, nil))
	if len(list) != 0 {
		t.Fatalf("bob sees %d accounts", len(list))
	}
	page := decode[pageResp](t, do(t, e.h, http.MethodGet, "/v1/transactions", bob, nil))
	if page.Total != 0 {
		t.Fatalf("bob sees %d transactions", page.Total)
	}
}

func TestListTransactions_PagingAndSearch(t *testing.T) {
	e := setup(t)
	token := e.signUp(t, "ada")
	acct := e.openAccount(t, token, "Main", "0")
	for i := 0; i < 12; i++ {
		body := e.txBody(acct.ID, fmt.Sprintf("%d", i+1), "income")
		if i == 4 {
			body["description"] = "Birthday gift"
		}
		if rec := do(t, e.h, http.MethodPost, "/v1/transactions", token, body); rec.Code != http.StatusCreated {
			t.Fatalf("seed %d: %d", i, rec.Code)
		}
	}

	page := decode[pageResp](t, do(t, e.h, http.MethodGet, "/v1/transactions?page=3&limit=5", token, nil))
	if page.Total != 12 || len(page.Items) != 2 || page.Page != 3 || page.Limit != 5 {
		t.Fatalf("unexpected page %+v", page)
	}
	def := decode[pageResp](t, do(t, e.h, http.MethodGet, "/v1/transactions", token, nil))
	if def.Limit != ledger.DefaultPageLimit || len(def.Items) != ledger.DefaultPageLimit {
		t.Fatalf("default page: limit=%d items=%d", def.Limit, len(def.Items))
	}
	hit := decode[pageResp](t, do(t, e.h, http.MethodGet, "/v1/transactions?search=BIRTHDAY", token, nil))
	if hit.Total != 1 || hit.Items[0].Amount != "5" {
		t.Fatalf("search: %+v", hit)
	}

	for _, q := range []string{"page=0", "page=abc", "limit=0", "limit=101"} {
		if rec := do(t, e.h, http.MethodGet, "/v1/transactions?"+q, token, nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestDeleteTransaction_ReversesBalance(t *testing.T) {
	e := setup(t)
	token := e.signUp(t, "ada")
	acct := e.openAccount(t, token, "Main", "100")

	rec := do(t, e.h, http.MethodPost, "/v1/transactions", token, e.txBody(acct.ID, "30", "expense"))
	tr := decode[txResp](t, rec)
	if got := e.balance(t, token, acct.ID); got != "70" {
		t.Fatalf("balance = %s, want 70", got)
	}

	if rec := do(t, e.h, http.MethodDelete, "/v1/transactions/"+tr.ID, token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if got := e.balance(t, token, acct.ID); got != "100" {
		t.Fatalf("balance after delete = %s, want 100", got)
	}
	if rec := do(t, e.h, http.MethodGet, "/v1/transactions/"+tr.ID, token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", rec.Code)
	}
	if rec := do(t, e.h, http.MethodDelete, "/v1/transactions/"+tr.ID, token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("delete twice: expected 404, got %d", rec.Code)
	}

	rec = do(t, e.h, http.MethodGet, "/v1/accounts/"+acct.ID+"/reconciliation", token, nil)
	var recon struct {
		Consistent bool `json:"consistent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &recon); err != nil || !recon.Consistent {
		t.Fatalf("reconciliation: %s", rec.Body.String())
	}
}

func TestPatchTransaction_SlipOnly(t *testing.T) {
	e := setup(t)
	token := e.signUp(t, "ada")
	acct := e.openAccount(t, token, "Main", "100")
	tr := decode[txResp](t, do(t, e.h, http.MethodPost, "/v1/transactions", token, e.txBody(acct.ID, "10", "income")))

	rec := do(t, e.h, http.MethodPatch, "/v1/transactions/"+tr.ID, token, map[string]any{"slip_url": "https://example.com/r/1.png"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[txResp](t, rec); got.SlipURL != "https://example.com/r/1.png" || got.Amount != "10" {
		t.Fatalf("unexpected %+v", got)
	}
	rec = do(t, e.h, http.MethodPatch, "/v1/transactions/"+tr.ID, token, map[string]any{"amount": "99"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("amount patch: expected 400, got %d", rec.Code)
	}
}

func TestSanitizesFreeText(t *testing.T) {
	e := setup(t)
	token := e.signUp(t, "ada")
	acct := e.openAccount(t, token, "Main", "100")
	body := e.txBody(acct.ID, "10", "income")
	body["description"] = "damn fine coffee"
	tr := decode[txResp](t, do(t, e.h, http.MethodPost, "/v1/transactions", token, body))
	if tr.Description != "**** fine coffee" {
		t.Fatalf("description = %q", tr.Description)
	}
}

func TestSummaries(t *testing.T) {
	e := setup(t)
	token := e.signUp(t, "ada")
	acct := e.openAccount(t, token, "Main", "0")
	do(t, e.h, http.MethodPost, "/v1/transactions", token, e.txBody(acct.ID, "300", "income"))
	do(t, e.h, http.MethodPost, "/v1/transactions", token, e.txBody(acct.ID, "120", "expense"))

	now := time.Now().UTC()
	var sum struct {
		TotalIncome  string   `json:"total_income"`
		TotalExpense string   `json:"total_expense"`
		Net          string   `json:"net"`
		Transactions []txResp `json:"transactions"`
	}
	paths := []string{
		"/v1/summaries/daily?date=" + now.Format(dateLayout),
		fmt.Sprintf("/v1/summaries/monthly?year=%d&month=%d", now.Year(), int(now.Month())),
		fmt.Sprintf("/v1/summaries/yearly?year=%d", now.Year()),
		"/v1/summaries/range?start=" + now.AddDate(0, 0, -1).Format(dateLayout) + "&end=" + now.Format(dateLayout),
	}
	for _, p := range paths {
		rec := do(t, e.h, http.MethodGet, p, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", p, rec.Code, rec.Body.String())
		}
		sum.Transactions = nil
		if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if sum.TotalIncome != "300" || sum.TotalExpense != "120" || sum.Net != "180" || len(sum.Transactions) != 2 {
			t.Fatalf("%s: unexpected summary %+v", p, sum)
		}
	}

	bad := []string{
		"/v1/summaries/daily",
		"/v1/summaries/daily?date=16-10-2026",
		"/v1/summaries/monthly?year=2024&month=13",
		"/v1/summaries/yearly?year=abc",
		"/v1/summaries/range?start=2024-02-01&end=2024-01-01",
	}
	for _, p := range bad {
		if rec := do(t, e.h, http.MethodGet, p, token, nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", p, rec.Code)
		}
	}
}

func TestAccounts_CRUD(t *testing.T) {
	e := setup(t)
	token := e.signUp(t, "ada")
	acct := e.openAccount(t, token, "Main", "12.50")
	if acct.OpeningBalance != "12.5" || acct.Balance != "12.5" {
		t.Fatalf("unexpected balances %+v", acct)
	}

	if rec := do(t, e.h, http.MethodPost, "/v1/accounts", token, map[string]any{"name": "Main", "number": "x-2"}); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate name: expected 409, got %d", rec.Code)
	}
	rec := do(t, e.h, http.MethodPost, "/v1/accounts", token, map[string]any{"number": "x-3"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing name: expected 400, got %d", rec.Code)
	}
	if er := decode[errResp](t, rec); len(er.Details) == 0 || er.Details[0].Field != "name" {
		t.Fatalf("expected name detail, got %+v", er)
	}

	rec = do(t, e.h, http.MethodPatch, "/v1/accounts/"+acct.ID, token, map[string]any{"name": "Everyday", "balance": "40"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[acctResp](t, rec); got.Name != "Everyday" || got.Balance != "40" {
		t.Fatalf("unexpected %+v", got)
	}

	do(t, e.h, http.MethodPost, "/v1/transactions", token, e.txBody(acct.ID, "1", "income"))
	if rec := do(t, e.h, http.MethodDelete, "/v1/accounts/"+acct.ID, token, nil); rec.Code != http.StatusConflict {
		t.Fatalf("delete referenced: expected 409, got %d", rec.Code)
	}
	other := e.openAccount(t, token, "Spare", "0")
	if rec := do(t, e.h, http.MethodDelete, "/v1/accounts/"+other.ID, token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if rec := do(t, e.h, http.MethodGet, "/v1/accounts/not-a-uuid", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", rec.Code)
	}
}

func TestCatalog_CategoriesAndCurrencies(t *testing.T) {
	e := setup(t)
	token := e.signUp(t, "ada")

	rec := do(t, e.h, http.MethodPost, "/v1/categories", token, map[string]any{"name": "Eating Out"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("category: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, e.h, http.MethodPost, "/v1/categories", token, map[string]any{"name": "eating  out"}); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate category: expected 409, got %d", rec.Code)
	}
	if rec := do(t, e.h, http.MethodDelete, "/v1/categories/"+uuid.NewString(), token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing category: expected 404, got %d", rec.Code)
	}

	rec = do(t, e.h, http.MethodPost, "/v1/currencies", token, map[string]any{"code": "eur", "name": "Euro"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("currency: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var cur struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cur); err != nil || cur.Code != "EUR" {
		t.Fatalf("unexpected currency %s", rec.Body.String())
	}
	rec = do(t, e.h, http.MethodPatch, "/v1/currencies/"+cur.ID, token, map[string]any{"name": "Euro (EU)"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch currency: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	list := decode[[]currencyResponse](t, do(t, e.h, http.MethodGet, "/v1/currencies", token, nil))
	if len(list) != 2 {
		t.Fatalf("expected 2 currencies, got %d", len(list))
	}
}

func TestDictionary_Public(t *testing.T) {
	e := setup(t)
	rec := do(t, e.h, http.MethodGet, "/v1/dictionary/currencies", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"USD"`) {
		t.Fatalf("missing USD: %s", rec.Body.String())
	}
	if rec := do(t, e.h, http.MethodGet, "/v1/dictionary/categories", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("categories: expected 200, got %d", rec.Code)
	}
}

func TestRequestShape(t *testing.T) {
	e := setup(t)
	token := e.signUp(t, "ada")

	req := httptest.NewRequest(http.MethodPost, "/v1/accounts", strings.NewReader(`{"name":"Main","number":"1"}`))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}

	rec = do(t, e.h, http.MethodPost, "/v1/accounts", token, map[string]any{"name": "Main", "number": "1", "colour": "red"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", rec.Code)
	}
}

func TestDeleteMe_Cascades(t *testing.T) {
	e := setup(t)
	token := e.signUp(t, "ada")
	acct := e.openAccount(t, token, "Main", "10")
	do(t, e.h, http.MethodPost, "/v1/transactions", token, e.txBody(acct.ID, "1", "income"))

	if rec := do(t, e.h, http.MethodDelete, "/v1/users/me", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	id, _ := uuid.Parse(acct.ID)
	if _, err := e.store.GetAccount(context.Background(), id); err == nil {
		t.Fatalf("account survived user deletion")
	}
	if rec := do(t, e.h, http.MethodGet, "/v1/users/me", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted user: expected 404, got %d", rec.Code)
	}
}

type failingCheck struct{ err error }

func (f failingCheck) Ready(context.Context) error { return f.err }

func TestHealthReadyMetrics(t *testing.T) {
	e := setup(t)
	if rec := do(t, e.h, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := do(t, e.h, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rec.Code)
	}
	down := setup(t, failingCheck{err: errors.New("db down")})
	if rec := do(t, down.h, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz down: expected 503, got %d", rec.Code)
	}
	rec := do(t, e.h, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "fintrack_http_requests_total") {
		t.Fatalf("metrics missing request counter")
	}
}
