package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/service/account"
	"github.com/tinoosan/fintrack/internal/service/currency"
	"github.com/tinoosan/fintrack/internal/service/transaction"
	"github.com/tinoosan/fintrack/internal/service/user"
)

const (
	ctxKeyRegister        ctxKey = "validatedRegister"
	ctxKeyLogin           ctxKey = "validatedLogin"
	ctxKeyPostAccount     ctxKey = "validatedPostAccount"
	ctxKeyPatchAccount    ctxKey = "validatedPatchAccount"
	ctxKeyNamed           ctxKey = "validatedNamed"
	ctxKeyPostCurrency    ctxKey = "validatedPostCurrency"
	ctxKeyPatchCurrency   ctxKey = "validatedPatchCurrency"
	ctxKeyPostTransaction ctxKey = "validatedPostTransaction"
	ctxKeyListTx          ctxKey = "validatedListTransactions"
	ctxKeyPatchTx         ctxKey = "validatedPatchTransaction"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	case "alphanum":
		return "must contain only letters and digits"
	default:
		return "is invalid"
	}
}

// decodeBody reads a JSON body into dst and runs struct validation. It writes
// the error response itself and reports whether the handler may continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !requireJSON(w, r) {
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			badRequest(w, err.Error())
			return false
		}
		details := make([]fieldDetail, 0, len(ves))
		for _, fe := range ves {
			details = append(details, fieldDetail{Field: fe.Field(), Message: validationMessage(fe)})
		}
		validationFailed(w, details)
		return false
	}
	return true
}

func withValue(r *http.Request, key ctxKey, v any) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), key, v))
}

func (s *Server) validateRegister() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req registerRequest
			if !decodeBody(w, r, &req) {
				return
			}
			in := user.RegisterInput{Username: req.Username, Password: req.Password, FirstName: req.FirstName, LastName: req.LastName}
			next.ServeHTTP(w, withValue(r, ctxKeyRegister, in))
		})
	}
}

func (s *Server) validateLogin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req loginRequest
			if !decodeBody(w, r, &req) {
				return
			}
			next.ServeHTTP(w, withValue(r, ctxKeyLogin, req))
		})
	}
}

// validatePostAccount binds the new account to the caller.
func (s *Server) validatePostAccount() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req postAccountRequest
			if !decodeBody(w, r, &req) {
				return
			}
			in := account.CreateInput{UserID: callerID(r), Name: req.Name, Number: req.Number, OpeningBalance: string(req.OpeningBalance)}
			next.ServeHTTP(w, withValue(r, ctxKeyPostAccount, in))
		})
	}
}

func (s *Server) validatePatchAccount() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req patchAccountRequest
			if !decodeBody(w, r, &req) {
				return
			}
			p := account.Patch{Name: req.Name, Number: req.Number}
			if req.Balance != nil {
				b := string(*req.Balance)
				p.Balance = &b
			}
			next.ServeHTTP(w, withValue(r, ctxKeyPatchAccount, p))
		})
	}
}

// validateNamed parses the {name} body shared by category create and rename.
func (s *Server) validateNamed() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req namedRequest
			if !decodeBody(w, r, &req) {
				return
			}
			next.ServeHTTP(w, withValue(r, ctxKeyNamed, req))
		})
	}
}

func (s *Server) validatePostCurrency() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req postCurrencyRequest
			if !decodeBody(w, r, &req) {
				return
			}
			next.ServeHTTP(w, withValue(r, ctxKeyPostCurrency, req))
		})
	}
}

func (s *Server) validatePatchCurrency() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req patchCurrencyRequest
			if !decodeBody(w, r, &req) {
				return
			}
			next.ServeHTTP(w, withValue(r, ctxKeyPatchCurrency, currency.Patch{Code: req.Code, Name: req.Name}))
		})
	}
}

// validatePostTransaction runs the engine's field checks, then verifies the
// caller owns the target account before the handler posts anything.
func (s *Server) validatePostTransaction() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req postTransactionRequest
			if !decodeBody(w, r, &req) {
				return
			}
			in := toCreateInput(req)
			if err := s.svc.Transactions.Validate(in); err != nil {
				s.fail(w, r, err)
				return
			}
			// a missing account is reported by the engine as not found
			a, err := s.svc.Accounts.Get(r.Context(), in.AccountID)
			if err != nil && !errors.Is(err, errs.ErrNotFound) {
				s.fail(w, r, err)
				return
			}
			if err == nil && a.UserID != callerID(r) {
				s.fail(w, r, errs.ErrForbidden)
				return
			}
			next.ServeHTTP(w, withValue(r, ctxKeyPostTransaction, in))
		})
	}
}

// validateListTransactions parses page, limit and search query params.
func (s *Server) validateListTransactions() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			f := ledger.TransactionFilter{Search: q.Get("search")}
			var err error
			if raw := q.Get("page"); raw != "" {
				if f.Page, err = strconv.Atoi(raw); err != nil || f.Page < 1 {
					badRequest(w, "invalid page")
					return
				}
			}
			if raw := q.Get("limit"); raw != "" {
				if f.Limit, err = strconv.Atoi(raw); err != nil || f.Limit < 1 || f.Limit > ledger.MaxPageLimit {
					badRequest(w, "invalid limit")
					return
				}
			}
			next.ServeHTTP(w, withValue(r, ctxKeyListTx, f))
		})
	}
}

func (s *Server) validatePatchTransaction() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req patchTransactionRequest
			if !decodeBody(w, r, &req) {
				return
			}
			next.ServeHTTP(w, withValue(r, ctxKeyPatchTx, req))
		})
	}
}

func toCreateInput(req postTransactionRequest) transaction.CreateInput {
	return transaction.CreateInput{
		Name:        req.Name,
		Amount:      string(req.Amount),
		Description: req.Description,
		AccountID:   req.AccountID,
		CurrencyID:  req.CurrencyID,
		CategoryID:  req.CategoryID,
		PaymentType: req.PaymentType,
		SlipURL:     req.SlipURL,
	}
}
