package httpapi

import (
	"net/http"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/service/transaction"
)

// ownedTransaction loads the {id} transaction and checks the caller owns its account.
func (s *Server) ownedTransaction(r *http.Request) (ledger.TransactionView, error) {
	id, err := pathID(r)
	if err != nil {
		return ledger.TransactionView{}, err
	}
	v, err := s.svc.Transactions.Get(r.Context(), id)
	if err != nil {
		return ledger.TransactionView{}, err
	}
	if v.UserID != callerID(r) {
		return ledger.TransactionView{}, errs.ErrForbidden
	}
	return v, nil
}

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	in := r.Context().Value(ctxKeyPostTransaction).(transaction.CreateInput)
	v, err := s.svc.Transactions.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.svc.Summaries.Invalidate(r.Context(), callerID(r))
	toJSON(w, http.StatusCreated, toTransactionResponse(v))
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	f := r.Context().Value(ctxKeyListTx).(ledger.TransactionFilter)
	page, err := s.svc.Transactions.List(r.Context(), callerID(r), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, transactionPageResponse{
		Items: toTransactionResponses(page.Items),
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	v, err := s.ownedTransaction(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(v))
}

// patchTransaction only replaces slip_url; amounts are immutable once posted.
func (s *Server) patchTransaction(w http.ResponseWriter, r *http.Request) {
	v, err := s.ownedTransaction(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	req := r.Context().Value(ctxKeyPatchTx).(patchTransactionRequest)
	updated, err := s.svc.Transactions.UpdateSlip(r.Context(), v.ID, *req.SlipURL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(updated))
}

// deleteTransaction removes the transaction and reverses its effect on the balance.
func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	v, err := s.ownedTransaction(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.svc.Transactions.Delete(r.Context(), v.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.svc.Summaries.Invalidate(r.Context(), v.UserID)
	w.WriteHeader(http.StatusNoContent)
}
