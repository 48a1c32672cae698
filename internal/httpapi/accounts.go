package httpapi

import (
	"net/http"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
	"github.com/tinoosan/fintrack/internal/service/account"
)

// ownedAccount loads the {id} account and checks the caller owns it.
func (s *Server) ownedAccount(r *http.Request) (ledger.Account, error) {
	id, err := pathID(r)
	if err != nil {
		return ledger.Account{}, err
	}
	a, err := s.svc.Accounts.Get(r.Context(), id)
	if err != nil {
		return ledger.Account{}, err
	}
	if a.UserID != callerID(r) {
		return ledger.Account{}, errs.ErrForbidden
	}
	return a, nil
}

func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	in := r.Context().Value(ctxKeyPostAccount).(account.CreateInput)
	a, err := s.svc.Accounts.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, toAccountResponse(a))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Accounts.List(r.Context(), callerID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.ownedAccount(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(a))
}

func (s *Server) patchAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.ownedAccount(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p := r.Context().Value(ctxKeyPatchAccount).(account.Patch)
	updated, err := s.svc.Accounts.Update(r.Context(), a.ID, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(updated))
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.ownedAccount(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.svc.Accounts.Delete(r.Context(), a.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getReconciliation(w http.ResponseWriter, r *http.Request) {
	a, err := s.ownedAccount(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rec, err := s.svc.Accounts.Reconcile(r.Context(), a.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toReconciliationResponse(rec))
}
