package httpapi

import (
	"net/http"

	"github.com/tinoosan/fintrack/internal/service/currency"
)

// Categories and currencies are shared reference data; any authenticated user may manage them.

func (s *Server) postCategory(w http.ResponseWriter, r *http.Request) {
	req := r.Context().Value(ctxKeyNamed).(namedRequest)
	c, err := s.svc.Categories.Create(r.Context(), req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Categories.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCategoryResponse(c))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.svc.Categories.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) patchCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	req := r.Context().Value(ctxKeyNamed).(namedRequest)
	c, err := s.svc.Categories.Rename(r.Context(), id, req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.svc.Categories.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postCurrency(w http.ResponseWriter, r *http.Request) {
	req := r.Context().Value(ctxKeyPostCurrency).(postCurrencyRequest)
	c, err := s.svc.Currencies.Create(r.Context(), req.Code, req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, toCurrencyResponse(c))
}

func (s *Server) listCurrencies(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Currencies.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]currencyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCurrencyResponse(c))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getCurrency(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.svc.Currencies.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toCurrencyResponse(c))
}

func (s *Server) patchCurrency(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p := r.Context().Value(ctxKeyPatchCurrency).(currency.Patch)
	c, err := s.svc.Currencies.Update(r.Context(), id, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toCurrencyResponse(c))
}

func (s *Server) deleteCurrency(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.svc.Currencies.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
