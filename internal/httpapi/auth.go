package httpapi

import (
	"net/http"

	"github.com/tinoosan/fintrack/internal/service/user"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	in := r.Context().Value(ctxKeyRegister).(user.RegisterInput)
	u, err := s.svc.Users.Register(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, toUserResponse(u))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	req := r.Context().Value(ctxKeyLogin).(loginRequest)
	sess, err := s.svc.Users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Users.Get(r.Context(), callerID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toUserResponse(u))
}

// deleteMe removes the caller and everything they own.
func (s *Server) deleteMe(w http.ResponseWriter, r *http.Request) {
	id := callerID(r)
	if err := s.svc.Users.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.svc.Summaries.Invalidate(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}
