package httpapi

import (
	"net/http"
	"time"

	"github.com/tinoosan/fintrack/internal/ledger"
)

func (s *Server) writeSummary(w http.ResponseWriter, r *http.Request, sum ledger.Summary, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toSummaryResponse(sum))
}

func (s *Server) dailySummary(w http.ResponseWriter, r *http.Request) {
	day, err := queryDate(r, "date", s.svc.Summaries.Location())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sum, err := s.svc.Summaries.Daily(r.Context(), callerID(r), day)
	s.writeSummary(w, r, sum, err)
}

func (s *Server) monthlySummary(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sum, err := s.svc.Summaries.Monthly(r.Context(), callerID(r), year, time.Month(month))
	s.writeSummary(w, r, sum, err)
}

func (s *Server) yearlySummary(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sum, err := s.svc.Summaries.Yearly(r.Context(), callerID(r), year)
	s.writeSummary(w, r, sum, err)
}

func (s *Server) rangeSummary(w http.ResponseWriter, r *http.Request) {
	loc := s.svc.Summaries.Location()
	start, err := queryDate(r, "start", loc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	end, err := queryDate(r, "end", loc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sum, err := s.svc.Summaries.Range(r.Context(), callerID(r), start, end)
	s.writeSummary(w, r, sum, err)
}
