package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"fitstudio-backend/internal/domain/model"
	"fitstudio-backend/internal/infra/metrics"
)

// handleReconcile runs the billing pass. An empty body or a missing
// "periodo" field targets the current period.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Period string `json:"periodo"`
	}
	// Body is optional on this endpoint.
	_ = decodeBody(r, &req)

	var period model.Period
	if req.Period != "" {
		var err error
		if period, err = model.ParsePeriodKey(req.Period); err != nil {
			writeError(w, err)
			return
		}
	}

	start := time.Now()
	processed, err := s.financeUC.Reconcile(r.Context(), period)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.ObserveReconcile(outcome, processed, time.Since(start).Seconds())
	if err != nil {
		writeError(w, err)
		return
	}

	if period.IsZero() {
		period = model.CurrentPeriod()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"periodo":     period.Display(),
		"processados": processed,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	period, err := urlPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := s.financeUC.Summary(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleReceivableList(w http.ResponseWriter, r *http.Request) {
	period, err := urlPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := s.financeUC.ListReceivables(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleReceivablePay(w http.ResponseWriter, r *http.Request) {
	period, err := urlPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.financeUC.MarkReceivablePaid(r.Context(), period, chi.URLParam(r, "cpf"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleExpenseCreate(w http.ResponseWriter, r *http.Request) {
	period, err := urlPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Description string          `json:"descricao"`
		Category    string          `json:"categoria"`
		Amount      decimal.Decimal `json:"valor"`
		DueDate     string          `json:"vencimento"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	due := model.Today()
	if req.DueDate != "" {
		if due, err = model.ParseDate(req.DueDate); err != nil {
			writeError(w, err)
			return
		}
	}
	e, err := s.expenseUC.Create(r.Context(), period, req.Description, req.Category, req.Amount, due)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleExpenseList(w http.ResponseWriter, r *http.Request) {
	period, err := urlPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := s.expenseUC.List(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleExpenseDelete(w http.ResponseWriter, r *http.Request) {
	period, err := urlPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.expenseUC.Delete(r.Context(), period, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExpensePay(w http.ResponseWriter, r *http.Request) {
	period, err := urlPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := s.expenseUC.MarkPaid(r.Context(), period, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
