package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"fitstudio-backend/internal/domain"
	"fitstudio-backend/internal/domain/model"
	"fitstudio-backend/internal/infra/metrics"
	"fitstudio-backend/internal/usecase"
)

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidArgument
	}
	return nil
}

// urlPeriod parses the {periodo} segment, which uses the MM-YYYY key form.
func urlPeriod(r *http.Request) (model.Period, error) {
	return model.ParsePeriodKey(chi.URLParam(r, "periodo"))
}

type clientRequest struct {
	CPF       string `json:"cpf"`
	Name      string `json:"nome"`
	Email     string `json:"email"`
	Password  string `json:"senha"`
	Phone     string `json:"telefone"`
	BirthDate string `json:"data_nascimento"`
	PlanID    string `json:"plano_id"`
}

func (s *Server) planSnapshot(r *http.Request, planID string) (*model.PlanSnapshot, error) {
	if planID == "" {
		return nil, nil
	}
	p, err := s.planUC.Get(r.Context(), planID)
	if err != nil {
		return nil, err
	}
	snap := p.Snapshot()
	return &snap, nil
}

func parseBirthDate(s string) (*model.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Server) handleClientCreate(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	birth, err := parseBirthDate(req.BirthDate)
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := s.planSnapshot(r, req.PlanID)
	if err != nil {
		writeError(w, err)
		return
	}

	c, report, err := s.clientUC.Create(r.Context(), usecase.CreateClientInput{
		CPF:       req.CPF,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		BirthDate: birth,
		Plan:      snap,
	})
	for _, step := range report.Failed() {
		metrics.IncFanoutStepFailure(step)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleClientGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.clientUC.Get(r.Context(), chi.URLParam(r, "cpf"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleClientList(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	clients, total, err := s.clientUC.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"clientes": clients,
		"total":    total,
	})
}

func (s *Server) handleClientUpdate(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	birth, err := parseBirthDate(req.BirthDate)
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := s.planSnapshot(r, req.PlanID)
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := s.clientUC.Update(r.Context(), chi.URLParam(r, "cpf"), usecase.UpdateClientInput{
		Name:      req.Name,
		Phone:     req.Phone,
		BirthDate: birth,
		Plan:      snap,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleClientSetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.clientUC.SetStatus(r.Context(), chi.URLParam(r, "cpf"), model.ClientStatus(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClientDelete(w http.ResponseWriter, r *http.Request) {
	report, err := s.clientUC.Delete(r.Context(), chi.URLParam(r, "cpf"))
	for _, step := range report.Failed() {
		metrics.IncFanoutStepFailure(step)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type planRequest struct {
	Name       string          `json:"nome"`
	Price      decimal.Decimal `json:"valor"`
	PeriodDays int             `json:"periodo"`
}

func (s *Server) handlePlanCreate(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.planUC.Create(r.Context(), req.Name, req.Price, req.PeriodDays)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handlePlanGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.planUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePlanList(w http.ResponseWriter, r *http.Request) {
	plans, err := s.planUC.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handlePlanUpdate(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.planUC.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Price, req.PeriodDays)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePlanDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.planUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubscriptionCreate(w http.ResponseWriter, r *http.Request) {
	period, err := urlPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		CPF       string `json:"cpf"`
		PlanID    string `json:"plano_id"`
		StartDate string `json:"inicio"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	start := model.Today()
	if req.StartDate != "" {
		if start, err = model.ParseDate(req.StartDate); err != nil {
			writeError(w, err)
			return
		}
	}
	sub, err := s.subUC.Create(r.Context(), period, req.CPF, req.PlanID, start)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleSubscriptionList(w http.ResponseWriter, r *http.Request) {
	period, err := urlPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	subs, err := s.subUC.List(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleSubscriptionGet(w http.ResponseWriter, r *http.Request) {
	period, err := urlPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sub, err := s.subUC.Get(r.Context(), period, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleSubscriptionCancel(w http.ResponseWriter, r *http.Request) {
	period, err := urlPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sub, err := s.subUC.Cancel(r.Context(), period, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleSubscriptionSetStatus(w http.ResponseWriter, r *http.Request) {
	period, err := urlPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sub, err := s.subUC.SetStatus(r.Context(), period, chi.URLParam(r, "id"), model.SubscriptionStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleAssessmentCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date         string             `json:"data"`
		WeightKg     float64            `json:"peso_kg"`
		HeightCm     float64            `json:"altura_cm"`
		BodyFatPct   float64            `json:"gordura_pct"`
		MuscleMassKg float64            `json:"massa_magra_kg"`
		Measurements map[string]float64 `json:"medidas"`
		Notes        string             `json:"observacoes"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	in := usecase.CreateAssessmentInput{
		WeightKg:     req.WeightKg,
		HeightCm:     req.HeightCm,
		BodyFatPct:   req.BodyFatPct,
		MuscleMassKg: req.MuscleMassKg,
		Measurements: req.Measurements,
		Notes:        req.Notes,
	}
	if req.Date != "" {
		d, err := model.ParseDate(req.Date)
		if err != nil {
			writeError(w, err)
			return
		}
		in.Date = d
	}
	a, err := s.assessmentUC.Create(r.Context(), chi.URLParam(r, "cpf"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleAssessmentList(w http.ResponseWriter, r *http.Request) {
	list, err := s.assessmentUC.List(r.Context(), chi.URLParam(r, "cpf"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAssessmentDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.assessmentUC.Delete(r.Context(), chi.URLParam(r, "cpf"), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
