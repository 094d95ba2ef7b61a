package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	idport "fitstudio-backend/internal/domain/ports/identity"
	"fitstudio-backend/internal/infra/logging"
	"fitstudio-backend/internal/infra/metrics"
	red "fitstudio-backend/internal/infra/redis"
	"fitstudio-backend/internal/usecase"
)

// Server wires the HTTP API: client/plan/subscription/finance/assessment
// routes behind a session, plus the login page, /health and /metrics.
type Server struct {
	clientUC     *usecase.ClientUseCase
	planUC       *usecase.PlanUseCase
	subUC        *usecase.SubscriptionUseCase
	financeUC    *usecase.FinanceUseCase
	expenseUC    *usecase.ExpenseUseCase
	assessmentUC *usecase.AssessmentUseCase

	identity   idport.Provider
	limiter    *red.RateLimiter
	jwtSecret  []byte
	sessionTTL time.Duration
	log        *zerolog.Logger
}

type ServerDeps struct {
	ClientUC     *usecase.ClientUseCase
	PlanUC       *usecase.PlanUseCase
	SubUC        *usecase.SubscriptionUseCase
	FinanceUC    *usecase.FinanceUseCase
	ExpenseUC    *usecase.ExpenseUseCase
	AssessmentUC *usecase.AssessmentUseCase
	Identity     idport.Provider
	Limiter      *red.RateLimiter
	JWTSecret    string
	SessionTTL   time.Duration
	Logger       *zerolog.Logger
}

func NewServer(d ServerDeps) *Server {
	return &Server{
		clientUC:     d.ClientUC,
		planUC:       d.PlanUC,
		subUC:        d.SubUC,
		financeUC:    d.FinanceUC,
		expenseUC:    d.ExpenseUC,
		assessmentUC: d.AssessmentUC,
		identity:     d.Identity,
		limiter:      d.Limiter,
		jwtSecret:    []byte(d.JWTSecret),
		sessionTTL:   d.SessionTTL,
		log:          d.Logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.HTTPMiddleware)
	r.Use(s.logMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Route("/clientes", func(r chi.Router) {
			r.Get("/", s.handleClientList)
			r.Post("/", s.handleClientCreate)
			r.Get("/{cpf}", s.handleClientGet)
			r.Put("/{cpf}", s.handleClientUpdate)
			r.Delete("/{cpf}", s.handleClientDelete)
			r.Put("/{cpf}/status", s.handleClientSetStatus)
			r.Get("/{cpf}/avaliacoes", s.handleAssessmentList)
			r.Post("/{cpf}/avaliacoes", s.handleAssessmentCreate)
			r.Delete("/{cpf}/avaliacoes/{id}", s.handleAssessmentDelete)
		})

		r.Route("/planos", func(r chi.Router) {
			r.Get("/", s.handlePlanList)
			r.Post("/", s.handlePlanCreate)
			r.Get("/{id}", s.handlePlanGet)
			r.Put("/{id}", s.handlePlanUpdate)
			r.Delete("/{id}", s.handlePlanDelete)
		})

		r.Route("/assinaturas/{periodo}", func(r chi.Router) {
			r.Get("/", s.handleSubscriptionList)
			r.Post("/", s.handleSubscriptionCreate)
			r.Get("/{id}", s.handleSubscriptionGet)
			r.Put("/{id}/status", s.handleSubscriptionSetStatus)
			r.Post("/{id}/cancelar", s.handleSubscriptionCancel)
		})

		r.Route("/receitas/{periodo}", func(r chi.Router) {
			r.Get("/", s.handleReceivableList)
			r.Post("/{cpf}/pagar", s.handleReceivablePay)
		})

		r.Route("/despesas/{periodo}", func(r chi.Router) {
			r.Get("/", s.handleExpenseList)
			r.Post("/", s.handleExpenseCreate)
			r.Delete("/{id}", s.handleExpenseDelete)
			r.Post("/{id}/pagar", s.handleExpensePay)
		})

		r.Route("/financas", func(r chi.Router) {
			r.Post("/processar", s.handleReconcile)
			r.Get("/resumo/{periodo}", s.handleSummary)
		})
	})

	return r
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
