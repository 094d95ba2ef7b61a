package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitstudio-backend/internal/domain"
	"fitstudio-backend/internal/domain/ports/store"
	idinfra "fitstudio-backend/internal/infra/identity"
	"fitstudio-backend/internal/usecase"
)

// fakeStore is a minimal in-memory store.Store backing the handler tests.
type fakeStore struct {
	mu   sync.Mutex
	docs map[string]map[string]any
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]map[string]any)}
}

func (s *fakeStore) Get(_ context.Context, path store.DocPath) (*store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields, ok := s.docs[path.String()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &store.Document{Path: path.String(), Fields: fields}, nil
}

func (s *fakeStore) Set(_ context.Context, path store.DocPath, fields map[string]any, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(path.String(), fields, merge)
	return nil
}

func (s *fakeStore) apply(path string, fields map[string]any, merge bool) {
	if merge {
		if cur, ok := s.docs[path]; ok {
			for k, v := range fields {
				cur[k] = v
			}
			return
		}
	}
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	s.docs[path] = cp
}

func (s *fakeStore) Update(_ context.Context, path store.DocPath, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[path.String()]; !ok {
		return domain.ErrNotFound
	}
	s.apply(path.String(), fields, true)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, path store.DocPath) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path.String())
	return nil
}

func (s *fakeStore) Query(_ context.Context, col store.CollectionPath, filters []store.Filter, orderBy string) ([]*store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := col.String() + "/"
	var out []*store.Document
	for path, fields := range s.docs {
		if !strings.HasPrefix(path, prefix) || strings.Contains(path[len(prefix):], "/") {
			continue
		}
		ok := true
		for _, f := range filters {
			if fmt.Sprint(fields[f.Field]) != fmt.Sprint(f.Value) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, &store.Document{Path: path, Fields: fields})
		}
	}
	if orderBy != "" {
		sort.Slice(out, func(i, j int) bool {
			return fmt.Sprint(out[i].Fields[orderBy]) < fmt.Sprint(out[j].Fields[orderBy])
		})
	}
	return out, nil
}

type fakeBatch struct {
	store *fakeStore
	ops   []func()
}

func (s *fakeStore) Batch() store.Batch { return &fakeBatch{store: s} }

func (b *fakeBatch) Set(path store.DocPath, fields map[string]any, merge bool) {
	p := path.String()
	b.ops = append(b.ops, func() { b.store.apply(p, fields, merge) })
}

func (b *fakeBatch) Commit(_ context.Context) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	for _, op := range b.ops {
		op()
	}
	return nil
}

type testEnv struct {
	ts    *httptest.Server
	srv   *Server
	st    *fakeStore
	idp   *idinfra.NoopProvider
	token string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := newFakeStore()
	idp := idinfra.NewNoopProvider()
	logger := zerolog.Nop()

	planUC := usecase.NewPlanUseCase(st)
	srv := NewServer(ServerDeps{
		ClientUC:     usecase.NewClientUseCase(st, idp, &logger),
		PlanUC:       planUC,
		SubUC:        usecase.NewSubscriptionUseCase(st, planUC, &logger),
		FinanceUC:    usecase.NewFinanceUseCase(st, nil, &logger),
		ExpenseUC:    usecase.NewExpenseUseCase(st, &logger),
		AssessmentUC: usecase.NewAssessmentUseCase(st),
		Identity:     idp,
		JWTSecret:    "test-secret",
		SessionTTL:   time.Hour,
		Logger:       &logger,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	token, err := srv.mintSession("admin@example.com", "Admin")
	require.NoError(t, err)
	return &testEnv{ts: ts, srv: srv, st: st, idp: idp, token: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeResp(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (e *testEnv) createClient(t *testing.T, cpf, name, email string) {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/clientes/", map[string]any{
		"cpf": cpf, "nome": name, "email": email, "senha": "segredo1",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func (e *testEnv) createPlan(t *testing.T, name string, price int, periodDays int) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/planos/", map[string]any{
		"nome": name, "valor": price, "periodo": periodDays,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var plan struct {
		ID string `json:"id"`
	}
	decodeResp(t, resp, &plan)
	require.NotEmpty(t, plan.ID)
	return plan.ID
}

func TestAPIRequiresSession(t *testing.T) {
	e := newTestEnv(t)

	resp, err := http.Get(e.ts.URL + "/api/v1/clientes/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/health", "/metrics"} {
		resp, err := http.Get(e.ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestLoginFlow(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.idp.CreateAccount(context.Background(), "dona@example.com", "segredo1", "Dona")
	require.NoError(t, err)

	// Cookies must not follow the redirect target, only be captured.
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	resp, err := client.PostForm(e.ts.URL+"/login", url.Values{
		"email":    {"dona@example.com"},
		"password": {"qualquer"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	var session string
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			session = c.Value
		}
	}
	require.NotEmpty(t, session)

	req, err := http.NewRequest(http.MethodGet, e.ts.URL+"/api/v1/planos/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: session})
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginBadCredentials(t *testing.T) {
	e := newTestEnv(t)

	resp, err := http.PostForm(e.ts.URL+"/login", url.Values{
		"email":    {"ninguem@example.com"},
		"password": {"errada"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestClientRoutes(t *testing.T) {
	e := newTestEnv(t)
	e.createClient(t, "11111111111", "Ana Souza", "ana@example.com")

	resp := e.do(t, http.MethodGet, "/api/v1/clientes/11111111111", nil)
	var c struct {
		CPF    string `json:"cpf"`
		Name   string `json:"nome"`
		Status string `json:"status"`
	}
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeResp(t, resp, &c)
	assert.Equal(t, "11111111111", c.CPF)
	assert.Equal(t, "ativo", c.Status)

	// Duplicate CPF conflicts.
	resp = e.do(t, http.MethodPost, "/api/v1/clientes/", map[string]any{
		"cpf": "11111111111", "nome": "Outra", "email": "outra@example.com", "senha": "segredo1",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown CPF is a 404, malformed CPF a 400.
	resp = e.do(t, http.MethodGet, "/api/v1/clientes/99999999999", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = e.do(t, http.MethodGet, "/api/v1/clientes/abc", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodPut, "/api/v1/clientes/11111111111/status", map[string]any{"status": "inativo"})
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.do(t, http.MethodDelete, "/api/v1/clientes/11111111111", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSubscriptionRoutes(t *testing.T) {
	e := newTestEnv(t)
	e.createClient(t, "11111111111", "Ana", "ana@example.com")
	planID := e.createPlan(t, "Mensal", 120, 1)

	body := map[string]any{"cpf": "11111111111", "plano_id": planID, "inicio": "2025-02-01"}
	resp := e.do(t, http.MethodPost, "/api/v1/assinaturas/02-2025/", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sub struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeResp(t, resp, &sub)
	assert.Equal(t, "ativa", sub.Status)

	// Same client, same period: conflict.
	resp = e.do(t, http.MethodPost, "/api/v1/assinaturas/02-2025/", body)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Malformed period segment.
	resp = e.do(t, http.MethodPost, "/api/v1/assinaturas/2-2025/", body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/v1/assinaturas/02-2025/"+sub.ID+"/cancelar", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeResp(t, resp, &sub)
	assert.Equal(t, "cancelada", sub.Status)

	// Terminal status: transition conflicts.
	resp = e.do(t, http.MethodPut, "/api/v1/assinaturas/02-2025/"+sub.ID+"/status", map[string]any{"status": "ativa"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFinanceRoutes(t *testing.T) {
	e := newTestEnv(t)
	e.createClient(t, "11111111111", "Ana", "ana@example.com")
	planID := e.createPlan(t, "Trimestral", 300, 3)

	// Attach the plan and a payment history so the reconcile pass bills
	// February 2025.
	resp := e.do(t, http.MethodPut, "/api/v1/clientes/11111111111", map[string]any{"plano_id": planID})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// A payment in November 2024 on a quarterly plan falls due in February.
	e.seedLastPayment(t, "11111111111", "2024-11-20")

	resp = e.do(t, http.MethodPost, "/api/v1/financas/processar", map[string]any{"periodo": "02-2025"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var run struct {
		Period    string `json:"periodo"`
		Processed int    `json:"processados"`
	}
	decodeResp(t, resp, &run)
	assert.Equal(t, "02/2025", run.Period)
	assert.Equal(t, 1, run.Processed)

	resp = e.do(t, http.MethodGet, "/api/v1/receitas/02-2025/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var receivables []struct {
		CPF  string `json:"cpf"`
		Paid bool   `json:"pago"`
	}
	decodeResp(t, resp, &receivables)
	require.Len(t, receivables, 1)
	assert.False(t, receivables[0].Paid)

	resp = e.do(t, http.MethodPost, "/api/v1/receitas/02-2025/11111111111/pagar", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Paying twice conflicts.
	resp = e.do(t, http.MethodPost, "/api/v1/receitas/02-2025/11111111111/pagar", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/v1/despesas/02-2025/", map[string]any{
		"descricao": "Aluguel", "categoria": "fixo", "valor": 100, "vencimento": "2025-02-05",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/v1/financas/resumo/02-2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary struct {
		Expected string `json:"previsto"`
		Received string `json:"recebido"`
		Expenses string `json:"despesas"`
	}
	decodeResp(t, resp, &summary)
	assert.Equal(t, "300", summary.Expected)
	assert.Equal(t, "300", summary.Received)
	assert.Equal(t, "100", summary.Expenses)
}

// seedLastPayment backdates a client's last payment. The API never exposes
// this field directly; marking a receivable paid is what rolls it forward.
func (e *testEnv) seedLastPayment(t *testing.T, cpf, date string) {
	t.Helper()
	err := e.st.Set(context.Background(), store.ClientPath(cpf),
		map[string]any{"ultimo_pagamento": date}, true)
	require.NoError(t, err)
}
