package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"fitstudio-backend/internal/domain"
	"fitstudio-backend/internal/domain/model"
	"fitstudio-backend/internal/domain/ports/identity"
	"fitstudio-backend/internal/domain/ports/notify"
	"fitstudio-backend/internal/domain/ports/store"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func mustPeriod(t *testing.T, month, year int) model.Period {
	t.Helper()
	p, err := model.NewPeriod(month, year)
	if err != nil {
		t.Fatalf("period %02d-%04d: %v", month, year, err)
	}
	return p
}

// memStore is an in-memory store.Store for usecase tests. Error fields force
// a failure on the matching operation; batches commit atomically under the
// same lock as the direct writes.
type memStore struct {
	mu   sync.Mutex
	docs map[string]map[string]any

	getErr    error
	setErr    error
	updateErr error
	queryErr  error
	commitErr error
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]map[string]any)}
}

func copyFields(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) Get(_ context.Context, path store.DocPath) (*store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	fields, ok := s.docs[path.String()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &store.Document{Path: path.String(), Fields: copyFields(fields)}, nil
}

func (s *memStore) Set(_ context.Context, path store.DocPath, fields map[string]any, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.apply(path.String(), fields, merge)
	return nil
}

func (s *memStore) apply(path string, fields map[string]any, merge bool) {
	if merge {
		if cur, ok := s.docs[path]; ok {
			for k, v := range fields {
				cur[k] = v
			}
			return
		}
	}
	s.docs[path] = copyFields(fields)
}

func (s *memStore) Update(_ context.Context, path store.DocPath, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.docs[path.String()]; !ok {
		return domain.ErrNotFound
	}
	s.apply(path.String(), fields, true)
	return nil
}

func (s *memStore) Delete(_ context.Context, path store.DocPath) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path.String())
	return nil
}

func (s *memStore) Query(_ context.Context, col store.CollectionPath, filters []store.Filter, orderBy string) ([]*store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	prefix := col.String() + "/"
	var out []*store.Document
	for path, fields := range s.docs {
		if !strings.HasPrefix(path, prefix) || strings.Contains(path[len(prefix):], "/") {
			continue
		}
		match := true
		for _, f := range filters {
			if fmt.Sprint(fields[f.Field]) != fmt.Sprint(f.Value) {
				match = false
				break
			}
		}
		if match {
			out = append(out, &store.Document{Path: path, Fields: copyFields(fields)})
		}
	}
	if orderBy != "" {
		sort.Slice(out, func(i, j int) bool {
			return fmt.Sprint(out[i].Fields[orderBy]) < fmt.Sprint(out[j].Fields[orderBy])
		})
	}
	return out, nil
}

type memBatch struct {
	store *memStore
	ops   []batchOp
}

type batchOp struct {
	path   string
	fields map[string]any
	merge  bool
}

func (s *memStore) Batch() store.Batch { return &memBatch{store: s} }

func (b *memBatch) Set(path store.DocPath, fields map[string]any, merge bool) {
	b.ops = append(b.ops, batchOp{path: path.String(), fields: copyFields(fields), merge: merge})
}

func (b *memBatch) Commit(_ context.Context) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	if b.store.commitErr != nil {
		return b.store.commitErr
	}
	for _, op := range b.ops {
		b.store.apply(op.path, op.fields, op.merge)
	}
	return nil
}

// memIdentity is an in-memory identity.Provider recording every call.
type memIdentity struct {
	mu       sync.Mutex
	accounts map[string]*identity.Account // keyed by email
	nextID   int

	createErr error
	deleteErr error
	deleted   []string
}

var _ identity.Provider = (*memIdentity)(nil)

func newMemIdentity() *memIdentity {
	return &memIdentity{accounts: make(map[string]*identity.Account)}
}

func (m *memIdentity) CreateAccount(_ context.Context, email, password, displayName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	if _, ok := m.accounts[email]; ok {
		return "", domain.ErrAlreadyExists
	}
	m.nextID++
	id := fmt.Sprintf("uid-%d", m.nextID)
	m.accounts[email] = &identity.Account{ID: id, Email: email, DisplayName: displayName}
	return id, nil
}

func (m *memIdentity) DeleteAccount(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, accountID)
	for email, acc := range m.accounts {
		if acc.ID == accountID {
			delete(m.accounts, email)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memIdentity) SetClaims(_ context.Context, accountID string, claims map[string]any) error {
	return nil
}

func (m *memIdentity) GetAccountByEmail(_ context.Context, email string) (*identity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return acc, nil
}

func (m *memIdentity) SignIn(_ context.Context, email, password string) (*identity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[email]
	if !ok || password == "" {
		return nil, domain.ErrPermissionDenied
	}
	return acc, nil
}

var _ notify.Notifier = (*memNotifier)(nil)

// memNotifier records reconcile notifications.
type memNotifier struct {
	mu    sync.Mutex
	calls []int
	err   error
}

func (n *memNotifier) ReconcileFinished(_ context.Context, _ model.Period, processed int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.calls = append(n.calls, processed)
	return nil
}
