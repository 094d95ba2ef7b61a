package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fitstudio-backend/internal/domain"
	"fitstudio-backend/internal/domain/model"
	"fitstudio-backend/internal/domain/ports/identity"
	"fitstudio-backend/internal/domain/ports/store"
)

// ClientUseCase owns the client lifecycle, including the fan-out that keeps
// the canonical record, the administrative mirror, the email index and the
// identity-provider account in sync.
type ClientUseCase struct {
	store    store.Store
	identity identity.Provider
	log      *zerolog.Logger
}

func NewClientUseCase(st store.Store, idp identity.Provider, logger *zerolog.Logger) *ClientUseCase {
	return &ClientUseCase{store: st, identity: idp, log: logger}
}

// CreateClientInput carries the fields accepted on creation.
type CreateClientInput struct {
	CPF       string
	Name      string
	Email     string
	Password  string
	Phone     string
	BirthDate *model.Date
	Plan      *model.PlanSnapshot
}

// Create registers a client: identity account first, then the four data
// records as an ordered fan-out. The canonical record and the email index
// are critical; the administrative mirrors are best effort.
func (uc *ClientUseCase) Create(ctx context.Context, in CreateClientInput) (*model.Client, FanoutReport, error) {
	c, err := model.NewClient(in.CPF, in.Name, in.Email)
	if err != nil {
		return nil, FanoutReport{}, err
	}
	if len(in.Password) < 6 {
		return nil, FanoutReport{}, domain.ErrInvalidArgument
	}
	c.Phone = strings.TrimSpace(in.Phone)
	c.BirthDate = in.BirthDate
	c.Plan = in.Plan

	// Duplicate guards: CPF is globally unique, email unique across clients.
	if _, err := uc.store.Get(ctx, store.ClientPath(c.CPF)); err == nil {
		return nil, FanoutReport{}, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, FanoutReport{}, err
	}
	if _, err := uc.store.Get(ctx, store.EmailIndexPath(c.Email)); err == nil {
		return nil, FanoutReport{}, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, FanoutReport{}, err
	}

	accountID, err := uc.identity.CreateAccount(ctx, c.Email, in.Password, c.Name)
	if err != nil {
		return nil, FanoutReport{}, err
	}
	if err := uc.identity.SetClaims(ctx, accountID, map[string]any{"role": "cliente", "cpf": c.CPF}); err != nil {
		uc.log.Warn().Err(err).Str("cpf", c.CPF).Msg("client create: set claims failed")
	}

	clientFields, err := store.Fields(c)
	if err != nil {
		return nil, FanoutReport{}, err
	}
	indexFields := map[string]any{
		"cpf":       c.CPF,
		"email":     c.Email,
		"conta_id":  accountID,
		"criado_em": time.Now(),
	}

	report, err := runFanout(ctx, uc.log, []fanoutStep{
		{Name: "cliente", Critical: true, Run: func(ctx context.Context) error {
			return uc.store.Set(ctx, store.ClientPath(c.CPF), clientFields, false)
		}},
		{Name: "indice_email", Critical: true, Run: func(ctx context.Context) error {
			return uc.store.Set(ctx, store.EmailIndexPath(c.Email), indexFields, false)
		}},
		{Name: "gestao_cliente", Run: func(ctx context.Context) error {
			return uc.store.Set(ctx, store.AdminClientPath(c.CPF), clientFields, false)
		}},
		{Name: "gestao_indice_email", Run: func(ctx context.Context) error {
			return uc.store.Set(ctx, store.AdminEmailIndexPath(c.Email), indexFields, false)
		}},
	})
	if err != nil {
		return nil, report, err
	}
	return c, report, nil
}

func (uc *ClientUseCase) Get(ctx context.Context, cpf string) (*model.Client, error) {
	if !model.ValidCPF(cpf) {
		return nil, domain.ErrInvalidArgument
	}
	doc, err := uc.store.Get(ctx, store.ClientPath(cpf))
	if err != nil {
		return nil, err
	}
	var c model.Client
	if err := store.Decode(doc, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns clients ordered by name, paginated in memory.
func (uc *ClientUseCase) List(ctx context.Context, offset, limit int) ([]*model.Client, int, error) {
	docs, err := uc.store.Query(ctx, store.Clients(), nil, "nome")
	if err != nil {
		return nil, 0, err
	}
	total := len(docs)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	out := make([]*model.Client, 0, end-offset)
	for _, doc := range docs[offset:end] {
		var c model.Client
		if err := store.Decode(doc, &c); err != nil {
			return nil, 0, err
		}
		out = append(out, &c)
	}
	return out, total, nil
}

// UpdateClientInput carries mutable profile fields. CPF and email are
// immutable: CPF keys every record, email keys the index fan-out.
type UpdateClientInput struct {
	Name      string
	Phone     string
	BirthDate *model.Date
	Plan      *model.PlanSnapshot
}

func (uc *ClientUseCase) Update(ctx context.Context, cpf string, in UpdateClientInput) (*model.Client, error) {
	c, err := uc.Get(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	if in.Phone != "" {
		c.Phone = strings.TrimSpace(in.Phone)
	}
	if in.BirthDate != nil {
		c.BirthDate = in.BirthDate
	}
	if in.Plan != nil {
		c.Plan = in.Plan
	}
	c.UpdatedAt = time.Now()

	fields, err := store.Fields(c)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Update(ctx, store.ClientPath(cpf), fields); err != nil {
		return nil, err
	}
	uc.mirror(ctx, cpf, fields)
	return c, nil
}

// SetStatus flips the client between ativo and inativo.
func (uc *ClientUseCase) SetStatus(ctx context.Context, cpf string, status model.ClientStatus) error {
	if status != model.ClientStatusActive && status != model.ClientStatusInactive {
		return domain.ErrInvalidArgument
	}
	if !model.ValidCPF(cpf) {
		return domain.ErrInvalidArgument
	}
	fields := map[string]any{
		"status":        string(status),
		"ativo":         status == model.ClientStatusActive,
		"atualizado_em": time.Now(),
	}
	if err := uc.store.Update(ctx, store.ClientPath(cpf), fields); err != nil {
		return err
	}
	uc.mirror(ctx, cpf, fields)
	return nil
}

// mirror pushes a change to the administrative copy, best effort.
func (uc *ClientUseCase) mirror(ctx context.Context, cpf string, fields map[string]any) {
	if err := uc.store.Set(ctx, store.AdminClientPath(cpf), fields, true); err != nil {
		uc.log.Warn().Err(err).Str("cpf", cpf).Msg("client: admin mirror write failed")
	}
}

// Delete removes a client everywhere. The identity-provider account goes
// first; a failure there is logged but does not abort the deletion. The
// four data records follow, tolerating missing mirrors.
func (uc *ClientUseCase) Delete(ctx context.Context, cpf string) (FanoutReport, error) {
	c, err := uc.Get(ctx, cpf)
	if err != nil {
		return FanoutReport{}, err
	}

	if acc, err := uc.identity.GetAccountByEmail(ctx, c.Email); err != nil {
		uc.log.Warn().Err(err).Str("cpf", cpf).Msg("client delete: account lookup failed, proceeding")
	} else if err := uc.identity.DeleteAccount(ctx, acc.ID); err != nil {
		uc.log.Warn().Err(err).Str("cpf", cpf).Msg("client delete: account deletion failed, proceeding")
	}

	return runFanout(ctx, uc.log, []fanoutStep{
		{Name: "cliente", Critical: true, Run: func(ctx context.Context) error {
			return uc.store.Delete(ctx, store.ClientPath(cpf))
		}},
		{Name: "indice_email", Run: func(ctx context.Context) error {
			return uc.store.Delete(ctx, store.EmailIndexPath(c.Email))
		}},
		{Name: "gestao_cliente", Run: func(ctx context.Context) error {
			return uc.store.Delete(ctx, store.AdminClientPath(cpf))
		}},
		{Name: "gestao_indice_email", Run: func(ctx context.Context) error {
			return uc.store.Delete(ctx, store.AdminEmailIndexPath(c.Email))
		}},
	})
}
