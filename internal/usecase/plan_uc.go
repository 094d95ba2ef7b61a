package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fitstudio-backend/internal/domain"
	"fitstudio-backend/internal/domain/model"
	"fitstudio-backend/internal/domain/ports/store"
)

// PlanUseCase manages membership plans.
type PlanUseCase struct {
	store store.Store
}

func NewPlanUseCase(st store.Store) *PlanUseCase {
	return &PlanUseCase{store: st}
}

func (uc *PlanUseCase) Create(ctx context.Context, name string, price decimal.Decimal, periodDays int) (*model.Plan, error) {
	p, err := model.NewPlan(uuid.NewString(), name, price, periodDays)
	if err != nil {
		return nil, err
	}
	fields, err := store.Fields(p)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Set(ctx, store.Plans().Doc(p.ID), fields, false); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *PlanUseCase) Get(ctx context.Context, id string) (*model.Plan, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	doc, err := uc.store.Get(ctx, store.Plans().Doc(id))
	if err != nil {
		return nil, err
	}
	var p model.Plan
	if err := store.Decode(doc, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (uc *PlanUseCase) List(ctx context.Context) ([]*model.Plan, error) {
	docs, err := uc.store.Query(ctx, store.Plans(), nil, "nome")
	if err != nil {
		return nil, err
	}
	out := make([]*model.Plan, 0, len(docs))
	for _, doc := range docs {
		var p model.Plan
		if err := store.Decode(doc, &p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, nil
}

// Update is the explicit plan edit: name, price and period can change.
func (uc *PlanUseCase) Update(ctx context.Context, id, name string, price decimal.Decimal, periodDays int) (*model.Plan, error) {
	p, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := model.NewPlan(p.ID, name, price, periodDays)
	if err != nil {
		return nil, err
	}
	updated.CreatedAt = p.CreatedAt
	updated.UpdatedAt = time.Now()

	fields, err := store.Fields(updated)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Update(ctx, store.Plans().Doc(id), fields); err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *PlanUseCase) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidArgument
	}
	if _, err := uc.Get(ctx, id); err != nil {
		return err
	}
	return uc.store.Delete(ctx, store.Plans().Doc(id))
}
