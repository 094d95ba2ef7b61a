package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fitstudio-backend/internal/domain"
	"fitstudio-backend/internal/domain/model"
	"fitstudio-backend/internal/domain/ports/store"
)

// SubscriptionUseCase manages period-scoped subscriptions.
type SubscriptionUseCase struct {
	store  store.Store
	planUC *PlanUseCase
	log    *zerolog.Logger
}

func NewSubscriptionUseCase(st store.Store, planUC *PlanUseCase, logger *zerolog.Logger) *SubscriptionUseCase {
	return &SubscriptionUseCase{store: st, planUC: planUC, log: logger}
}

// Create starts a subscription for a client in a period, guarding against a
// second active subscription for the same (client, period).
//
// The guard is a read-then-write check with no cross-request locking: two
// concurrent creations for the same client and period can both pass it.
// Known limitation, kept as-is.
func (uc *SubscriptionUseCase) Create(ctx context.Context, period model.Period, cpf, planID string, start model.Date) (*model.Subscription, error) {
	if !model.ValidCPF(cpf) || planID == "" {
		return nil, domain.ErrInvalidArgument
	}

	clientDoc, err := uc.store.Get(ctx, store.ClientPath(cpf))
	if err != nil {
		return nil, err
	}
	var client model.Client
	if err := store.Decode(clientDoc, &client); err != nil {
		return nil, err
	}
	plan, err := uc.planUC.Get(ctx, planID)
	if err != nil {
		return nil, err
	}

	existing, err := uc.store.Query(ctx, store.Subscriptions(period), []store.Filter{
		{Field: "cpf", Value: cpf},
		{Field: "status", Value: string(model.SubscriptionStatusActive)},
	}, "")
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domain.ErrDuplicateSubscription
	}

	if start.IsZero() {
		start = model.Today()
	}
	sub, err := model.NewSubscription(uuid.NewString(), &client, plan, period, start)
	if err != nil {
		return nil, err
	}
	fields, err := store.Fields(sub)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Set(ctx, store.SubscriptionPath(period, sub.ID), fields, false); err != nil {
		return nil, err
	}
	return sub, nil
}

func (uc *SubscriptionUseCase) List(ctx context.Context, period model.Period) ([]*model.Subscription, error) {
	docs, err := uc.store.Query(ctx, store.Subscriptions(period), nil, "nome_cliente")
	if err != nil {
		return nil, err
	}
	out := make([]*model.Subscription, 0, len(docs))
	for _, doc := range docs {
		var s model.Subscription
		if err := store.Decode(doc, &s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, nil
}

func (uc *SubscriptionUseCase) Get(ctx context.Context, period model.Period, id string) (*model.Subscription, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	doc, err := uc.store.Get(ctx, store.SubscriptionPath(period, id))
	if err != nil {
		return nil, err
	}
	var s model.Subscription
	if err := store.Decode(doc, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetStatus applies a lifecycle transition. Illegal transitions (anything
// out of cancelada/expirada, or a repeat of the current status) conflict.
func (uc *SubscriptionUseCase) SetStatus(ctx context.Context, period model.Period, id string, status model.SubscriptionStatus) (*model.Subscription, error) {
	switch status {
	case model.SubscriptionStatusActive, model.SubscriptionStatusPaused,
		model.SubscriptionStatusCancelled, model.SubscriptionStatusExpired:
	default:
		return nil, domain.ErrInvalidArgument
	}

	s, err := uc.Get(ctx, period, id)
	if err != nil {
		return nil, err
	}
	if !s.CanTransitionTo(status) {
		return nil, domain.ErrInvalidStatusTransition
	}

	now := time.Now()
	if err := uc.store.Update(ctx, store.SubscriptionPath(period, id), map[string]any{
		"status":        string(status),
		"atualizado_em": now,
	}); err != nil {
		return nil, err
	}
	s.Status = status
	s.UpdatedAt = now
	return s, nil
}

func (uc *SubscriptionUseCase) Cancel(ctx context.Context, period model.Period, id string) (*model.Subscription, error) {
	return uc.SetStatus(ctx, period, id, model.SubscriptionStatusCancelled)
}
