package model

import (
	"time"

	"fitstudio-backend/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ativa"
	SubscriptionStatusPaused    SubscriptionStatus = "pausada"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelada"
	SubscriptionStatusExpired   SubscriptionStatus = "expirada"
)

// Subscription is scoped to a billing period partition and carries snapshots
// of the client and plan as they were at creation time.
type Subscription struct {
	ID         string             `json:"id"`
	ClientCPF  string             `json:"cpf"`
	ClientName string             `json:"nome_cliente"`
	PlanID     string             `json:"plano_id"`
	Plan       PlanSnapshot       `json:"plano"`
	Period     string             `json:"periodo"` // display form MM/YYYY
	StartDate  Date               `json:"inicio"`
	EndDate    Date               `json:"fim"`
	Status     SubscriptionStatus `json:"status"`
	CreatedAt  time.Time          `json:"criado_em"`
	UpdatedAt  time.Time          `json:"atualizado_em"`
}

func NewSubscription(id string, client *Client, plan *Plan, period Period, start Date) (*Subscription, error) {
	if id == "" || client == nil || plan == nil {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Subscription{
		ID:         id,
		ClientCPF:  client.CPF,
		ClientName: client.Name,
		PlanID:     plan.ID,
		Plan:       plan.Snapshot(),
		Period:     period.Display(),
		StartDate:  start,
		EndDate:    start.AddMonths(plan.PeriodDays),
		Status:     SubscriptionStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CanTransitionTo enforces the subscription lifecycle: ativa⇄pausada,
// ativa|pausada→cancelada|expirada. Cancelled and expired are terminal.
func (s *Subscription) CanTransitionTo(next SubscriptionStatus) bool {
	switch s.Status {
	case SubscriptionStatusActive:
		return next == SubscriptionStatusPaused || next == SubscriptionStatusCancelled || next == SubscriptionStatusExpired
	case SubscriptionStatusPaused:
		return next == SubscriptionStatusActive || next == SubscriptionStatusCancelled || next == SubscriptionStatusExpired
	default:
		return false
	}
}
