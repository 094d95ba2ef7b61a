package model

import (
	"strings"
	"time"

	"fitstudio-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Plan is a membership plan offered by the studio. PeriodDays must be a
// positive integer; a plan is immutable once referenced by a subscription,
// except through an explicit edit.
type Plan struct {
	ID         string          `json:"id"`
	Name       string          `json:"nome"`
	Price      decimal.Decimal `json:"valor"`
	PeriodDays int             `json:"periodo"`
	CreatedAt  time.Time       `json:"criado_em"`
	UpdatedAt  time.Time       `json:"atualizado_em"`
}

func NewPlan(id, name string, price decimal.Decimal, periodDays int) (*Plan, error) {
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return nil, domain.ErrInvalidArgument
	}
	if price.LessThanOrEqual(decimal.Zero) || periodDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Plan{
		ID:         id,
		Name:       name,
		Price:      price,
		PeriodDays: periodDays,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Snapshot returns the denormalized form carried on clients and subscriptions.
func (p *Plan) Snapshot() PlanSnapshot {
	return PlanSnapshot{Name: p.Name, Price: p.Price, PeriodDays: p.PeriodDays}
}
