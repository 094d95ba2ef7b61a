package model

import (
	"strings"
	"time"

	"fitstudio-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Expense is a cost scoped to a billing period. Lifecycle: created → paid
// (terminal) or deleted.
type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"descricao"`
	Amount      decimal.Decimal `json:"valor"`
	Category    string          `json:"categoria,omitempty"`
	Period      string          `json:"periodo"` // display form MM/YYYY
	DueDate     Date            `json:"vencimento"`
	Paid        bool            `json:"pago"`
	PaymentDate *Date           `json:"data_pagamento,omitempty"`
	CreatedAt   time.Time       `json:"criado_em"`
	UpdatedAt   time.Time       `json:"atualizado_em"`
}

func NewExpense(id, description, category string, amount decimal.Decimal, period Period, due Date) (*Expense, error) {
	description = strings.TrimSpace(description)
	if id == "" || description == "" {
		return nil, domain.ErrInvalidArgument
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Expense{
		ID:          id,
		Description: description,
		Amount:      amount,
		Category:    strings.TrimSpace(category),
		Period:      period.Display(),
		DueDate:     due,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
