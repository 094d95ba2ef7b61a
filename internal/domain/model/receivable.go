package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receivable records money owed by a client for a billing period. It is
// created by reconciliation (keyed by CPF inside the period partition) and
// mutated only by marking it paid.
type Receivable struct {
	ClientCPF   string          `json:"cpf"`
	ClientName  string          `json:"nome"`
	Amount      decimal.Decimal `json:"valor"`
	Period      string          `json:"periodo"` // display form MM/YYYY
	DueDate     Date            `json:"vencimento"`
	Paid        bool            `json:"pago"`
	PaymentDate *Date           `json:"data_pagamento,omitempty"`
	UpdatedAt   time.Time       `json:"atualizado_em"`
}
