package model

import (
	"regexp"
	"strings"
	"time"

	"fitstudio-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "ativo"
	ClientStatusInactive ClientStatus = "inativo"
)

var cpfRe = regexp.MustCompile(`^\d{11}$`)

// PlanSnapshot is the denormalized plan data carried on a client and on a
// subscription. PeriodDays is the plan period; the due-date rollover treats
// it as a month offset, not literal days.
type PlanSnapshot struct {
	Name       string          `json:"nome"`
	Price      decimal.Decimal `json:"valor"`
	PeriodDays int             `json:"periodo"`
}

// Client is the root entity, identified by an 11-digit CPF. The CPF is
// globally unique and immutable; email is unique across clients.
type Client struct {
	CPF         string        `json:"cpf"`
	Name        string        `json:"nome"`
	Email       string        `json:"email"`
	Phone       string        `json:"telefone,omitempty"`
	BirthDate   *Date         `json:"nascimento,omitempty"`
	Active      bool          `json:"ativo"`
	Status      ClientStatus  `json:"status"`
	Plan        *PlanSnapshot `json:"plano,omitempty"`
	LastPayment *Date         `json:"ultimo_pagamento,omitempty"`
	CreatedAt   time.Time     `json:"criado_em"`
	UpdatedAt   time.Time     `json:"atualizado_em"`
}

// NewClient validates the required fields and returns an active client.
func NewClient(cpf, name, email string) (*Client, error) {
	cpf = strings.TrimSpace(cpf)
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if !cpfRe.MatchString(cpf) {
		return nil, domain.ErrInvalidArgument
	}
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !strings.Contains(email, "@") || strings.Contains(email, "/") {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Client{
		CPF:       cpf,
		Name:      name,
		Email:     email,
		Active:    true,
		Status:    ClientStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidCPF reports whether s is an 11-digit CPF string.
func ValidCPF(s string) bool { return cpfRe.MatchString(s) }
