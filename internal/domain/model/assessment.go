package model

import (
	"time"

	"fitstudio-backend/internal/domain"
)

// Assessment is a body-composition evaluation for a client.
type Assessment struct {
	ID           string             `json:"id"`
	ClientCPF    string             `json:"cpf"`
	Date         Date               `json:"data"`
	WeightKg     float64            `json:"peso_kg"`
	HeightCm     float64            `json:"altura_cm,omitempty"`
	BodyFatPct   float64            `json:"gordura_pct,omitempty"`
	MuscleMassKg float64            `json:"massa_magra_kg,omitempty"`
	Measurements map[string]float64 `json:"medidas,omitempty"`
	Notes        string             `json:"observacoes,omitempty"`
	CreatedAt    time.Time          `json:"criado_em"`
}

func NewAssessment(id, cpf string, date Date, weightKg float64) (*Assessment, error) {
	if id == "" || !ValidCPF(cpf) || weightKg <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Assessment{
		ID:        id,
		ClientCPF: cpf,
		Date:      date,
		WeightKg:  weightKg,
		CreatedAt: time.Now(),
	}, nil
}
