package usecase

import (
	"context"

	"github.com/google/uuid"

	"fitstudio-backend/internal/domain"
	"fitstudio-backend/internal/domain/model"
	"fitstudio-backend/internal/domain/ports/store"
)

// AssessmentUseCase manages body-composition assessments per client.
type AssessmentUseCase struct {
	store store.Store
}

func NewAssessmentUseCase(st store.Store) *AssessmentUseCase {
	return &AssessmentUseCase{store: st}
}

// CreateAssessmentInput carries one evaluation's measurements.
type CreateAssessmentInput struct {
	Date         model.Date
	WeightKg     float64
	HeightCm     float64
	BodyFatPct   float64
	MuscleMassKg float64
	Measurements map[string]float64
	Notes        string
}

func (uc *AssessmentUseCase) Create(ctx context.Context, cpf string, in CreateAssessmentInput) (*model.Assessment, error) {
	// The client must exist; assessments hang off its CPF.
	if _, err := uc.store.Get(ctx, store.ClientPath(cpf)); err != nil {
		return nil, err
	}
	date := in.Date
	if date.IsZero() {
		date = model.Today()
	}
	a, err := model.NewAssessment(uuid.NewString(), cpf, date, in.WeightKg)
	if err != nil {
		return nil, err
	}
	a.HeightCm = in.HeightCm
	a.BodyFatPct = in.BodyFatPct
	a.MuscleMassKg = in.MuscleMassKg
	a.Measurements = in.Measurements
	a.Notes = in.Notes

	fields, err := store.Fields(a)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Set(ctx, store.AssessmentPath(cpf, a.ID), fields, false); err != nil {
		return nil, err
	}
	return a, nil
}

func (uc *AssessmentUseCase) List(ctx context.Context, cpf string) ([]*model.Assessment, error) {
	if !model.ValidCPF(cpf) {
		return nil, domain.ErrInvalidArgument
	}
	docs, err := uc.store.Query(ctx, store.Assessments(cpf), nil, "data")
	if err != nil {
		return nil, err
	}
	out := make([]*model.Assessment, 0, len(docs))
	for _, doc := range docs {
		var a model.Assessment
		if err := store.Decode(doc, &a); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, nil
}

func (uc *AssessmentUseCase) Delete(ctx context.Context, cpf, id string) error {
	if !model.ValidCPF(cpf) || id == "" {
		return domain.ErrInvalidArgument
	}
	if _, err := uc.store.Get(ctx, store.AssessmentPath(cpf, id)); err != nil {
		return err
	}
	return uc.store.Delete(ctx, store.AssessmentPath(cpf, id))
}
