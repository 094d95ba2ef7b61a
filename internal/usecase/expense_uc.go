package usecase

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fitstudio-backend/internal/domain"
	"fitstudio-backend/internal/domain/model"
	"fitstudio-backend/internal/domain/ports/store"
)

// ExpenseUseCase manages period-scoped expenses.
type ExpenseUseCase struct {
	store store.Store
	log   *zerolog.Logger
}

func NewExpenseUseCase(st store.Store, logger *zerolog.Logger) *ExpenseUseCase {
	return &ExpenseUseCase{store: st, log: logger}
}

// newExpenseID returns a ULID so expense documents sort by creation time.
func newExpenseID() string {
	return ulid.Make().String()
}

func (uc *ExpenseUseCase) Create(ctx context.Context, period model.Period, description, category string, amount decimal.Decimal, due model.Date) (*model.Expense, error) {
	e, err := model.NewExpense(newExpenseID(), description, category, amount, period, due)
	if err != nil {
		return nil, err
	}
	fields, err := store.Fields(e)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Set(ctx, store.ExpensePath(period, e.ID), fields, false); err != nil {
		return nil, err
	}
	return e, nil
}

func (uc *ExpenseUseCase) List(ctx context.Context, period model.Period) ([]*model.Expense, error) {
	docs, err := uc.store.Query(ctx, store.Expenses(period), nil, "vencimento")
	if err != nil {
		return nil, err
	}
	out := make([]*model.Expense, 0, len(docs))
	for _, doc := range docs {
		var e model.Expense
		if err := store.Decode(doc, &e); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, nil
}

func (uc *ExpenseUseCase) Delete(ctx context.Context, period model.Period, id string) error {
	if id == "" {
		return domain.ErrInvalidArgument
	}
	if _, err := uc.store.Get(ctx, store.ExpensePath(period, id)); err != nil {
		return err
	}
	return uc.store.Delete(ctx, store.ExpensePath(period, id))
}

// MarkPaid transitions an expense from unpaid to paid, exactly once.
func (uc *ExpenseUseCase) MarkPaid(ctx context.Context, period model.Period, id string) (*model.Expense, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	path := store.ExpensePath(period, id)
	doc, err := uc.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var e model.Expense
	if err := store.Decode(doc, &e); err != nil {
		return nil, err
	}
	if e.Paid {
		return nil, domain.ErrAlreadyPaid
	}

	today := model.Today()
	now := time.Now()
	if err := uc.store.Update(ctx, path, map[string]any{
		"pago":           true,
		"data_pagamento": today.String(),
		"atualizado_em":  now,
	}); err != nil {
		return nil, err
	}
	e.Paid = true
	e.PaymentDate = &today
	e.UpdatedAt = now
	return &e, nil
}
