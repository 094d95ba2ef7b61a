// Package usecase implements the business operations on top of the store
// and identity ports.
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fitstudio-backend/internal/domain"
	"fitstudio-backend/internal/domain/model"
	"fitstudio-backend/internal/domain/ports/notify"
	"fitstudio-backend/internal/domain/ports/store"
)

// NextDueDate computes the next due date: the last payment date with the
// plan period added as calendar months (month overflow carries into the
// year). A period of zero or less produces no due date; the caller skips
// the client. This is deliberate policy, not an error.
func NextDueDate(lastPayment model.Date, periodDays int) (model.Date, bool) {
	if periodDays <= 0 || lastPayment.IsZero() {
		return model.Date{}, false
	}
	return lastPayment.AddMonths(periodDays), true
}

// FinanceUseCase is the finance reconciler: due-date rollover, receivable
// upserts per period, paid-state toggles and the period summary.
type FinanceUseCase struct {
	store    store.Store
	notifier notify.Notifier
	log      *zerolog.Logger
}

func NewFinanceUseCase(st store.Store, notifier notify.Notifier, logger *zerolog.Logger) *FinanceUseCase {
	return &FinanceUseCase{store: st, notifier: notifier, log: logger}
}

// Reconcile scans all active clients, computes each one's next due date and
// upserts one receivable per client whose due date falls in the target
// period. All upserts go through a single atomic batch: either the whole
// run commits or none of it does. Returns the number of clients processed.
//
// Clients without a last payment date or a positive plan period are
// silently skipped. Re-running with unchanged input is idempotent: the
// merge payload never touches the paid flag or payment date.
func (uc *FinanceUseCase) Reconcile(ctx context.Context, period model.Period) (int, error) {
	if period.IsZero() {
		period = model.CurrentPeriod()
	}

	docs, err := uc.store.Query(ctx, store.Clients(),
		[]store.Filter{{Field: "status", Value: string(model.ClientStatusActive)}}, "nome")
	if err != nil {
		return 0, err
	}

	batch := uc.store.Batch()
	processed := 0
	for _, doc := range docs {
		var c model.Client
		if err := store.Decode(doc, &c); err != nil {
			uc.log.Warn().Str("path", doc.Path).Msg("reconcile: skipping undecodable client")
			continue
		}
		if c.Plan == nil || c.LastPayment == nil {
			continue
		}
		due, ok := NextDueDate(*c.LastPayment, c.Plan.PeriodDays)
		if !ok || !period.Contains(due.Time) {
			continue
		}

		fields, err := store.Fields(map[string]any{
			"cpf":           c.CPF,
			"nome":          c.Name,
			"valor":         c.Plan.Price,
			"periodo":       period.Display(),
			"vencimento":    due,
			"atualizado_em": time.Now(),
		})
		if err != nil {
			return 0, err
		}
		batch.Set(store.ReceivablePath(period, c.CPF), fields, true)
		processed++
	}

	if processed > 0 {
		if err := batch.Commit(ctx); err != nil {
			return 0, err
		}
	}

	uc.log.Info().Str("period", period.Key()).Int("processed", processed).Msg("reconcile finished")
	if uc.notifier != nil {
		if err := uc.notifier.ReconcileFinished(ctx, period, processed); err != nil {
			uc.log.Warn().Err(err).Msg("reconcile: notifier failed")
		}
	}
	return processed, nil
}

// ListReceivables returns the period's receivables ordered by due date.
func (uc *FinanceUseCase) ListReceivables(ctx context.Context, period model.Period) ([]*model.Receivable, error) {
	docs, err := uc.store.Query(ctx, store.Receivables(period), nil, "vencimento")
	if err != nil {
		return nil, err
	}
	out := make([]*model.Receivable, 0, len(docs))
	for _, doc := range docs {
		var r model.Receivable
		if err := store.Decode(doc, &r); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, nil
}

// MarkReceivablePaid transitions a receivable from unpaid to paid. Paying an
// already-paid record is a conflict; the first payment date is preserved.
func (uc *FinanceUseCase) MarkReceivablePaid(ctx context.Context, period model.Period, cpf string) (*model.Receivable, error) {
	if !model.ValidCPF(cpf) {
		return nil, domain.ErrInvalidArgument
	}
	path := store.ReceivablePath(period, cpf)
	doc, err := uc.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var r model.Receivable
	if err := store.Decode(doc, &r); err != nil {
		return nil, err
	}
	if r.Paid {
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
	r.Paid = true
	r.PaymentDate = &today
	r.UpdatedAt = now

	// Roll the client's last payment date so the next reconciliation run
	// computes the following cycle. Best effort, same as the mirrors.
	if err := uc.store.Set(ctx, store.ClientPath(cpf), map[string]any{
		"ultimo_pagamento": today.String(),
		"atualizado_em":    now,
	}, true); err != nil {
		uc.log.Warn().Err(err).Str("cpf", cpf).Msg("receivable paid: client last-payment update failed")
	}
	return &r, nil
}

// PeriodSummary aggregates a period's receivables and expenses.
type PeriodSummary struct {
	Period       string          `json:"periodo"`
	Expected     decimal.Decimal `json:"previsto"`
	Received     decimal.Decimal `json:"recebido"`
	Open         decimal.Decimal `json:"em_aberto"`
	Expenses     decimal.Decimal `json:"despesas"`
	ExpensesPaid decimal.Decimal `json:"despesas_pagas"`
	ExpensesOpen decimal.Decimal `json:"despesas_em_aberto"`
	Balance      decimal.Decimal `json:"saldo"`
}

// Summary computes the financial totals for a period. Balance is received
// revenue minus paid expenses.
func (uc *FinanceUseCase) Summary(ctx context.Context, period model.Period) (*PeriodSummary, error) {
	receivables, err := uc.ListReceivables(ctx, period)
	if err != nil {
		return nil, err
	}
	expenseDocs, err := uc.store.Query(ctx, store.Expenses(period), nil, "vencimento")
	if err != nil {
		return nil, err
	}

	s := &PeriodSummary{Period: period.Display()}
	for _, r := range receivables {
		s.Expected = s.Expected.Add(r.Amount)
		if r.Paid {
			s.Received = s.Received.Add(r.Amount)
		} else {
			s.Open = s.Open.Add(r.Amount)
		}
	}
	for _, doc := range expenseDocs {
		var e model.Expense
		if err := store.Decode(doc, &e); err != nil {
			return nil, err
		}
		s.Expenses = s.Expenses.Add(e.Amount)
		if e.Paid {
			s.ExpensesPaid = s.ExpensesPaid.Add(e.Amount)
		} else {
			s.ExpensesOpen = s.ExpensesOpen.Add(e.Amount)
		}
	}
	s.Balance = s.Received.Sub(s.ExpensesPaid)
	return s, nil
}
