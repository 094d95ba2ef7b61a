// Seeds a development database with plans and fake clients so the finance
// screens have something to show. Idempotent on plans: an already-seeded
// database is left untouched.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"fitstudio-backend/internal/config"
	"fitstudio-backend/internal/domain/model"
	"fitstudio-backend/internal/domain/ports/store"
	"fitstudio-backend/internal/infra/docstore"
	idinfra "fitstudio-backend/internal/infra/identity"
	"fitstudio-backend/internal/infra/logging"
	"fitstudio-backend/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	clients := flag.Int("clients", 25, "number of fake clients to create")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := docstore.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	st := docstore.NewPostgres(pool)

	planUC := usecase.NewPlanUseCase(st)
	clientUC := usecase.NewClientUseCase(st, idinfra.NewNoopProvider(), logger)

	existing, err := planUC.List(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(existing))
		return
	}

	seedPlans := []struct {
		name       string
		price      int64
		periodDays int
	}{
		{"Mensal", 120, 1},
		{"Trimestral", 330, 3},
		{"Semestral", 600, 6},
		{"Anual", 1080, 12},
	}
	plans := make([]*model.Plan, 0, len(seedPlans))
	for _, s := range seedPlans {
		p, err := planUC.Create(ctx, s.name, decimal.NewFromInt(s.price), s.periodDays)
		if err != nil {
			log.Fatalf("create plan %q: %v", s.name, err)
		}
		plans = append(plans, p)
		fmt.Printf("seeded plan: %s (id=%s, R$%d, %d meses)\n", p.Name, p.ID, s.price, s.periodDays)
	}

	faker := gofakeit.New(0)
	created := 0
	for i := 0; i < *clients; i++ {
		plan := plans[faker.Number(0, len(plans)-1)]
		snap := plan.Snapshot()
		birth := model.NewDate(faker.Number(1960, 2006), time.Month(faker.Number(1, 12)), faker.Number(1, 28))

		c, _, err := clientUC.Create(ctx, usecase.CreateClientInput{
			CPF:       fakeCPF(faker),
			Name:      faker.Name(),
			Email:     faker.Email(),
			Password:  faker.Password(true, true, true, false, false, 10),
			Phone:     faker.Phone(),
			BirthDate: &birth,
			Plan:      &snap,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("seed client skipped")
			continue
		}

		// Backdate a payment so the next reconcile run produces receivables.
		last := model.Today().AddMonths(-plan.PeriodDays)
		if err := st.Set(ctx, store.ClientPath(c.CPF), map[string]any{
			"ultimo_pagamento": last.String(),
		}, true); err != nil {
			log.Fatalf("backdate payment: %v", err)
		}
		created++
	}
	fmt.Printf("seeded %d clients\n", created)
}

func fakeCPF(f *gofakeit.Faker) string {
	digits := make([]byte, 11)
	for i := range digits {
		digits[i] = byte('0' + f.Number(0, 9))
	}
	return string(digits)
}
