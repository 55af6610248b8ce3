// File: cmd/seed/main.go
// Seeds the membership plan table. Safe to re-run: plans upsert by id.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"clientcard-platform/internal/config"
	"clientcard-platform/internal/domain/model"
	pg "clientcard-platform/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	repo := pg.NewPlanRepo(pool)

	plans := []struct {
		id        string
		tier      model.MembershipTier
		name      string
		days      int
		priceFcfa int64
	}{
		{"00000000-0000-0000-0000-000000000001", model.TierEssential, "Carte Essentielle", 30, 5000},
		{"00000000-0000-0000-0000-000000000002", model.TierPremium, "Carte Premium", 30, 10000},
		{"00000000-0000-0000-0000-000000000003", model.TierElite, "Carte Elite", 30, 25000},
	}

	for _, p := range plans {
		plan, err := model.NewMembershipPlan(p.id, p.tier, p.name, p.days, p.priceFcfa)
		if err != nil {
			log.Fatalf("plan %s: %v", p.name, err)
		}
		if err := repo.Save(ctx, nil, plan); err != nil {
			log.Fatalf("save plan %s: %v", p.name, err)
		}
		log.Printf("seeded plan %s (%s)", plan.Name, plan.Tier)
	}
}
