package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/bekimbicaku/scan-perks/internal/config"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
	pg "github.com/bekimbicaku/scan-perks/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPlanRepo(pool)

	// If plans already exist, do nothing
	plans, err := planRepo.List(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s ($%.2f/mo, %d offers/week)\n", p.Name, float64(p.PriceCents)/100, p.WeeklyOfferLimit)
		}
		return
	}

	seed := []struct {
		ID         model.PlanID
		Name       string
		PriceCents int64
		PriceID    string
		ScanLimit  int
		OfferLimit int
	}{
		{model.PlanBasic, "Basic", 10_00, "price_basic_monthly", 0, 1},
		{model.PlanPremium, "Premium", 15_00, "price_premium_monthly", 0, 2},
	}

	for _, s := range seed {
		p, err := model.NewPlan(s.ID, s.Name, s.PriceCents, s.PriceID, s.ScanLimit, s.OfferLimit)
		if err != nil {
			log.Fatalf("build plan %q: %v", s.Name, err)
		}
		if err := planRepo.Save(ctx, repository.NoTX, p); err != nil {
			log.Fatalf("save plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%s, $%.2f/mo, %d offers/week)\n", p.Name, p.ID, float64(p.PriceCents)/100, p.WeeklyOfferLimit)
	}

	fmt.Println("✅ Seeding complete.")
}
