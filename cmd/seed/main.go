// Command main runs the database seeder for the job board.
package main

import (
	"context"
	"flag"
	"log"

	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/seed"
)

func main() {
	applicants := flag.Int("applicants", 30, "Number of applicants to create")
	providers := flag.Int("providers", 8, "Number of providers to create")
	jobsPer := flag.Int("jobs", 4, "Jobs per verified provider")
	appsPer := flag.Int("apps", 3, "Applications per applicant")
	fixture := flag.String("fixture", "", "Load a YAML fixture instead of random data")
	adminEmail := flag.String("admin", "admin@jobboard.local", "Demo admin email (empty to skip)")
	clean := flag.Bool("clean", true, "Clean database before seeding")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, *randomSeed)
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}
	if *clean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	ctx := context.Background()
	if *adminEmail != "" {
		if err := s.Admin(ctx, *adminEmail); err != nil {
			log.Fatalf("Admin seeding failed: %v", err)
		}
	}

	var sum *seed.Summary
	if *fixture != "" {
		fx, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("Failed to load fixture: %v", err)
		}
		sum, err = s.Apply(ctx, fx)
		if err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
	} else {
		sum, err = s.Demo(ctx, seed.Options{
			Applicants:       *applicants,
			Providers:        *providers,
			JobsPerProvider:  *jobsPer,
			AppsPerApplicant: *appsPer,
		})
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	log.Printf("Seeded %d providers, %d jobs, %d applicants, %d applications (password %q)",
		sum.Providers, sum.Jobs, sum.Applicants, sum.Applications, seed.DefaultPassword)
}
