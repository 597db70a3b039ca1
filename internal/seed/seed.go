package seed

import (
	"context"
	"fmt"
	"log"

	"jobboard/internal/bootstrap"
	"jobboard/internal/models"

	"gorm.io/gorm"
)

// Options sizes a generated demo dataset.
type Options struct {
	Applicants       int
	Providers        int
	JobsPerProvider  int
	AppsPerApplicant int
}

// Summary counts what a seeding run created.
type Summary struct {
	Admins       int
	Applicants   int
	Providers    int
	Jobs         int
	Applications int
}

// Seeder fills a database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder over db.
func NewSeeder(db *gorm.DB, randomSeed int64) (*Seeder, error) {
	f, err := NewFactory(db, randomSeed)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, factory: f}, nil
}

// ClearAll removes every row the API owns, children first.
func (s *Seeder) ClearAll() error {
	tables := []any{
		&models.Attachment{},
		&models.Notification{},
		&models.Complaint{},
		&models.Application{},
		&models.Job{},
		&models.Provider{},
		&models.User{},
	}
	for _, t := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(t).Error; err != nil {
			return fmt.Errorf("clear %T: %w", t, err)
		}
	}
	log.Println("Cleared existing data")
	return nil
}

// Demo generates a random dataset. Every third provider is left pending and
// every fifth rejected; only verified providers get jobs.
func (s *Seeder) Demo(ctx context.Context, opts Options) (*Summary, error) {
	sum := &Summary{}

	var jobs []*models.Job
	for i := 0; i < opts.Providers; i++ {
		status := models.VerificationVerified
		switch {
		case i%5 == 4:
			status = models.VerificationRejected
		case i%3 == 2:
			status = models.VerificationPending
		}
		email := fmt.Sprintf("provider%d@jobboard.local", i+1)
		_, provider, err := s.factory.CreateProvider(ctx, status, func(u *models.User, _ *models.Provider) {
			u.Email = email
		})
		if err != nil {
			return sum, fmt.Errorf("provider %s: %w", email, err)
		}
		sum.Providers++

		if status != models.VerificationVerified {
			continue
		}
		for j := 0; j < opts.JobsPerProvider; j++ {
			job, err := s.factory.CreateJob(ctx, provider)
			if err != nil {
				return sum, fmt.Errorf("job for %s: %w", email, err)
			}
			jobs = append(jobs, job)
			sum.Jobs++
		}
	}

	statuses := models.ApplicationStatuses
	for i := 0; i < opts.Applicants; i++ {
		email := fmt.Sprintf("applicant%d@jobboard.local", i+1)
		user, err := s.factory.CreateApplicant(ctx, func(u *models.User) { u.Email = email })
		if err != nil {
			return sum, fmt.Errorf("applicant %s: %w", email, err)
		}
		sum.Applicants++

		if len(jobs) == 0 {
			continue
		}
		n := min(opts.AppsPerApplicant, len(jobs))
		for _, idx := range s.factory.rng.Perm(len(jobs))[:n] {
			status := statuses[s.factory.rng.Intn(len(statuses))]
			if _, err := s.factory.CreateApplication(ctx, user, jobs[idx], status); err != nil {
				return sum, fmt.Errorf("application for %s: %w", email, err)
			}
			sum.Applications++
		}
	}
	return sum, nil
}

// Admin ensures a demo admin account exists.
func (s *Seeder) Admin(ctx context.Context, email string) error {
	_, err := bootstrap.EnsureAdmin(ctx, s.db, bootstrap.AdminAccount{
		Email:    email,
		Password: DefaultPassword,
		Name:     "Demo Admin",
	})
	return err
}
