// Package seed creates demo data for development databases. It is not used
// by the API server.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"jobboard/internal/models"
	"jobboard/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "password123"

var jobTypes = []models.JobType{
	models.JobTypeFullTime, models.JobTypePartTime, models.JobTypeInternship, models.JobTypeContract,
}

var skillPool = []string{
	"go", "sql", "postgres", "redis", "docker", "kubernetes", "react", "typescript",
	"python", "aws", "terraform", "graphql", "grpc", "linux",
}

// Factory builds domain entities and persists them through the repositories,
// so counters and uniqueness rules hold for seeded data too.
type Factory struct {
	users     repository.UserRepository
	providers repository.ProviderRepository
	jobs      repository.JobRepository
	apps      repository.ApplicationRepository
	rng       *rand.Rand
	password  string
}

// NewFactory creates a Factory bound to db. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64) (*Factory, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)

	// One hash for every account keeps large seeds fast.
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{
		users:     repository.NewUserRepository(db),
		providers: repository.NewProviderRepository(db),
		jobs:      repository.NewJobRepository(db),
		apps:      repository.NewApplicationRepository(db),
		rng:       rand.New(rand.NewSource(seed)),
		password:  string(hash),
	}, nil
}

func (f *Factory) skills(n int) []string {
	picked := make([]string, 0, n)
	for _, i := range f.rng.Perm(len(skillPool))[:n] {
		picked = append(picked, skillPool[i])
	}
	return picked
}

// CreateApplicant persists an applicant account.
func (f *Factory) CreateApplicant(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Name:       gofakeit.Name(),
		Email:      gofakeit.Email(),
		Password:   f.password,
		Phone:      gofakeit.Phone(),
		Role:       models.RoleApplicant,
		IsActive:   true,
		Bio:        gofakeit.Sentence(12),
		Location:   gofakeit.City(),
		Skills:     f.skills(1 + f.rng.Intn(4)),
		Experience: f.rng.Intn(15),
	}
	for _, o := range overrides {
		o(user)
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateProvider persists a provider account and its company profile.
func (f *Factory) CreateProvider(ctx context.Context, status models.VerificationStatus, overrides ...func(*models.User, *models.Provider)) (*models.User, *models.Provider, error) {
	company := gofakeit.Company()
	user := &models.User{
		Name:        gofakeit.Name(),
		Email:       gofakeit.Email(),
		Password:    f.password,
		Phone:       gofakeit.Phone(),
		Role:        models.RoleProvider,
		IsActive:    true,
		CompanyName: company,
	}
	provider := &models.Provider{
		CompanyName:        company,
		CompanyWebsite:     gofakeit.URL(),
		CompanyType:        gofakeit.BS(),
		Industry:           gofakeit.JobDescriptor(),
		Location:           gofakeit.City(),
		Description:        gofakeit.Paragraph(1, 3, 12, " "),
		EmployeeCount:      fmt.Sprintf("%d-%d", 10*(1+f.rng.Intn(5)), 100*(1+f.rng.Intn(5))),
		VerificationStatus: status,
		IsActive:           true,
	}
	if status == models.VerificationRejected {
		provider.RejectionReason = "Business license could not be confirmed"
	}
	for _, o := range overrides {
		o(user, provider)
	}
	provider.CompanyEmail = user.Email

	if err := f.users.CreateProviderAccount(ctx, user, provider, nil); err != nil {
		return nil, nil, err
	}
	return user, provider, nil
}

// CreateJob persists an active job for provider.
func (f *Factory) CreateJob(ctx context.Context, provider *models.Provider, overrides ...func(*models.Job)) (*models.Job, error) {
	lo := float64(40000 + 5000*f.rng.Intn(10))
	hi := lo + float64(10000+5000*f.rng.Intn(8))
	deadline := time.Now().AddDate(0, 0, 7+f.rng.Intn(60))
	job := &models.Job{
		ProviderID:    provider.ID,
		JobTitle:      gofakeit.JobTitle(),
		Description:   gofakeit.Paragraph(2, 4, 14, "\n\n"),
		Location:      gofakeit.City(),
		JobType:       jobTypes[f.rng.Intn(len(jobTypes))],
		Salary:        models.Salary{Min: &lo, Max: &hi, Currency: models.DefaultCurrency},
		Skills:        f.skills(2 + f.rng.Intn(3)),
		Experience:    fmt.Sprintf("%d+ years", f.rng.Intn(8)),
		Qualification: "Bachelor's degree or equivalent",
		Deadline:      &deadline,
		IsActive:      true,
	}
	for _, o := range overrides {
		o(job)
	}
	if err := f.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// CreateApplication applies user to job, bumping the job's counter.
func (f *Factory) CreateApplication(ctx context.Context, user *models.User, job *models.Job, status models.ApplicationStatus) (*models.Application, error) {
	app := &models.Application{
		UserID:      user.ID,
		JobID:       job.ID,
		ProviderID:  job.ProviderID,
		Status:      status,
		AppliedDate: time.Now().Add(-time.Duration(f.rng.Intn(240)) * time.Hour),
		CoverLetter: gofakeit.Paragraph(1, 3, 10, " "),
	}
	if err := f.apps.CreateWithCounter(ctx, app, nil); err != nil {
		return nil, err
	}
	return app, nil
}
