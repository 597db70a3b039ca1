package service

import (
	"context"
	"strings"
	"time"

	"jobboard/internal/cache"
	"jobboard/internal/models"
	"jobboard/internal/repository"

	"gorm.io/datatypes"
)

// JobService owns job postings. Writes are restricted to the owning provider.
type JobService struct {
	jobs      repository.JobRepository
	providers *ProviderService
}

// NewJobService returns a new JobService.
func NewJobService(jobs repository.JobRepository, providers *ProviderService) *JobService {
	return &JobService{jobs: jobs, providers: providers}
}

// JobInput is a create or partial-update body. Nil fields are left unchanged.
type JobInput struct {
	JobTitle      *string         `json:"jobTitle"`
	Description   *string         `json:"description"`
	Location      *string         `json:"location"`
	JobType       *models.JobType `json:"jobType"`
	Salary        *models.Salary  `json:"salary"`
	Skills        *[]string       `json:"skills"`
	Experience    *string         `json:"experience"`
	Qualification *string         `json:"qualification"`
	Deadline      *time.Time      `json:"deadline"`
	IsActive      *bool           `json:"isActive"`
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func validateSalary(s *models.Salary) error {
	if s == nil {
		return nil
	}
	if (s.Min != nil && *s.Min < 0) || (s.Max != nil && *s.Max < 0) {
		return models.NewValidationError("Salary must not be negative")
	}
	if s.Min != nil && s.Max != nil && *s.Min > *s.Max {
		return models.NewValidationError("Salary min cannot exceed max")
	}
	if s.Currency == "" {
		s.Currency = models.DefaultCurrency
	}
	return nil
}

// Create posts a job for the caller. The caller's provider must be verified.
func (s *JobService) Create(ctx context.Context, p models.Principal, in JobInput) (*models.Job, error) {
	provider, err := s.providers.GetOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}
	if provider.VerificationStatus != models.VerificationVerified {
		return nil, models.NewForbiddenError("Your provider account must be verified before posting jobs").
			WithField("verificationStatus", provider.VerificationStatus)
	}

	job := &models.Job{
		ProviderID:    provider.ID,
		JobTitle:      trimmed(in.JobTitle),
		Description:   trimmed(in.Description),
		Location:      trimmed(in.Location),
		Experience:    trimmed(in.Experience),
		Qualification: trimmed(in.Qualification),
		Deadline:      in.Deadline,
		IsActive:      true,
	}
	if job.JobTitle == "" || job.Description == "" || job.Location == "" || in.JobType == nil {
		return nil, models.NewValidationError("jobTitle, description, location and jobType are required")
	}
	if !in.JobType.Valid() {
		return nil, models.NewValidationError("Invalid job type")
	}
	job.JobType = *in.JobType
	if err := validateSalary(in.Salary); err != nil {
		return nil, err
	}
	if in.Salary != nil {
		job.Salary = *in.Salary
	} else {
		job.Salary.Currency = models.DefaultCurrency
	}
	if in.Skills != nil {
		job.Skills = *in.Skills
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	cache.InvalidateStats(ctx, provider.ID)
	return job, nil
}

// Get returns a job by id, served from cache when possible.
func (s *JobService) Get(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := cache.Aside(ctx, cache.JobKey(id), &job, cache.JobTTL, func() error {
		got, err := s.jobs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		job = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// owned loads a job and checks that the caller's provider owns it.
func (s *JobService) owned(ctx context.Context, p models.Principal, id uint) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	provider, err := s.providers.GetOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}
	if provider.ID != job.ProviderID {
		return nil, models.NewForbiddenError("Not authorized to modify this job")
	}
	return job, nil
}

// Update applies a partial edit to one of the caller's jobs.
func (s *JobService) Update(ctx context.Context, p models.Principal, id uint, in JobInput) (*models.Job, error) {
	job, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	required := []struct {
		col, name string
		v         *string
	}{
		{"job_title", "jobTitle", in.JobTitle},
		{"description", "description", in.Description},
		{"location", "location", in.Location},
	}
	for _, r := range required {
		if r.v == nil {
			continue
		}
		if strings.TrimSpace(*r.v) == "" {
			return nil, models.NewValidationError(r.name + " cannot be empty")
		}
		fields[r.col] = strings.TrimSpace(*r.v)
	}
	if in.JobType != nil {
		if !in.JobType.Valid() {
			return nil, models.NewValidationError("Invalid job type")
		}
		fields["job_type"] = *in.JobType
	}
	if in.Salary != nil {
		if err := validateSalary(in.Salary); err != nil {
			return nil, err
		}
		fields["salary_min"] = in.Salary.Min
		fields["salary_max"] = in.Salary.Max
		fields["salary_currency"] = in.Salary.Currency
	}
	if in.Skills != nil {
		fields["skills"] = datatypes.JSONSlice[string](*in.Skills)
	}
	if in.Experience != nil {
		fields["experience"] = trimmed(in.Experience)
	}
	if in.Qualification != nil {
		fields["qualification"] = trimmed(in.Qualification)
	}
	if in.Deadline != nil {
		fields["deadline"] = *in.Deadline
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}

	if err := s.jobs.UpdateFields(ctx, job.ID, fields); err != nil {
		return nil, err
	}
	cache.InvalidateJob(ctx, job.ID)
	cache.InvalidateStats(ctx, job.ProviderID)
	return s.jobs.GetByID(ctx, job.ID)
}

// Delete closes one of the caller's jobs. Rows are never removed.
func (s *JobService) Delete(ctx context.Context, p models.Principal, id uint) error {
	job, err := s.owned(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.jobs.SetActive(ctx, job.ID, false); err != nil {
		return err
	}
	cache.InvalidateJob(ctx, job.ID)
	cache.InvalidateStats(ctx, job.ProviderID)
	return nil
}

// ListPublic lists active jobs only.
func (s *JobService) ListPublic(ctx context.Context, filter repository.JobFilter, page models.PageQuery) ([]models.Job, int64, error) {
	active := true
	filter.IsActive = &active
	filter.ProviderID = 0
	return s.jobs.List(ctx, filter, page)
}

// ListMine lists every job the caller's provider owns, active or not.
func (s *JobService) ListMine(ctx context.Context, p models.Principal, page models.PageQuery) ([]models.Job, int64, error) {
	provider, err := s.providers.GetOrCreate(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	return s.jobs.List(ctx, repository.JobFilter{ProviderID: provider.ID}, page)
}

// ListAll is the admin view; isActive nil matches every job.
func (s *JobService) ListAll(ctx context.Context, isActive *bool, page models.PageQuery) ([]models.Job, int64, error) {
	return s.jobs.List(ctx, repository.JobFilter{IsActive: isActive}, page)
}

// Deactivate closes any job on behalf of an admin.
func (s *JobService) Deactivate(ctx context.Context, id uint) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.jobs.SetActive(ctx, id, false); err != nil {
		return nil, err
	}
	cache.InvalidateJob(ctx, id)
	cache.InvalidateStats(ctx, job.ProviderID)
	job.IsActive = false
	return job, nil
}

// ExpireDeadlines closes every active job whose deadline has passed.
func (s *JobService) ExpireDeadlines(ctx context.Context, now time.Time) (int64, error) {
	expired, err := s.jobs.DeactivateExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, job := range expired {
		cache.InvalidateJob(ctx, job.ID)
		cache.InvalidateStats(ctx, job.ProviderID)
	}
	return int64(len(expired)), nil
}
