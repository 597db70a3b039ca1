package service

import (
	"context"
	"testing"
	"time"

	"jobboard/internal/models"
	"jobboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validJobInput() JobInput {
	jt := models.JobTypeFullTime
	return JobInput{
		JobTitle:    strPtr("Go Engineer"),
		Description: strPtr("Write services"),
		Location:    strPtr("Berlin"),
		JobType:     &jt,
	}
}

func TestJobServiceCreateRequiresVerifiedProvider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := models.Principal{UserID: 10, Role: models.RoleProvider}

	f := newProviderFixture(&models.Provider{ID: 1, UserID: 10, VerificationStatus: models.VerificationPending})
	svc := NewJobService(noopJobRepo(), f.svc)

	_, err := svc.Create(ctx, owner, validJobInput())
	appErr := assertAppErrorCode(t, err, models.CodeForbidden)
	assert.Equal(t, models.VerificationPending, appErr.Fields["verificationStatus"])

	_, err = f.svc.SetVerification(ctx, 1, "verified", "")
	require.NoError(t, err)

	job, err := svc.Create(ctx, owner, validJobInput())
	require.NoError(t, err)
	assert.True(t, job.IsActive)
	assert.Zero(t, job.ApplicationsCount)
	assert.Equal(t, uint(1), job.ProviderID)
	assert.Equal(t, models.DefaultCurrency, job.Salary.Currency)
}

func TestJobServiceCreateValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := models.Principal{UserID: 10, Role: models.RoleProvider}
	f := newProviderFixture(&models.Provider{ID: 1, UserID: 10, VerificationStatus: models.VerificationVerified})
	svc := NewJobService(noopJobRepo(), f.svc)

	missing := validJobInput()
	missing.JobTitle = strPtr("  ")
	_, err := svc.Create(ctx, owner, missing)
	assertAppErrorCode(t, err, models.CodeValidation)

	badType := validJobInput()
	jt := models.JobType("Gig")
	badType.JobType = &jt
	_, err = svc.Create(ctx, owner, badType)
	assertAppErrorCode(t, err, models.CodeValidation)

	badSalary := validJobInput()
	lo, hi := 100.0, 50.0
	badSalary.Salary = &models.Salary{Min: &lo, Max: &hi}
	_, err = svc.Create(ctx, owner, badSalary)
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestJobServiceOwnership(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newProviderFixture(
		&models.Provider{ID: 1, UserID: 10, VerificationStatus: models.VerificationVerified},
		&models.Provider{ID: 2, UserID: 20, VerificationStatus: models.VerificationVerified},
	)
	jobs := noopJobRepo()
	var deactivated []uint
	jobs.setActiveFn = func(_ context.Context, id uint, active bool) error {
		assert.False(t, active)
		deactivated = append(deactivated, id)
		return nil
	}
	var updated map[string]any
	jobs.updateFieldsFn = func(_ context.Context, _ uint, fields map[string]any) error {
		updated = fields
		return nil
	}
	svc := NewJobService(jobs, f.svc)

	stranger := models.Principal{UserID: 20, Role: models.RoleProvider}
	owner := models.Principal{UserID: 10, Role: models.RoleProvider}

	_, err := svc.Update(ctx, stranger, 3, JobInput{JobTitle: strPtr("Hijacked")})
	assertAppErrorCode(t, err, models.CodeForbidden)
	assertAppErrorCode(t, svc.Delete(ctx, stranger, 3), models.CodeForbidden)
	assert.Empty(t, deactivated)

	_, err = svc.Update(ctx, owner, 3, JobInput{JobTitle: strPtr(" Senior Engineer ")})
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", updated["job_title"])
	assert.NotContains(t, updated, "description")

	require.NoError(t, svc.Delete(ctx, owner, 3))
	assert.Equal(t, []uint{3}, deactivated)
}

func TestJobServiceListPublicForcesActive(t *testing.T) {
	t.Parallel()
	jobs := noopJobRepo()
	jobs.listFn = func(_ context.Context, f repository.JobFilter, _ models.PageQuery) ([]models.Job, int64, error) {
		require.NotNil(t, f.IsActive)
		assert.True(t, *f.IsActive)
		assert.Zero(t, f.ProviderID)
		return nil, 0, nil
	}
	svc := NewJobService(jobs, newProviderFixture().svc)

	inactive := false
	_, _, err := svc.ListPublic(context.Background(), repository.JobFilter{IsActive: &inactive, ProviderID: 4}, models.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
}

func TestJobServiceExpireDeadlines(t *testing.T) {
	t.Parallel()
	jobs := noopJobRepo()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	jobs.deactivateExpiredFn = func(_ context.Context, at time.Time) ([]models.Job, error) {
		assert.Equal(t, now, at)
		return []models.Job{{ID: 3, ProviderID: 1}, {ID: 4, ProviderID: 2}}, nil
	}
	svc := NewJobService(jobs, newProviderFixture().svc)

	n, err := svc.ExpireDeadlines(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
