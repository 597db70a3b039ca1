package service

import (
	"context"
	"testing"

	"jobboard/internal/models"
	"jobboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminServiceStats(t *testing.T) {
	t.Parallel()
	users := noopUserRepo()
	users.countFn = func(context.Context) (int64, error) { return 10, nil }
	users.countByRoleFn = func(_ context.Context, role models.Role) (int64, error) {
		switch role {
		case models.RoleApplicant:
			return 7, nil
		case models.RoleProvider:
			return 2, nil
		}
		return 0, nil
	}
	jobs := noopJobRepo()
	jobs.countActiveFn = func(context.Context) (int64, error) { return 4, nil }
	apps := noopAppRepo()
	apps.countFn = func(_ context.Context, f repository.ApplicationFilter) (int64, error) {
		if f.Status == models.StatusOffer {
			return 1, nil
		}
		return 9, nil
	}

	stats, err := NewAdminService(users, jobs, apps).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &AdminStats{
		TotalUsers:        10,
		TotalApplicants:   7,
		TotalProviders:    2,
		TotalJobs:         4,
		TotalApplications: 9,
		TotalOffers:       1,
	}, stats)
}

func TestAdminServiceStatsPropagatesErrors(t *testing.T) {
	t.Parallel()
	jobs := noopJobRepo()
	jobs.countActiveFn = func(context.Context) (int64, error) {
		return 0, models.NewInternalError(assert.AnError)
	}
	_, err := NewAdminService(noopUserRepo(), jobs, noopAppRepo()).Stats(context.Background())
	assertAppErrorCode(t, err, models.CodeInternal)
}
