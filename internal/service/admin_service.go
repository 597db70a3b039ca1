package service

import (
	"context"

	"jobboard/internal/cache"
	"jobboard/internal/models"
	"jobboard/internal/repository"

	"golang.org/x/sync/errgroup"
)

// AdminStats is the platform-wide dashboard summary.
type AdminStats struct {
	TotalUsers        int64 `json:"totalUsers"`
	TotalApplicants   int64 `json:"totalApplicants"`
	TotalProviders    int64 `json:"totalProviders"`
	TotalJobs         int64 `json:"totalJobs"`
	TotalApplications int64 `json:"totalApplications"`
	TotalOffers       int64 `json:"totalOffers"`
}

// AdminService aggregates platform statistics.
type AdminService struct {
	users repository.UserRepository
	jobs  repository.JobRepository
	apps  repository.ApplicationRepository
}

// NewAdminService returns a new AdminService.
func NewAdminService(users repository.UserRepository, jobs repository.JobRepository, apps repository.ApplicationRepository) *AdminService {
	return &AdminService{users: users, jobs: jobs, apps: apps}
}

// Stats runs the counters concurrently and caches the result briefly.
// TotalJobs counts active jobs only.
func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	var stats AdminStats
	err := cache.Aside(ctx, cache.AdminStatsKey, &stats, cache.AdminStatsTTL, func() error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			stats.TotalUsers, err = s.users.Count(gctx)
			return err
		})
		g.Go(func() (err error) {
			stats.TotalApplicants, err = s.users.CountByRole(gctx, models.RoleApplicant)
			return err
		})
		g.Go(func() (err error) {
			stats.TotalProviders, err = s.users.CountByRole(gctx, models.RoleProvider)
			return err
		})
		g.Go(func() (err error) {
			stats.TotalJobs, err = s.jobs.CountActive(gctx)
			return err
		})
		g.Go(func() (err error) {
			stats.TotalApplications, err = s.apps.Count(gctx, repository.ApplicationFilter{})
			return err
		})
		g.Go(func() (err error) {
			stats.TotalOffers, err = s.apps.Count(gctx, repository.ApplicationFilter{Status: models.StatusOffer})
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
