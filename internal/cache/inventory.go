package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	JobKeyPrefix        = "job:%d"
	AdminStatsKey       = "admin:stats"
	ProviderStatsPrefix = "provider:%d:stats"
	RevokedTokenPrefix  = "blacklist:%s"
)

const (
	JobTTL           = 5 * time.Minute
	AdminStatsTTL    = time.Minute
	ProviderStatsTTL = time.Minute
)

func JobKey(jobID uint) string {
	return fmt.Sprintf(JobKeyPrefix, jobID)
}

func ProviderStatsKey(providerID uint) string {
	return fmt.Sprintf(ProviderStatsPrefix, providerID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateJob(ctx context.Context, jobID uint) {
	Invalidate(ctx, JobKey(jobID))
}

// InvalidateStats drops the aggregate counters touched by application and job writes.
func InvalidateStats(ctx context.Context, providerID uint) {
	Invalidate(ctx, AdminStatsKey, ProviderStatsKey(providerID))
}
