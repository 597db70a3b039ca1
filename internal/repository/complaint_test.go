package repository

import (
	"context"
	"testing"
	"time"

	"jobboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplaintRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewComplaintRepository(db)
	ctx := context.Background()

	filer := seedUser(t, db, models.RoleApplicant)
	admin := seedUser(t, db, models.RoleAdmin)

	c1 := &models.Complaint{UserID: filer.ID, TargetType: models.TargetJob, TargetID: "12", Message: "spam", Status: models.ComplaintOpen}
	c2 := &models.Complaint{UserID: filer.ID, TargetType: models.TargetProvider, TargetID: "3", Message: "fake", Status: models.ComplaintOpen}
	require.NoError(t, repo.Create(ctx, c1))
	require.NoError(t, repo.Create(ctx, c2))

	t.Run("List filters", func(t *testing.T) {
		_, total, err := repo.List(ctx, ComplaintFilter{UserID: filer.ID}, models.PageQuery{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)

		list, total, err := repo.List(ctx, ComplaintFilter{TargetType: models.TargetJob}, models.PageQuery{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, c1.ID, list[0].ID)
		require.NotNil(t, list[0].User)
	})

	t.Run("review update", func(t *testing.T) {
		now := time.Now()
		require.NoError(t, repo.UpdateFields(ctx, c1.ID, map[string]any{
			"status":         models.ComplaintResolved,
			"admin_response": "removed",
			"reviewed_by":    admin.ID,
			"reviewed_at":    now,
		}))

		got, err := repo.GetByID(ctx, c1.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ComplaintResolved, got.Status)
		require.NotNil(t, got.ReviewedBy)
		assert.Equal(t, admin.ID, *got.ReviewedBy)

		_, total, err := repo.List(ctx, ComplaintFilter{Status: models.ComplaintOpen}, models.PageQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
		err = repo.UpdateFields(ctx, 999, map[string]any{"status": models.ComplaintRejected})
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})
}
