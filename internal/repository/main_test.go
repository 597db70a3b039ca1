package repository

import (
	"context"
	"fmt"
	"testing"

	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newTestDB returns a migrated, private in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		Env:        "test",
		DBDriver:   "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Name:     "user " + string(role),
		Email:    fmt.Sprintf("%s_%s@example.com", role, uuid.NewString()[:8]),
		Password: "hashed",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedProvider(t *testing.T, db *gorm.DB, status models.VerificationStatus) (*models.User, *models.Provider) {
	t.Helper()
	u := seedUser(t, db, models.RoleProvider)
	p := &models.Provider{
		UserID:             u.ID,
		CompanyName:        "Acme",
		CompanyEmail:       u.Email,
		VerificationStatus: status,
		IsActive:           true,
	}
	require.NoError(t, db.Create(p).Error)
	return u, p
}

func seedJob(t *testing.T, db *gorm.DB, providerID uint, title string) *models.Job {
	t.Helper()
	j := &models.Job{
		ProviderID:  providerID,
		JobTitle:    title,
		Description: "Build things",
		Location:    "Remote",
		JobType:     models.JobTypeFullTime,
		Salary:      models.Salary{Currency: models.DefaultCurrency},
		IsActive:    true,
	}
	require.NoError(t, NewJobRepository(db).Create(context.Background(), j))
	return j
}
