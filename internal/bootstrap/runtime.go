// Package bootstrap wires the database and cache a server needs at startup.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"jobboard/internal/cache"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/repository"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminAccount describes the admin ensured at startup or by the admin CLI.
type AdminAccount struct {
	Email    string
	Password string
	Name     string
}

// InitRuntime connects to the database and Redis and ensures the root admin
// when ROOT_ADMIN_EMAIL is configured. Redis may come back nil.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r, err := cache.Connect(context.Background(), cfg.RedisURL)
	if err != nil {
		middleware.Logger.Warn("running without redis", "error", err.Error())
	}

	if strings.TrimSpace(cfg.RootAdminEmail) != "" {
		_, err := EnsureAdmin(context.Background(), db, AdminAccount{
			Email:    cfg.RootAdminEmail,
			Password: cfg.RootAdminPassword,
			Name:     cfg.RootAdminName,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to bootstrap root admin: %w", err)
		}
	}

	return db, r, nil
}

// EnsureAdmin creates an admin account or promotes an existing account with
// the same email. It reports whether a new account was created. The password
// of an existing account is left untouched.
func EnsureAdmin(ctx context.Context, db *gorm.DB, acct AdminAccount) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(acct.Email))
	if email == "" {
		return false, errors.New("admin email is required")
	}
	name := strings.TrimSpace(acct.Name)
	if name == "" {
		name = "Administrator"
	}

	users := repository.NewUserRepository(db)
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}

	if existing != nil {
		if existing.Role == models.RoleAdmin && existing.IsActive {
			return false, nil
		}
		if err := users.UpdateFields(ctx, existing.ID, map[string]any{
			"role":      models.RoleAdmin,
			"is_active": true,
		}); err != nil {
			return false, err
		}
		middleware.Logger.Info("Promoted existing account to admin", slog.String("email", email))
		return false, nil
	}

	if len(acct.Password) < 6 {
		return false, errors.New("admin password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(acct.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	if err := users.Create(ctx, &models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleAdmin,
		IsActive: true,
	}); err != nil {
		return false, err
	}
	middleware.Logger.Info("Root admin created", slog.String("email", email))
	return true, nil
}
