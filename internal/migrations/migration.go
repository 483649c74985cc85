package migrations

import (
	"context"
	"errors"
	"fmt"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultAdmin is created on first start so the shop can confirm prices and move items.
var DefaultAdmin = models.User{
	Username: "admin",
	Email:    "admin@tailor.local",
	Role:     string(models.SuperAdmin),
	IsActive: true,
}

// RunMigrations brings the schema up to date and creates default data.
// Existing tables are never dropped; the ledgers are append-only history.
func RunMigrations(ctx context.Context, db *gorm.DB, log logrus.FieldLogger) error {
	log.Info("Running database migrations...")

	if err := db.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := createDefaultData(ctx, db, log); err != nil {
		log.WithError(err).Warn("Failed to create default data")
	}

	log.Info("Database migrations completed successfully")
	return nil
}

func createDefaultData(ctx context.Context, db *gorm.DB, log logrus.FieldLogger) error {
	userRepo := repository.NewUserRepository(db)

	existing, err := userRepo.GetByUsername(ctx, DefaultAdmin.Username)
	if err == nil && existing != nil {
		log.Debug("Default admin user already exists")
		return nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	admin := DefaultAdmin
	if err := userRepo.Create(ctx, &admin); err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}
	log.WithField("user_id", admin.ID).Info("Default admin user created")
	return nil
}
