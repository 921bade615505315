package di

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	authadapters "insurance_backend/internal/feature/auth/adapters"
	authentity "insurance_backend/internal/feature/auth/domain/entity"
	claimentity "insurance_backend/internal/feature/claims/domain/entity"
	paymententity "insurance_backend/internal/feature/payments/domain/entity"
	policyentity "insurance_backend/internal/feature/policies/domain/entity"
	quoteentity "insurance_backend/internal/feature/quotes/domain/entity"
	vehicleentity "insurance_backend/internal/feature/vehicles/domain/entity"
)

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&authentity.User{},
		&authadapters.SessionModel{},
		&vehicleentity.Vehicle{},
		&quoteentity.Quote{},
		&policyentity.Policy{},
		&claimentity.Claim{},
		&paymententity.Payment{},
	}
}

// Migrate creates or updates the tables of every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	slog.Info("database migrated", "models", len(Models()))
	return nil
}
