// Package di wires repositories, usecases and handlers from the service configuration.
package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "insurance_backend/internal/feature/auth/adapters"
	authhandler "insurance_backend/internal/feature/auth/transport/handler"
	authusecase "insurance_backend/internal/feature/auth/usecase"
	claimadapters "insurance_backend/internal/feature/claims/adapters"
	claimhandler "insurance_backend/internal/feature/claims/transport/handler"
	claimusecase "insurance_backend/internal/feature/claims/usecase"
	paymentadapters "insurance_backend/internal/feature/payments/adapters"
	paymenthandler "insurance_backend/internal/feature/payments/transport/handler"
	paymentusecase "insurance_backend/internal/feature/payments/usecase"
	policyadapters "insurance_backend/internal/feature/policies/adapters"
	policyhandler "insurance_backend/internal/feature/policies/transport/handler"
	policyusecase "insurance_backend/internal/feature/policies/usecase"
	quoteadapters "insurance_backend/internal/feature/quotes/adapters"
	quotehandler "insurance_backend/internal/feature/quotes/transport/handler"
	quoteusecase "insurance_backend/internal/feature/quotes/usecase"
	useradapters "insurance_backend/internal/feature/users/adapters"
	userhandler "insurance_backend/internal/feature/users/transport/handler"
	userusecase "insurance_backend/internal/feature/users/usecase"
	vehicleadapters "insurance_backend/internal/feature/vehicles/adapters"
	vehiclehandler "insurance_backend/internal/feature/vehicles/transport/handler"
	vehicleusecase "insurance_backend/internal/feature/vehicles/usecase"
	"insurance_backend/internal/platform/cache"
	"insurance_backend/internal/platform/config"
	"insurance_backend/internal/platform/events"
	healthhandler "insurance_backend/internal/platform/http/handler"
	jwtmw "insurance_backend/internal/platform/jwt"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Health   *healthhandler.HealthHandler
	Auth     *authhandler.AuthHandler
	Users    *userhandler.UsersHandler
	Vehicles *vehiclehandler.VehiclesHandler
	Quotes   *quotehandler.QuotesHandler
	Policies *policyhandler.PoliciesHandler
	Claims   *claimhandler.ClaimsHandler
	Payments *paymenthandler.PaymentsHandler
}

// SessionPurger deletes expired refresh sessions.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// QuoteExpirer expires pending quotes past their validity.
type QuoteExpirer interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// PolicyScheduler runs the date driven policy status changes.
type PolicyScheduler interface {
	ActivateDue(ctx context.Context, now time.Time) (int, error)
	ExpireLapsed(ctx context.Context, now time.Time) (int, error)
}

// Maintenance exposes the batch operations run by the maintenance commands.
type Maintenance struct {
	Sessions SessionPurger
	Quotes   QuoteExpirer
	Policies PolicyScheduler
}

// Container holds the wired application.
type Container struct {
	Tokens      *jwtmw.Generator
	Publisher   events.Publisher
	Handlers    Handlers
	Maintenance Maintenance
}

// Build wires every feature. rdb may be nil, in which case sessions live in SQL and policy
// reads are not cached.
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client, logger *slog.Logger) *Container {
	tokens := jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL())
	publisher := NewPublisher(cfg.Kafka, logger)
	sessions := NewSessionRepository(rdb, db)

	// Repository
	policyRepo := cache.NewCachingPolicyRepository(rdb, cfg.Redis.CacheTTL, policyadapters.NewPolicyGorm(db), "policies")

	// Usecase
	authUC := authusecase.NewAuthUsecase(authadapters.NewUserGorm(db), sessions, tokens, NewMailer(cfg.Mail), authusecase.Options{
		AccessExpiresIn:    cfg.JWT.Expiration,
		MaxSessionsPerUser: cfg.JWT.MaxSessionsPerUser,
	})
	usersUC := userusecase.NewUsersUsecase(useradapters.NewUserGorm(db), sessions)
	vehiclesUC := vehicleusecase.NewVehiclesUsecase(vehicleadapters.NewVehicleGorm(db))
	policiesUC := policyusecase.NewPoliciesUsecase(policyRepo, publisher)
	quotesUC := quoteusecase.NewQuotesUsecase(quoteadapters.NewQuoteGorm(db), vehiclesUC, policiesUC)
	claimsUC := claimusecase.NewClaimsUsecase(claimadapters.NewClaimGorm(db), policiesUC, publisher)
	paymentsUC := paymentusecase.NewPaymentsUsecase(paymentadapters.NewPaymentGorm(db), policiesUC, publisher)

	return &Container{
		Tokens:    tokens,
		Publisher: publisher,
		Handlers: Handlers{
			Health:   healthhandler.NewHealthHandler(cfg.App.Env),
			Auth:     authhandler.NewAuthHandler(authUC),
			Users:    userhandler.NewUsersHandler(usersUC),
			Vehicles: vehiclehandler.NewVehiclesHandler(vehiclesUC),
			Quotes:   quotehandler.NewQuotesHandler(quotesUC),
			Policies: policyhandler.NewPoliciesHandler(policiesUC),
			Claims:   claimhandler.NewClaimsHandler(claimsUC),
			Payments: paymenthandler.NewPaymentsHandler(paymentsUC),
		},
		Maintenance: Maintenance{
			Sessions: authUC,
			Quotes:   quotesUC,
			Policies: policiesUC,
		},
	}
}
