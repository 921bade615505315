package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	policy "insurance_backend/internal/feature/policies/domain/entity"
	"insurance_backend/internal/feature/quotes/domain/entity"
	"insurance_backend/internal/feature/quotes/domain/rating"
	vehicle "insurance_backend/internal/feature/vehicles/domain/entity"
	vehicles "insurance_backend/internal/feature/vehicles/usecase"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/billing"
	"insurance_backend/internal/shared/coverage"
	"insurance_backend/internal/shared/record"
)

const (
	defaultTermMonths = 12
	numberAttempts    = 3
)

// QuoteRepository is the persistence needed by the quotes usecase.
type QuoteRepository interface {
	// Create returns ErrDuplicateQuoteNumber on a quote number collision.
	Create(ctx context.Context, q *entity.Quote) error
	FindByID(ctx context.Context, id string) (*entity.Quote, error)
	List(ctx context.Context, filter Filter) ([]entity.Quote, int64, error)
	// TransitionStatus moves the quote from one status to another and reports whether
	// the row was still in the from status.
	TransitionStatus(ctx context.Context, id string, from, to entity.Status) (bool, error)
	// ExpirePending flips every pending quote whose window closed before now.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

// VehicleFinder resolves a vehicle visible to the actor.
// Implemented by the vehicles usecase.
type VehicleFinder interface {
	Get(ctx context.Context, actor access.Actor, id string) (*vehicle.Vehicle, error)
}

// PolicyIssuer turns an accepted quote into a policy.
// Implemented by the policies usecase.
type PolicyIssuer interface {
	IssueFromQuote(ctx context.Context, q *entity.Quote) (*policy.Policy, error)
}

// Filter narrows List.
type Filter struct {
	CustomerID string
	VehicleID  string
	Status     entity.Status
	Page       record.Page
}

// CreateInput requests a quote.
type CreateInput struct {
	VehicleID        string
	Coverages        []coverage.Type
	Deductible       *decimal.Decimal
	CoverageLimit    *decimal.Decimal
	PaymentFrequency billing.Frequency
	EffectiveDate    *time.Time
	TermMonths       int
	Notes            *string
}

type quotesUsecase struct {
	repo     QuoteRepository
	vehicles VehicleFinder
	policies PolicyIssuer
	now      func() time.Time
}

// NewQuotesUsecase creates a new quotesUsecase instance.
func NewQuotesUsecase(repo QuoteRepository, vehicles VehicleFinder, policies PolicyIssuer) *quotesUsecase {
	return &quotesUsecase{repo: repo, vehicles: vehicles, policies: policies, now: time.Now}
}

// Create prices the requested coverage for a vehicle and stores a pending quote.
func (u *quotesUsecase) Create(ctx context.Context, actor access.Actor, in CreateInput) (*entity.Quote, error) {
	v, err := u.vehicles.Get(ctx, actor, in.VehicleID)
	if err != nil {
		if errors.Is(err, vehicles.ErrVehicleNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to load vehicle: %w", err)
	}
	if !v.IsActive {
		return nil, ErrVehicleInactive
	}

	var selected []coverage.Type
	for _, c := range coverage.Normalize(in.Coverages) {
		if c.Valid() {
			selected = append(selected, c)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoCoverage
	}
	if (in.Deductible != nil && in.Deductible.IsNegative()) ||
		(in.CoverageLimit != nil && !in.CoverageLimit.IsPositive()) {
		return nil, ErrInvalidAmount
	}

	now := u.now()
	today := truncateDay(now)
	effective := today
	if in.EffectiveDate != nil {
		effective = truncateDay(*in.EffectiveDate)
		if effective.Before(today) {
			return nil, ErrInvalidEffectiveDate
		}
	}
	term := in.TermMonths
	if term == 0 {
		term = defaultTermMonths
	}
	freq := in.PaymentFrequency
	if freq == "" {
		freq = billing.Monthly
	}

	priced := rating.Rate(rating.Input{
		Coverages:     selected,
		TermMonths:    term,
		Frequency:     freq,
		VehicleAge:    v.Age(now),
		Usage:         v.Usage,
		AnnualMileage: v.AnnualMileage,
		Parking:       v.ParkingLocation,
		HasAntiTheft:  v.HasAntiTheftDevice,
		HasAirbags:    v.HasAirbags,
		HasABS:        v.HasABS,
	})

	q := &entity.Quote{
		BasePremium:        priced.BasePremium,
		TotalPremium:       priced.TotalPremium,
		DiscountAmount:     priced.DiscountAmount,
		DiscountPercentage: priced.DiscountPercentage,
		PaymentFrequency:   freq,
		MonthlyPremium:     priced.MonthlyPremium,
		EffectiveDate:      effective,
		ExpirationDate:     effective.AddDate(0, term, 0),
		QuoteExpiresAt:     now.Add(entity.Validity),
		Status:             entity.StatusPending,
		CoverageDetails: datatypes.NewJSONType(coverage.Details{
			Coverages:     selected,
			Deductible:    in.Deductible,
			CoverageLimit: in.CoverageLimit,
		}),
		RiskFactors:     datatypes.NewJSONType(priced.RiskFactors),
		DiscountFactors: datatypes.NewJSONType(priced.DiscountFactors),
		Notes:           trimmed(in.Notes),
		CustomerID:      v.OwnerID,
		VehicleID:       v.ID,
	}
	if actor.Role == access.RoleAgent {
		agentID := actor.UserID
		q.AgentID = &agentID
	}

	for attempt := 1; ; attempt++ {
		q.QuoteNumber = ""
		q.GenerateQuoteNumber(u.now())
		err = u.repo.Create(ctx, q)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateQuoteNumber) || attempt == numberAttempts {
			return nil, fmt.Errorf("failed to create quote: %w", err)
		}
	}

	slog.Info("quote created", "quote_id", q.ID, "quote_number", q.QuoteNumber, "total_premium", q.TotalPremium.StringFixed(2))
	return q, nil
}

// Get returns a quote visible to the actor.
func (u *quotesUsecase) Get(ctx context.Context, actor access.Actor, id string) (*entity.Quote, error) {
	q, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(q.CustomerID) {
		return nil, ErrQuoteNotFound
	}
	return q, nil
}

// List returns quotes. Customers only ever see their own.
func (u *quotesUsecase) List(ctx context.Context, actor access.Actor, filter Filter) (record.List[entity.Quote], error) {
	if !actor.IsStaff() {
		filter.CustomerID = actor.UserID
	}
	items, total, err := u.repo.List(ctx, filter)
	if err != nil {
		return record.List[entity.Quote]{}, fmt.Errorf("failed to list quotes: %w", err)
	}
	return record.NewList(items, total, filter.Page), nil
}

// Accept issues a policy from a pending, unexpired quote. A pending quote past its
// window is marked expired on the way out.
func (u *quotesUsecase) Accept(ctx context.Context, actor access.Actor, id string) (*policy.Policy, error) {
	q, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if q.Status != entity.StatusPending {
		return nil, ErrQuoteNotPending
	}
	if q.IsExpired(u.now()) {
		if _, err := u.repo.TransitionStatus(ctx, q.ID, entity.StatusPending, entity.StatusExpired); err != nil {
			slog.Warn("failed to mark quote expired", "quote_id", q.ID, "error", err)
		}
		return nil, ErrQuoteExpired
	}

	ok, err := u.repo.TransitionStatus(ctx, q.ID, entity.StatusPending, entity.StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to accept quote: %w", err)
	}
	if !ok {
		return nil, ErrQuoteNotPending
	}
	q.Status = entity.StatusAccepted

	p, err := u.policies.IssueFromQuote(ctx, q)
	if err != nil {
		if _, rerr := u.repo.TransitionStatus(ctx, q.ID, entity.StatusAccepted, entity.StatusPending); rerr != nil {
			slog.Error("failed to reopen quote after issue failure", "quote_id", q.ID, "error", rerr)
		}
		return nil, fmt.Errorf("failed to issue policy: %w", err)
	}
	slog.Info("quote accepted", "quote_id", q.ID, "policy_id", p.ID)
	return p, nil
}

// Decline closes a pending quote.
func (u *quotesUsecase) Decline(ctx context.Context, actor access.Actor, id string) (*entity.Quote, error) {
	q, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if q.Status != entity.StatusPending {
		return nil, ErrQuoteNotPending
	}
	ok, err := u.repo.TransitionStatus(ctx, q.ID, entity.StatusPending, entity.StatusDeclined)
	if err != nil {
		return nil, fmt.Errorf("failed to decline quote: %w", err)
	}
	if !ok {
		return nil, ErrQuoteNotPending
	}
	q.Status = entity.StatusDeclined
	return q, nil
}

// ExpireStale marks every pending quote past its window as expired.
func (u *quotesUsecase) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	n, err := u.repo.ExpirePending(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire quotes: %w", err)
	}
	return n, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
