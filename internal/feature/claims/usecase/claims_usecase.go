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

	"insurance_backend/internal/feature/claims/domain/entity"
	policy "insurance_backend/internal/feature/policies/domain/entity"
	policies "insurance_backend/internal/feature/policies/usecase"
	"insurance_backend/internal/platform/events"
	"insurance_backend/internal/platform/metrics"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/coverage"
	"insurance_backend/internal/shared/record"
)

const numberAttempts = 3

// ClaimRepository is the persistence needed by the claims usecase.
type ClaimRepository interface {
	// Create returns ErrDuplicateClaimNumber on a claim number collision.
	Create(ctx context.Context, c *entity.Claim) error
	FindByID(ctx context.Context, id string) (*entity.Claim, error)
	List(ctx context.Context, filter Filter) ([]entity.Claim, int64, error)
	// UpdateFrom saves c only if the stored row is still in status from and reports
	// whether it did.
	UpdateFrom(ctx context.Context, c *entity.Claim, from entity.Status) (bool, error)
}

// PolicyFinder resolves a policy visible to the actor.
// Implemented by the policies usecase.
type PolicyFinder interface {
	Get(ctx context.Context, actor access.Actor, id string) (*policy.Policy, error)
}

// Filter narrows List.
type Filter struct {
	ClaimantID string
	PolicyID   string
	Status     entity.Status
	Page       record.Page
}

// SubmitInput files a new claim.
type SubmitInput struct {
	PolicyID           string
	ClaimType          coverage.Type
	IncidentDate       time.Time
	Description        string
	Location           *string
	EstimatedAmount    *decimal.Decimal
	IsAtFault          bool
	PoliceReportNumber *string
	InvolvedParties    []entity.Party
	Witnesses          []entity.Party
}

// InvestigateInput carries the optional findings recorded when investigation starts.
type InvestigateInput struct {
	Notes        *string
	FraudScore   *decimal.Decimal
	IsFraudulent *bool
}

type claimsUsecase struct {
	repo      ClaimRepository
	policies  PolicyFinder
	publisher events.Publisher
	now       func() time.Time
}

// NewClaimsUsecase creates a new claimsUsecase instance.
func NewClaimsUsecase(repo ClaimRepository, policies PolicyFinder, publisher events.Publisher) *claimsUsecase {
	return &claimsUsecase{repo: repo, policies: policies, publisher: publisher, now: time.Now}
}

// Submit files a claim against a policy that covered the incident.
func (u *claimsUsecase) Submit(ctx context.Context, actor access.Actor, in SubmitInput) (*entity.Claim, error) {
	p, err := u.policies.Get(ctx, actor, in.PolicyID)
	if err != nil {
		if errors.Is(err, policies.ErrPolicyNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	now := u.now()
	if in.IncidentDate.After(now) {
		return nil, ErrIncidentInFuture
	}
	if in.IncidentDate.Before(p.EffectiveDate) || in.IncidentDate.After(p.ExpirationDate) {
		return nil, ErrIncidentOutsideTerm
	}
	if !coveredAt(p, in.IncidentDate) {
		return nil, ErrPolicyNotActive
	}
	if !in.ClaimType.Valid() || !p.CoverageDetails.Data().Includes(in.ClaimType) {
		return nil, ErrCoverageNotIncluded
	}
	if in.EstimatedAmount != nil && !in.EstimatedAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	c := &entity.Claim{
		Status:             entity.StatusSubmitted,
		ClaimType:          in.ClaimType,
		IncidentDate:       in.IncidentDate,
		ReportedDate:       now,
		Description:        strings.TrimSpace(in.Description),
		Location:           in.Location,
		DeductibleAmount:   p.Deductible,
		IsAtFault:          in.IsAtFault,
		PoliceReportNumber: in.PoliceReportNumber,
		InvolvedParties:    datatypes.NewJSONType(nonNil(in.InvolvedParties)),
		Witnesses:          datatypes.NewJSONType(nonNil(in.Witnesses)),
		PolicyID:           p.ID,
		ClaimantID:         p.CustomerID,
	}
	if in.EstimatedAmount != nil {
		c.EstimatedAmount = decimal.NewNullDecimal(*in.EstimatedAmount)
	}

	for attempt := 1; ; attempt++ {
		c.ClaimNumber = ""
		c.GenerateClaimNumber(u.now())
		err = u.repo.Create(ctx, c)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateClaimNumber) || attempt == numberAttempts {
			return nil, fmt.Errorf("failed to create claim: %w", err)
		}
	}

	metrics.ClaimsSubmitted.Inc()
	slog.Info("claim submitted", "claim_id", c.ID, "claim_number", c.ClaimNumber, "policy_id", c.PolicyID)
	events.PublishOrLog(ctx, u.publisher, events.ClaimSubmitted, c.ID, c)
	return c, nil
}

// Get returns a claim visible to the actor.
func (u *claimsUsecase) Get(ctx context.Context, actor access.Actor, id string) (*entity.Claim, error) {
	c, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(c.ClaimantID) {
		return nil, ErrClaimNotFound
	}
	return c, nil
}

// List returns claims. Customers only ever see their own.
func (u *claimsUsecase) List(ctx context.Context, actor access.Actor, filter Filter) (record.List[entity.Claim], error) {
	if !actor.IsStaff() {
		filter.ClaimantID = actor.UserID
	}
	items, total, err := u.repo.List(ctx, filter)
	if err != nil {
		return record.List[entity.Claim]{}, fmt.Errorf("failed to list claims: %w", err)
	}
	return record.NewList(items, total, filter.Page), nil
}

// Review assigns the claim to the acting adjuster.
func (u *claimsUsecase) Review(ctx context.Context, actor access.Actor, id string) (*entity.Claim, error) {
	return u.transition(ctx, actor, id, entity.StatusUnderReview, func(c *entity.Claim) error {
		adjuster := actor.UserID
		c.AdjusterID = &adjuster
		return nil
	})
}

// Investigate opens an investigation, optionally recording notes and a fraud assessment.
func (u *claimsUsecase) Investigate(ctx context.Context, actor access.Actor, id string, in InvestigateInput) (*entity.Claim, error) {
	if in.FraudScore != nil && (in.FraudScore.IsNegative() || in.FraudScore.GreaterThan(decimal.NewFromInt(1))) {
		return nil, ErrInvalidFraudScore
	}
	return u.transition(ctx, actor, id, entity.StatusInvestigating, func(c *entity.Claim) error {
		if in.Notes != nil {
			c.AppendNote(strings.TrimSpace(*in.Notes))
		}
		if in.FraudScore != nil {
			c.FraudScore = decimal.NewNullDecimal(*in.FraudScore)
		}
		if in.IsFraudulent != nil {
			c.IsFraudulent = *in.IsFraudulent
		}
		return nil
	})
}

// Approve accepts the claim for amount, bounded by the policy coverage limit.
func (u *claimsUsecase) Approve(ctx context.Context, actor access.Actor, id string, amount decimal.Decimal) (*entity.Claim, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return u.transition(ctx, actor, id, entity.StatusApproved, func(c *entity.Claim) error {
		p, err := u.policies.Get(ctx, actor, c.PolicyID)
		if err != nil {
			return fmt.Errorf("failed to load policy: %w", err)
		}
		if p.CoverageLimit.Valid && amount.GreaterThan(p.CoverageLimit.Decimal) {
			return ErrExceedsCoverageLimit
		}
		c.ApprovedAmount = decimal.NewNullDecimal(amount)
		return nil
	})
}

// Deny rejects the claim with a reason.
func (u *claimsUsecase) Deny(ctx context.Context, actor access.Actor, id, reason string) (*entity.Claim, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return u.transition(ctx, actor, id, entity.StatusDenied, func(c *entity.Claim) error {
		c.DenialReason = &reason
		return nil
	})
}

// Settle records the paid amount, which cannot exceed the approved amount.
func (u *claimsUsecase) Settle(ctx context.Context, actor access.Actor, id string, amount decimal.Decimal) (*entity.Claim, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return u.transition(ctx, actor, id, entity.StatusSettled, func(c *entity.Claim) error {
		if !c.ApprovedAmount.Valid || amount.GreaterThan(c.ApprovedAmount.Decimal) {
			return ErrExceedsApprovedAmount
		}
		c.SettledAmount = decimal.NewNullDecimal(amount)
		return nil
	})
}

// Close ends a settled or denied claim.
func (u *claimsUsecase) Close(ctx context.Context, actor access.Actor, id string) (*entity.Claim, error) {
	return u.transition(ctx, actor, id, entity.StatusClosed, nil)
}

// transition loads the claim, applies the workflow move plus mutate, and saves it
// guarded by the previous status.
func (u *claimsUsecase) transition(ctx context.Context, actor access.Actor, id string, to entity.Status, mutate func(*entity.Claim) error) (*entity.Claim, error) {
	if !actor.IsStaff() {
		return nil, access.ErrForbidden
	}
	c, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	from := c.Status
	if err := c.TransitionTo(to, u.now()); err != nil {
		return nil, err
	}
	if mutate != nil {
		if err := mutate(c); err != nil {
			return nil, err
		}
	}

	ok, err := u.repo.UpdateFrom(ctx, c, from)
	if err != nil {
		return nil, fmt.Errorf("failed to update claim: %w", err)
	}
	if !ok {
		return nil, entity.ErrInvalidTransition
	}

	slog.Info("claim status changed", "claim_id", c.ID, "from", from, "to", to, "actor_id", actor.UserID)
	events.PublishOrLog(ctx, u.publisher, "claim."+string(to), c.ID, c)
	return c, nil
}

// coveredAt reports whether p was in force on the incident date.
func coveredAt(p *policy.Policy, incident time.Time) bool {
	switch p.Status {
	case policy.StatusActive, policy.StatusExpired:
		return true
	case policy.StatusCancelled:
		return p.CancellationDate != nil && incident.Before(*p.CancellationDate)
	}
	return false
}

func nonNil(parties []entity.Party) []entity.Party {
	if parties == nil {
		return []entity.Party{}
	}
	return parties
}
