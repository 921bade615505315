package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"insurance_backend/internal/feature/policies/domain/entity"
	quote "insurance_backend/internal/feature/quotes/domain/entity"
	"insurance_backend/internal/platform/events"
	"insurance_backend/internal/platform/metrics"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/record"
)

const numberAttempts = 3

// PolicyRepository is the persistence needed by the policies usecase.
type PolicyRepository interface {
	// Create returns ErrDuplicatePolicyNumber on a policy number collision.
	Create(ctx context.Context, p *entity.Policy) error
	FindByID(ctx context.Context, id string) (*entity.Policy, error)
	List(ctx context.Context, filter Filter) ([]entity.Policy, int64, error)
	// Modify applies mutate to the current row and stores the result atomically, so concurrent
	// ledger and lifecycle writes never overwrite each other. Errors from mutate are returned as is.
	Modify(ctx context.Context, id string, mutate func(*entity.Policy) error) (*entity.Policy, error)
	// ExistsFrom reports whether the vehicle already has a policy starting at effective.
	ExistsFrom(ctx context.Context, vehicleID string, effective time.Time) (bool, error)
	// ActivateDue activates pending policies whose term has started and returns their ids.
	ActivateDue(ctx context.Context, now time.Time) ([]string, error)
	// ExpireLapsed expires pending, active or suspended policies past their term and returns their ids.
	ExpireLapsed(ctx context.Context, now time.Time) ([]string, error)
}

// Filter narrows List.
type Filter struct {
	CustomerID string
	VehicleID  string
	Status     entity.Status
	Page       record.Page
}

type policiesUsecase struct {
	repo      PolicyRepository
	publisher events.Publisher
	now       func() time.Time
}

// NewPoliciesUsecase creates a new policiesUsecase instance.
func NewPoliciesUsecase(repo PolicyRepository, publisher events.Publisher) *policiesUsecase {
	return &policiesUsecase{repo: repo, publisher: publisher, now: time.Now}
}

// IssueFromQuote creates the policy for an accepted quote.
func (u *policiesUsecase) IssueFromQuote(ctx context.Context, q *quote.Quote) (*entity.Policy, error) {
	details := q.CoverageDetails.Data()
	p := &entity.Policy{
		EffectiveDate:    q.EffectiveDate,
		ExpirationDate:   q.ExpirationDate,
		PremiumAmount:    q.TotalPremium,
		PaymentFrequency: q.PaymentFrequency,
		MonthlyPremium:   q.MonthlyPremium,
		GracePeriodDays:  entity.DefaultGracePeriodDays,
		CoverageDetails:  q.CoverageDetails,
		AutoRenew:        true,
		Notes:            q.Notes,
		QuoteID:          q.ID,
		CustomerID:       q.CustomerID,
		VehicleID:        q.VehicleID,
		AgentID:          q.AgentID,
	}
	if details.Deductible != nil {
		p.Deductible = decimal.NewNullDecimal(*details.Deductible)
	}
	if details.CoverageLimit != nil {
		p.CoverageLimit = decimal.NewNullDecimal(*details.CoverageLimit)
	}

	if err := u.issue(ctx, p); err != nil {
		return nil, err
	}
	metrics.PoliciesIssued.Inc()
	events.PublishOrLog(ctx, u.publisher, events.PolicyIssued, p.ID, p)
	return p, nil
}

// Get returns a policy visible to the actor.
func (u *policiesUsecase) Get(ctx context.Context, actor access.Actor, id string) (*entity.Policy, error) {
	p, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(p.CustomerID) {
		return nil, ErrPolicyNotFound
	}
	return p, nil
}

// List returns policies. Customers only ever see their own.
func (u *policiesUsecase) List(ctx context.Context, actor access.Actor, filter Filter) (record.List[entity.Policy], error) {
	if !actor.IsStaff() {
		filter.CustomerID = actor.UserID
	}
	items, total, err := u.repo.List(ctx, filter)
	if err != nil {
		return record.List[entity.Policy]{}, fmt.Errorf("failed to list policies: %w", err)
	}
	return record.NewList(items, total, filter.Page), nil
}

// Summary returns the computed status view of a policy.
func (u *policiesUsecase) Summary(ctx context.Context, actor access.Actor, id string) (entity.Summary, error) {
	p, err := u.Get(ctx, actor, id)
	if err != nil {
		return entity.Summary{}, err
	}
	return p.Summarize(u.now()), nil
}

// Cancel ends a pending, active or suspended policy.
func (u *policiesUsecase) Cancel(ctx context.Context, actor access.Actor, id, reason string) (*entity.Policy, error) {
	now := u.now()
	reason = strings.TrimSpace(reason)
	p, err := u.repo.Modify(ctx, id, func(p *entity.Policy) error {
		if !actor.CanAccess(p.CustomerID) {
			return ErrPolicyNotFound
		}
		if !p.Cancellable() {
			return ErrNotCancellable
		}
		p.Status = entity.StatusCancelled
		p.CancellationDate = &now
		p.CancellationReason = &reason
		p.AutoRenew = false
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPolicyNotFound) || errors.Is(err, ErrNotCancellable) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to cancel policy: %w", err)
	}

	slog.Info("policy cancelled", "policy_id", p.ID, "actor_id", actor.UserID)
	events.PublishOrLog(ctx, u.publisher, events.PolicyCancelled, p.ID, p)
	return p, nil
}

// Renew issues the follow-up policy with the same terms, starting when p expires.
func (u *policiesUsecase) Renew(ctx context.Context, actor access.Actor, id string) (*entity.Policy, error) {
	old, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if old.Status == entity.StatusCancelled || !old.CanRenew(u.now()) {
		return nil, ErrNotRenewable
	}
	exists, err := u.repo.ExistsFrom(ctx, old.VehicleID, old.ExpirationDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check renewals: %w", err)
	}
	if exists {
		return nil, ErrAlreadyRenewed
	}

	term := old.TermMonths()
	if term == 0 {
		term = 12
	}
	p := &entity.Policy{
		EffectiveDate:    old.ExpirationDate,
		ExpirationDate:   old.ExpirationDate.AddDate(0, term, 0),
		PremiumAmount:    old.PremiumAmount,
		PaymentFrequency: old.PaymentFrequency,
		MonthlyPremium:   old.MonthlyPremium,
		GracePeriodDays:  old.GracePeriodDays,
		CoverageDetails:  old.CoverageDetails,
		Deductible:       old.Deductible,
		CoverageLimit:    old.CoverageLimit,
		AutoRenew:        old.AutoRenew,
		QuoteID:          old.QuoteID,
		CustomerID:       old.CustomerID,
		VehicleID:        old.VehicleID,
		AgentID:          old.AgentID,
	}
	if err := u.issue(ctx, p); err != nil {
		return nil, err
	}

	slog.Info("policy renewed", "policy_id", old.ID, "renewal_id", p.ID)
	events.PublishOrLog(ctx, u.publisher, events.PolicyRenewed, p.ID, p)
	return p, nil
}

// ApplyPayment books a completed premium payment against the policy balance.
func (u *policiesUsecase) ApplyPayment(ctx context.Context, id string, amount decimal.Decimal) (*entity.Policy, error) {
	at := u.now()
	p, err := u.repo.Modify(ctx, id, func(p *entity.Policy) error {
		p.ApplyPayment(amount, at)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPolicyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to apply payment: %w", err)
	}
	slog.Info("policy payment applied", "policy_id", p.ID, "amount", amount.StringFixed(2), "balance", p.OutstandingBalance.StringFixed(2))
	return p, nil
}

// CreditRefund adds a refunded payment back to the policy balance.
func (u *policiesUsecase) CreditRefund(ctx context.Context, id string, amount decimal.Decimal) (*entity.Policy, error) {
	p, err := u.repo.Modify(ctx, id, func(p *entity.Policy) error {
		p.Credit(amount)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPolicyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to credit refund: %w", err)
	}
	slog.Info("policy refund credited", "policy_id", p.ID, "amount", amount.StringFixed(2), "balance", p.OutstandingBalance.StringFixed(2))
	return p, nil
}

// ActivateDue activates pending policies whose effective date has been reached.
func (u *policiesUsecase) ActivateDue(ctx context.Context, now time.Time) (int, error) {
	ids, err := u.repo.ActivateDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to activate policies: %w", err)
	}
	return len(ids), nil
}

// ExpireLapsed expires policies whose term has ended.
func (u *policiesUsecase) ExpireLapsed(ctx context.Context, now time.Time) (int, error) {
	ids, err := u.repo.ExpireLapsed(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire policies: %w", err)
	}
	return len(ids), nil
}

// issue fills the derived fields of a new policy and stores it.
func (u *policiesUsecase) issue(ctx context.Context, p *entity.Policy) error {
	if err := p.ValidateDates(); err != nil {
		return err
	}
	now := u.now()
	p.Status = entity.StatusPending
	if !p.EffectiveDate.After(now) {
		p.Status = entity.StatusActive
	}
	p.OutstandingBalance = p.CalculateTotalPremium()
	due := p.EffectiveDate
	p.NextPaymentDue = &due

	for attempt := 1; ; attempt++ {
		p.PolicyNumber = ""
		p.GeneratePolicyNumber(u.now())
		err := u.repo.Create(ctx, p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicatePolicyNumber) || attempt == numberAttempts {
			return fmt.Errorf("failed to create policy: %w", err)
		}
	}
}
