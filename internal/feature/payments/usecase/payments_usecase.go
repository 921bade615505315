package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"insurance_backend/internal/feature/payments/domain/entity"
	policy "insurance_backend/internal/feature/policies/domain/entity"
	policies "insurance_backend/internal/feature/policies/usecase"
	"insurance_backend/internal/platform/events"
	"insurance_backend/internal/platform/metrics"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/record"
)

const idAttempts = 3

// PaymentRepository is the persistence needed by the payments usecase.
type PaymentRepository interface {
	// Create returns ErrDuplicateTransactionID on a transaction id collision.
	Create(ctx context.Context, p *entity.Payment) error
	FindByID(ctx context.Context, id string) (*entity.Payment, error)
	List(ctx context.Context, filter Filter) ([]entity.Payment, int64, error)
	// UpdateFrom saves p only if the stored row is still in status from and reports
	// whether it did.
	UpdateFrom(ctx context.Context, p *entity.Payment, from entity.Status) (bool, error)
}

// PolicyLedger reads policies and books premium movements on their balance.
// Implemented by the policies usecase.
type PolicyLedger interface {
	Get(ctx context.Context, actor access.Actor, id string) (*policy.Policy, error)
	ApplyPayment(ctx context.Context, id string, amount decimal.Decimal) (*policy.Policy, error)
	CreditRefund(ctx context.Context, id string, amount decimal.Decimal) (*policy.Policy, error)
}

// Filter narrows List.
type Filter struct {
	PayerID  string
	PolicyID string
	Status   entity.Status
	Page     record.Page
}

// CreateInput records a new payment.
type CreateInput struct {
	PolicyID        *string
	PayerID         *string
	Amount          decimal.Decimal
	PaymentMethod   entity.Method
	PaymentProvider *string
	PaymentType     entity.Type
	DueDate         *time.Time
	Description     *string
	Metadata        map[string]any
}

type paymentsUsecase struct {
	repo      PaymentRepository
	policies  PolicyLedger
	publisher events.Publisher
	now       func() time.Time
}

// NewPaymentsUsecase creates a new paymentsUsecase instance.
func NewPaymentsUsecase(repo PaymentRepository, policies PolicyLedger, publisher events.Publisher) *paymentsUsecase {
	return &paymentsUsecase{repo: repo, policies: policies, publisher: publisher, now: time.Now}
}

// Create records a pending payment. Staff may record it for another payer; without an
// explicit payer a staff payment on a policy is attributed to the policy holder.
func (u *paymentsUsecase) Create(ctx context.Context, actor access.Actor, in CreateInput) (*entity.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidMethod
	}
	if in.PaymentType == "" {
		in.PaymentType = entity.TypePremium
	}
	if !in.PaymentType.Valid() {
		return nil, ErrInvalidType
	}

	p := &entity.Payment{
		Amount:          in.Amount.Round(2),
		Status:          entity.StatusPending,
		PaymentMethod:   in.PaymentMethod,
		PaymentProvider: in.PaymentProvider,
		PaymentType:     in.PaymentType,
		Description:     in.Description,
		Metadata:        in.Metadata,
		PayerID:         actor.UserID,
	}

	if in.PolicyID != nil && *in.PolicyID != "" {
		pol, err := u.policies.Get(ctx, actor, *in.PolicyID)
		if err != nil {
			if errors.Is(err, policies.ErrPolicyNotFound) {
				return nil, ErrPolicyNotFound
			}
			return nil, fmt.Errorf("failed to load policy: %w", err)
		}
		p.PolicyID = &pol.ID
		if actor.IsStaff() {
			p.PayerID = pol.CustomerID
		}
	}
	if actor.IsStaff() && in.PayerID != nil && *in.PayerID != "" {
		p.PayerID = *in.PayerID
	}

	now := u.now()
	p.DueDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if in.DueDate != nil {
		p.DueDate = *in.DueDate
	}

	for attempt := 1; ; attempt++ {
		p.TransactionID = ""
		p.GenerateTransactionID()
		err := u.repo.Create(ctx, p)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateTransactionID) || attempt == idAttempts {
			return nil, fmt.Errorf("failed to create payment: %w", err)
		}
	}

	slog.Info("payment created", "payment_id", p.ID, "transaction_id", p.TransactionID, "type", p.PaymentType)
	return p, nil
}

// Get returns a payment visible to the actor.
func (u *paymentsUsecase) Get(ctx context.Context, actor access.Actor, id string) (*entity.Payment, error) {
	p, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(p.PayerID) {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

// List returns payments. Customers only ever see their own.
func (u *paymentsUsecase) List(ctx context.Context, actor access.Actor, filter Filter) (record.List[entity.Payment], error) {
	if !actor.IsStaff() {
		filter.PayerID = actor.UserID
	}
	items, total, err := u.repo.List(ctx, filter)
	if err != nil {
		return record.List[entity.Payment]{}, fmt.Errorf("failed to list payments: %w", err)
	}
	return record.NewList(items, total, filter.Page), nil
}

// Process marks a payment as being charged.
func (u *paymentsUsecase) Process(ctx context.Context, actor access.Actor, id string) (*entity.Payment, error) {
	return u.staffTransition(ctx, actor, id, "", (*entity.Payment).Process)
}

// Complete records a successful charge and, for premium payments, books it on the policy.
func (u *paymentsUsecase) Complete(ctx context.Context, actor access.Actor, id string, providerTransactionID *string) (*entity.Payment, error) {
	p, err := u.staffTransition(ctx, actor, id, events.PaymentCompleted, func(p *entity.Payment) error {
		return p.Complete(providerTransactionID, u.now())
	})
	if err != nil {
		return nil, err
	}
	metrics.PaymentsCompleted.WithLabelValues(string(p.PaymentType)).Inc()
	if p.AffectsBalance() {
		if _, err := u.policies.ApplyPayment(ctx, *p.PolicyID, p.Amount); err != nil {
			return nil, fmt.Errorf("failed to apply payment to policy: %w", err)
		}
	}
	return p, nil
}

// Fail records a failed charge and schedules a retry.
func (u *paymentsUsecase) Fail(ctx context.Context, actor access.Actor, id, reason string) (*entity.Payment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrFailureReasonRequired
	}
	return u.staffTransition(ctx, actor, id, events.PaymentFailed, func(p *entity.Payment) error {
		return p.Fail(reason, u.now())
	})
}

// Refund reverses a completed payment and restores the policy balance.
func (u *paymentsUsecase) Refund(ctx context.Context, actor access.Actor, id string) (*entity.Payment, error) {
	p, err := u.staffTransition(ctx, actor, id, events.PaymentRefunded, func(p *entity.Payment) error {
		return p.Refund(u.now())
	})
	if err != nil {
		return nil, err
	}
	if p.AffectsBalance() {
		if _, err := u.policies.CreditRefund(ctx, *p.PolicyID, p.Amount); err != nil {
			return nil, fmt.Errorf("failed to credit refund to policy: %w", err)
		}
	}
	return p, nil
}

// Cancel withdraws a pending payment. The payer may cancel their own.
func (u *paymentsUsecase) Cancel(ctx context.Context, actor access.Actor, id string) (*entity.Payment, error) {
	p, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return u.save(ctx, actor, p, "", (*entity.Payment).Cancel)
}

func (u *paymentsUsecase) staffTransition(ctx context.Context, actor access.Actor, id, event string, apply func(*entity.Payment) error) (*entity.Payment, error) {
	if !actor.IsStaff() {
		return nil, access.ErrForbidden
	}
	p, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return u.save(ctx, actor, p, event, apply)
}

// save applies the status change and persists it guarded by the previous status.
func (u *paymentsUsecase) save(ctx context.Context, actor access.Actor, p *entity.Payment, event string, apply func(*entity.Payment) error) (*entity.Payment, error) {
	from := p.Status
	if err := apply(p); err != nil {
		return nil, err
	}
	ok, err := u.repo.UpdateFrom(ctx, p, from)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	if !ok {
		return nil, entity.ErrInvalidStatus
	}

	slog.Info("payment status changed", "payment_id", p.ID, "from", from, "to", p.Status, "actor_id", actor.UserID)
	if event != "" {
		events.PublishOrLog(ctx, u.publisher, event, p.ID, p)
	}
	return p, nil
}
