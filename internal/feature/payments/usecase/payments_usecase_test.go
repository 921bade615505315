package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance_backend/internal/feature/payments/domain/entity"
	policy "insurance_backend/internal/feature/policies/domain/entity"
	policies "insurance_backend/internal/feature/policies/usecase"
	"insurance_backend/internal/platform/events"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/record"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type memPayments struct {
	mu      sync.Mutex
	items   map[string]*entity.Payment
	seq     int
	collide int
}

func newMemPayments() *memPayments { return &memPayments{items: map[string]*entity.Payment{}} }

func (m *memPayments) Create(_ context.Context, p *entity.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collide > 0 {
		m.collide--
		return ErrDuplicateTransactionID
	}
	m.seq++
	p.ID = fmt.Sprintf("pay-%d", m.seq)
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memPayments) FindByID(_ context.Context, id string) (*entity.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPayments) List(_ context.Context, f Filter) ([]entity.Payment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Payment
	for _, p := range m.items {
		if f.PayerID != "" && p.PayerID != f.PayerID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *memPayments) UpdateFrom(_ context.Context, p *entity.Payment, from entity.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[p.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	cp := *p
	m.items[p.ID] = &cp
	return true, nil
}

type ledgerCall struct {
	op     string
	id     string
	amount string
}

type stubLedger struct {
	policies map[string]*policy.Policy
	calls    []ledgerCall
	err      error
}

func (s *stubLedger) Get(_ context.Context, actor access.Actor, id string) (*policy.Policy, error) {
	p, ok := s.policies[id]
	if !ok || !actor.CanAccess(p.CustomerID) {
		return nil, policies.ErrPolicyNotFound
	}
	return p, nil
}

func (s *stubLedger) ApplyPayment(_ context.Context, id string, amount decimal.Decimal) (*policy.Policy, error) {
	s.calls = append(s.calls, ledgerCall{"apply", id, amount.StringFixed(2)})
	return s.policies[id], s.err
}

func (s *stubLedger) CreditRefund(_ context.Context, id string, amount decimal.Decimal) (*policy.Policy, error) {
	s.calls = append(s.calls, ledgerCall{"credit", id, amount.StringFixed(2)})
	return s.policies[id], s.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingPublisher) Publish(_ context.Context, event, _ string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

var _ events.Publisher = (*recordingPublisher)(nil)

var (
	owner    = access.Actor{UserID: "cust-1", Role: access.RoleCustomer}
	stranger = access.Actor{UserID: "cust-2", Role: access.RoleCustomer}
	agent    = access.Actor{UserID: "agent-1", Role: access.RoleAgent}
)

func newUsecase() (*paymentsUsecase, *memPayments, *stubLedger, *recordingPublisher) {
	repo := newMemPayments()
	ledger := &stubLedger{policies: map[string]*policy.Policy{
		"pol-1": {Base: record.Base{ID: "pol-1"}, CustomerID: "cust-1"},
	}}
	pub := &recordingPublisher{}
	uc := NewPaymentsUsecase(repo, ledger, pub)
	uc.now = func() time.Time { return now }
	return uc, repo, ledger, pub
}

func premiumInput() CreateInput {
	policyID := "pol-1"
	return CreateInput{
		PolicyID:      &policyID,
		Amount:        decimal.RequireFromString("102.876"),
		PaymentMethod: entity.MethodCreditCard,
		Metadata:      map[string]any{"channel": "web"},
	}
}

func TestPaymentsUsecase_Create(t *testing.T) {
	t.Parallel()

	uc, repo, _, _ := newUsecase()
	repo.collide = 1

	p, err := uc.Create(context.Background(), owner, premiumInput())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, p.Status)
	assert.Regexp(t, `^TXN-[0-9A-F]{16}$`, p.TransactionID)
	assert.Equal(t, "102.88", p.Amount.StringFixed(2))
	assert.Equal(t, entity.TypePremium, p.PaymentType)
	assert.Equal(t, "cust-1", p.PayerID)
	assert.True(t, p.DueDate.Equal(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "web", p.Metadata["channel"])

	// staff record payments for the policy holder unless told otherwise
	p, err = uc.Create(context.Background(), agent, premiumInput())
	require.NoError(t, err)
	assert.Equal(t, "cust-1", p.PayerID)

	in := premiumInput()
	payer := "cust-9"
	in.PayerID = &payer
	p, err = uc.Create(context.Background(), agent, in)
	require.NoError(t, err)
	assert.Equal(t, "cust-9", p.PayerID)

	// customers cannot pay on someone else's behalf
	in = CreateInput{Amount: decimal.NewFromInt(25), PaymentMethod: entity.MethodCheck, PaymentType: entity.TypeFee, PayerID: &payer}
	p, err = uc.Create(context.Background(), owner, in)
	require.NoError(t, err)
	assert.Equal(t, "cust-1", p.PayerID)
	assert.Nil(t, p.PolicyID)
}

func TestPaymentsUsecase_Create_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		actor  access.Actor
		mutate func(*CreateInput)
		want   error
	}{
		{"zero amount", owner, func(in *CreateInput) { in.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", owner, func(in *CreateInput) { in.Amount = decimal.NewFromInt(-5) }, ErrInvalidAmount},
		{"unknown method", owner, func(in *CreateInput) { in.PaymentMethod = "cash" }, ErrInvalidMethod},
		{"unknown type", owner, func(in *CreateInput) { in.PaymentType = "tip" }, ErrInvalidType},
		{"foreign policy", stranger, func(*CreateInput) {}, ErrPolicyNotFound},
		{"missing policy", agent, func(in *CreateInput) { id := "pol-x"; in.PolicyID = &id }, ErrPolicyNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc, repo, _, _ := newUsecase()
			in := premiumInput()
			tt.mutate(&in)
			_, err := uc.Create(context.Background(), tt.actor, in)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, repo.items)
		})
	}
}

func TestPaymentsUsecase_GetAndList(t *testing.T) {
	t.Parallel()

	uc, _, _, _ := newUsecase()
	p, err := uc.Create(context.Background(), owner, premiumInput())
	require.NoError(t, err)

	_, err = uc.Get(context.Background(), owner, p.ID)
	assert.NoError(t, err)
	_, err = uc.Get(context.Background(), agent, p.ID)
	assert.NoError(t, err)
	_, err = uc.Get(context.Background(), stranger, p.ID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	list, err := uc.List(context.Background(), stranger, Filter{PayerID: "cust-1"})
	require.NoError(t, err)
	assert.Empty(t, list.Data)

	list, err = uc.List(context.Background(), agent, Filter{Status: entity.StatusPending})
	require.NoError(t, err)
	assert.Len(t, list.Data, 1)
}

func TestPaymentsUsecase_CompleteAndRefund(t *testing.T) {
	t.Parallel()

	uc, _, ledger, pub := newUsecase()
	ctx := context.Background()
	p, err := uc.Create(ctx, owner, premiumInput())
	require.NoError(t, err)

	_, err = uc.Complete(ctx, owner, p.ID, nil)
	assert.ErrorIs(t, err, access.ErrForbidden)

	txn := "ch_123"
	p, err = uc.Complete(ctx, agent, p.ID, &txn)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, p.Status)
	assert.Equal(t, "ch_123", *p.ProviderTransactionID)
	assert.True(t, p.ProcessedAt.Equal(now))

	_, err = uc.Complete(ctx, agent, p.ID, nil)
	assert.ErrorIs(t, err, entity.ErrInvalidStatus)

	p, err = uc.Refund(ctx, agent, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRefunded, p.Status)

	assert.Equal(t, []ledgerCall{
		{"apply", "pol-1", "102.88"},
		{"credit", "pol-1", "102.88"},
	}, ledger.calls)
	assert.Equal(t, []string{events.PaymentCompleted, events.PaymentRefunded}, pub.events)
}

func TestPaymentsUsecase_CompleteNonPremium(t *testing.T) {
	t.Parallel()

	uc, _, ledger, _ := newUsecase()
	in := premiumInput()
	in.PaymentType = entity.TypeDeductible
	p, err := uc.Create(context.Background(), owner, in)
	require.NoError(t, err)

	_, err = uc.Complete(context.Background(), agent, p.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, ledger.calls)
}

func TestPaymentsUsecase_CompleteLedgerFailure(t *testing.T) {
	t.Parallel()

	uc, _, ledger, _ := newUsecase()
	p, err := uc.Create(context.Background(), owner, premiumInput())
	require.NoError(t, err)

	ledger.err = errors.New("db down")
	_, err = uc.Complete(context.Background(), agent, p.ID, nil)
	assert.ErrorContains(t, err, "db down")
}

func TestPaymentsUsecase_FailAndRetry(t *testing.T) {
	t.Parallel()

	uc, _, _, pub := newUsecase()
	ctx := context.Background()
	p, err := uc.Create(ctx, owner, premiumInput())
	require.NoError(t, err)

	_, err = uc.Fail(ctx, agent, p.ID, "  ")
	assert.ErrorIs(t, err, ErrFailureReasonRequired)

	p, err = uc.Fail(ctx, agent, p.ID, "card declined")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, p.Status)
	assert.Equal(t, 1, p.RetryCount)
	require.NotNil(t, p.NextRetryAt)
	assert.True(t, p.NextRetryAt.Equal(now.Add(2*time.Hour)))

	_, err = uc.Cancel(ctx, owner, p.ID)
	assert.ErrorIs(t, err, entity.ErrInvalidStatus)

	p, err = uc.Process(ctx, agent, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusProcessing, p.Status)

	p, err = uc.Fail(ctx, agent, p.ID, "card declined")
	require.NoError(t, err)
	assert.Equal(t, 2, p.RetryCount)
	assert.True(t, p.NextRetryAt.Equal(now.Add(4*time.Hour)))

	assert.Equal(t, []string{events.PaymentFailed, events.PaymentFailed}, pub.events)
}

func TestPaymentsUsecase_Cancel(t *testing.T) {
	t.Parallel()

	uc, _, _, _ := newUsecase()
	ctx := context.Background()
	p, err := uc.Create(ctx, owner, premiumInput())
	require.NoError(t, err)

	_, err = uc.Cancel(ctx, stranger, p.ID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	p, err = uc.Cancel(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, p.Status)

	_, err = uc.Cancel(ctx, owner, p.ID)
	assert.ErrorIs(t, err, entity.ErrInvalidStatus)
}
