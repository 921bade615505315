package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func TestPayment_GenerateTransactionID(t *testing.T) {
	t.Parallel()

	p := &Payment{}
	p.GenerateTransactionID()
	assert.Regexp(t, `^TXN-[0-9A-F]{16}$`, p.TransactionID)

	first := p.TransactionID
	p.GenerateTransactionID()
	assert.Equal(t, first, p.TransactionID)

	other := &Payment{}
	other.GenerateTransactionID()
	assert.NotEqual(t, first, other.TransactionID)
}

func TestPayment_FailBackoff(t *testing.T) {
	t.Parallel()

	p := &Payment{Status: StatusPending}
	for i, want := range []time.Duration{2 * time.Hour, 4 * time.Hour, 8 * time.Hour} {
		require.NoError(t, p.Fail("card declined", now))
		assert.Equal(t, i+1, p.RetryCount)
		require.NotNil(t, p.NextRetryAt)
		assert.Equal(t, want, p.NextRetryAt.Sub(now))
		require.NoError(t, p.Process())
		assert.Nil(t, p.NextRetryAt)
	}

	require.NoError(t, p.Fail("card declined", now))
	assert.Equal(t, 4, p.RetryCount)
	assert.Nil(t, p.NextRetryAt)
	assert.Equal(t, "card declined", *p.FailureReason)
	assert.ErrorIs(t, p.Process(), ErrInvalidStatus)
}

func TestPayment_Transitions(t *testing.T) {
	t.Parallel()

	txn := "ch_123"
	tests := []struct {
		name string
		from Status
		op   func(*Payment) error
		want Status
		err  error
	}{
		{"complete pending", StatusPending, func(p *Payment) error { return p.Complete(&txn, now) }, StatusCompleted, nil},
		{"complete processing", StatusProcessing, func(p *Payment) error { return p.Complete(nil, now) }, StatusCompleted, nil},
		{"complete failed", StatusFailed, func(p *Payment) error { return p.Complete(nil, now) }, StatusFailed, ErrInvalidStatus},
		{"fail completed", StatusCompleted, func(p *Payment) error { return p.Fail("x", now) }, StatusCompleted, ErrInvalidStatus},
		{"refund completed", StatusCompleted, func(p *Payment) error { return p.Refund(now) }, StatusRefunded, nil},
		{"refund pending", StatusPending, func(p *Payment) error { return p.Refund(now) }, StatusPending, ErrInvalidStatus},
		{"cancel pending", StatusPending, (*Payment).Cancel, StatusCancelled, nil},
		{"cancel processing", StatusProcessing, (*Payment).Cancel, StatusProcessing, ErrInvalidStatus},
		{"process pending", StatusPending, (*Payment).Process, StatusProcessing, nil},
		{"process failed without retry", StatusFailed, (*Payment).Process, StatusFailed, ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &Payment{Status: tt.from}
			err := tt.op(p)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, p.Status)
		})
	}
}

func TestPayment_Complete(t *testing.T) {
	t.Parallel()

	reason := "insufficient funds"
	retry := now.Add(time.Hour)
	p := &Payment{Status: StatusProcessing, FailureReason: &reason, NextRetryAt: &retry}
	txn := "ch_123"
	require.NoError(t, p.Complete(&txn, now))
	assert.Equal(t, "ch_123", *p.ProviderTransactionID)
	assert.True(t, p.ProcessedAt.Equal(now))
	assert.Nil(t, p.FailureReason)
	assert.Nil(t, p.NextRetryAt)
}

func TestPayment_AffectsBalanceAndEnums(t *testing.T) {
	t.Parallel()

	policyID := "pol-1"
	empty := ""
	assert.True(t, (&Payment{PaymentType: TypePremium, PolicyID: &policyID}).AffectsBalance())
	assert.False(t, (&Payment{PaymentType: TypeFee, PolicyID: &policyID}).AffectsBalance())
	assert.False(t, (&Payment{PaymentType: TypePremium}).AffectsBalance())
	assert.False(t, (&Payment{PaymentType: TypePremium, PolicyID: &empty}).AffectsBalance())

	assert.True(t, MethodCheck.Valid())
	assert.False(t, Method("cash").Valid())
	assert.True(t, TypeDeductible.Valid())
	assert.False(t, Type("tip").Valid())
}
