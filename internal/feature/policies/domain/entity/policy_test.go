package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"insurance_backend/internal/shared/billing"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func days(n int) time.Time { return now.AddDate(0, 0, n) }

func basePolicy() *Policy {
	due := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	return &Policy{
		Status:          StatusActive,
		EffectiveDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpirationDate:  time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		MonthlyPremium:  decimal.NewFromInt(100),
		NextPaymentDue:  &due,
		GracePeriodDays: 10,
	}
}

func TestPolicy_IsActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(p *Policy)
		want   bool
	}{
		{"active within term", func(p *Policy) { p.EffectiveDate, p.ExpirationDate = days(-30), days(30) }, true},
		{"cancelled", func(p *Policy) { p.Status = StatusCancelled }, false},
		{"not yet effective", func(p *Policy) { p.EffectiveDate = days(1) }, false},
		{"past expiration", func(p *Policy) { p.ExpirationDate = days(-1) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := basePolicy()
			tt.modify(p)
			assert.Equal(t, tt.want, p.IsActive(now))
		})
	}
}

func TestPolicy_ExpirationAndRenewal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		expiration  time.Time
		wantExpired bool
		wantDays    int
		wantRenewal bool
		wantCanRen  bool
	}{
		{"thirty days out", days(30), false, 30, true, true},
		{"fifteen days out", days(15), false, 15, true, true},
		{"forty five days out", days(45), false, 45, false, false},
		{"expired five days ago", days(-5), true, -5, false, true},
		{"expired long ago", days(-40), true, -40, false, false},
		{"partial day rounds up", now.Add(36 * time.Hour), false, 2, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := basePolicy()
			p.ExpirationDate = tt.expiration
			assert.Equal(t, tt.wantExpired, p.IsExpired(now))
			assert.Equal(t, tt.wantDays, p.DaysUntilExpiration(now))
			assert.Equal(t, tt.wantRenewal, p.NeedsRenewal(now))
			assert.Equal(t, tt.wantCanRen, p.CanRenew(now))
		})
	}
}

func TestPolicy_TermAndTotalPremium(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		effective  time.Time
		expiration time.Time
		wantMonths int
		wantTotal  string
	}{
		{"calendar year ending on the 31st", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), 12, "1200.00"},
		{"anniversary to anniversary", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), 12, "1200.00"},
		{"six months", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC), 6, "600.00"},
		{"inverted", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 0, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := basePolicy()
			p.EffectiveDate, p.ExpirationDate = tt.effective, tt.expiration
			assert.Equal(t, tt.wantMonths, p.TermMonths())
			assert.Equal(t, tt.wantTotal, p.CalculateTotalPremium().StringFixed(2))
		})
	}
}

func TestPolicy_IsInGracePeriod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		due  *time.Time
		want bool
	}{
		{"overdue within grace", ptr(days(-5)), true},
		{"overdue on last grace day", ptr(days(-10)), true},
		{"grace exhausted", ptr(days(-11)), false},
		{"not yet due", ptr(days(5)), false},
		{"no due date", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := basePolicy()
			p.NextPaymentDue = tt.due
			assert.Equal(t, tt.want, p.IsInGracePeriod(now))
		})
	}
}

func TestPolicy_ValidateDates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		effective  string
		expiration string
		wantErr    error
	}{
		{"effective after expiration", "2024-12-31", "2024-01-01", ErrEffectiveAfterExpiration},
		{"same day", "2024-01-01", "2024-01-01", ErrEffectiveAfterExpiration},
		{"more than a year", "2024-01-01", "2025-02-01", ErrTermTooLong},
		{"exactly a year", "2024-01-01", "2025-01-01", nil},
		{"valid", "2024-01-01", "2024-12-31", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := basePolicy()
			p.EffectiveDate, _ = time.Parse(time.DateOnly, tt.effective)
			p.ExpirationDate, _ = time.Parse(time.DateOnly, tt.expiration)
			assert.ErrorIs(t, p.ValidateDates(), tt.wantErr)
		})
	}
	assert.EqualError(t, ErrEffectiveAfterExpiration, "Effective date must be before expiration date")
	assert.EqualError(t, ErrTermTooLong, "Policy term cannot exceed one year")
}

func TestPolicy_GeneratePolicyNumber(t *testing.T) {
	t.Parallel()

	p := basePolicy()
	p.GeneratePolicyNumber(now)
	assert.Regexp(t, `^POL-\d+-\d{3}$`, p.PolicyNumber)

	p.PolicyNumber = "EXISTING-123"
	p.GeneratePolicyNumber(now)
	assert.Equal(t, "EXISTING-123", p.PolicyNumber)
}

func TestPolicy_Cancellable(t *testing.T) {
	t.Parallel()

	for status, want := range map[Status]bool{
		StatusPending:   true,
		StatusActive:    true,
		StatusSuspended: true,
		StatusCancelled: false,
		StatusExpired:   false,
	} {
		p := &Policy{Status: status}
		assert.Equal(t, want, p.Cancellable(), status)
	}
}

func TestPolicy_ApplyPaymentAndCredit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		frequency   billing.Frequency
		balance     string
		paid        string
		wantBalance string
		wantDue     time.Time
	}{
		{"monthly instalment", billing.Monthly, "1200", "100", "1100.00", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{"quarterly instalment", billing.Quarterly, "1200", "300", "900.00", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)},
		{"overpayment floors at zero", billing.Annual, "50", "100", "0.00", time.Date(2027, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := basePolicy()
			p.PaymentFrequency = tt.frequency
			p.OutstandingBalance = decimal.RequireFromString(tt.balance)

			p.ApplyPayment(decimal.RequireFromString(tt.paid), now)
			assert.Equal(t, tt.wantBalance, p.OutstandingBalance.StringFixed(2))
			assert.True(t, p.NextPaymentDue.Equal(tt.wantDue), p.NextPaymentDue)
			assert.True(t, p.LastPaymentDate.Equal(now))
		})
	}

	p := basePolicy()
	p.OutstandingBalance = decimal.NewFromInt(100)
	p.Credit(decimal.RequireFromString("25.50"))
	assert.Equal(t, "125.50", p.OutstandingBalance.StringFixed(2))
}

func ptr[T any](v T) *T { return &v }
