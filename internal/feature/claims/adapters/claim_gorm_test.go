package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"insurance_backend/internal/feature/claims/domain/entity"
	"insurance_backend/internal/feature/claims/usecase"
	"insurance_backend/internal/platform/db/dbtest"
	"insurance_backend/internal/shared/coverage"
	"insurance_backend/internal/shared/record"
)

var (
	claimantA = uuid.NewString()
	claimantB = uuid.NewString()
	policyA   = uuid.NewString()
)

func newClaim(number, claimant string) *entity.Claim {
	return &entity.Claim{
		ClaimNumber:     number,
		Status:          entity.StatusSubmitted,
		ClaimType:       coverage.Collision,
		IncidentDate:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ReportedDate:    time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Description:     "Rear-ended at a stop light",
		EstimatedAmount: decimal.NewNullDecimal(decimal.RequireFromString("2500.00")),
		InvolvedParties: datatypes.NewJSONType([]entity.Party{{Name: "Sam Driver", Insurer: "Acme Mutual"}}),
		Witnesses:       datatypes.NewJSONType([]entity.Party{}),
		PolicyID:        policyA,
		ClaimantID:      claimant,
	}
}

func TestClaimGorm_CreateAndFind(t *testing.T) {
	t.Parallel()

	repo := NewClaimGorm(dbtest.New(t, &entity.Claim{}))
	ctx := context.Background()

	c := newClaim("CLM-1-001", claimantA)
	require.NoError(t, repo.Create(ctx, c))
	require.NotEmpty(t, c.ID)

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSubmitted, got.Status)
	assert.Equal(t, "2500.00", got.EstimatedAmount.Decimal.StringFixed(2))
	assert.False(t, got.ApprovedAmount.Valid)
	require.Len(t, got.InvolvedParties.Data(), 1)
	assert.Equal(t, "Acme Mutual", got.InvolvedParties.Data()[0].Insurer)

	err = repo.Create(ctx, newClaim("CLM-1-001", claimantB))
	assert.ErrorIs(t, err, usecase.ErrDuplicateClaimNumber)

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, usecase.ErrClaimNotFound)
}

func TestClaimGorm_List(t *testing.T) {
	t.Parallel()

	repo := NewClaimGorm(dbtest.New(t, &entity.Claim{}))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newClaim("CLM-1-001", claimantA)))
	require.NoError(t, repo.Create(ctx, newClaim("CLM-1-002", claimantA)))
	denied := newClaim("CLM-1-003", claimantB)
	denied.Status = entity.StatusDenied
	require.NoError(t, repo.Create(ctx, denied))

	items, total, err := repo.List(ctx, usecase.Filter{ClaimantID: claimantA, Page: record.Page{Limit: 1}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 1)

	items, total, err = repo.List(ctx, usecase.Filter{Status: entity.StatusDenied})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "CLM-1-003", items[0].ClaimNumber)

	_, total, err = repo.List(ctx, usecase.Filter{PolicyID: policyA})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestClaimGorm_UpdateFrom(t *testing.T) {
	t.Parallel()

	repo := NewClaimGorm(dbtest.New(t, &entity.Claim{}))
	ctx := context.Background()

	c := newClaim("CLM-1-001", claimantA)
	require.NoError(t, repo.Create(ctx, c))

	require.NoError(t, c.TransitionTo(entity.StatusUnderReview, time.Now()))
	adjuster := uuid.NewString()
	c.AdjusterID = &adjuster
	ok, err := repo.UpdateFrom(ctx, c, entity.StatusSubmitted)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusUnderReview, got.Status)
	require.NotNil(t, got.AdjusterID)
	assert.Equal(t, adjuster, *got.AdjusterID)

	// a stale writer that still believes the claim is submitted loses
	stale := newClaim("CLM-1-001", claimantA)
	stale.ID = c.ID
	stale.Status = entity.StatusDenied
	ok, err = repo.UpdateFrom(ctx, stale, entity.StatusSubmitted)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusUnderReview, got.Status)
}
