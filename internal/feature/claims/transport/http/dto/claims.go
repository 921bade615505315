// Package dto defines the request bodies of the claims endpoints.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"insurance_backend/internal/feature/claims/domain/entity"
	"insurance_backend/internal/feature/claims/usecase"
	"insurance_backend/internal/shared/coverage"
	"insurance_backend/internal/shared/record"
)

// PartyReq describes a person involved in or witnessing the incident.
type PartyReq struct {
	Name      string `json:"name" binding:"required,max=255"`
	Phone     string `json:"phone" binding:"omitempty,e164"`
	Email     string `json:"email" binding:"omitempty,email"`
	Insurer   string `json:"insurer" binding:"omitempty,max=255"`
	Statement string `json:"statement" binding:"omitempty,max=2000"`
}

// SubmitClaimReq is the body of POST /claims.
type SubmitClaimReq struct {
	PolicyID           string           `json:"policyId" binding:"required,uuid"`
	ClaimType          string           `json:"claimType" binding:"required,oneof=liability collision comprehensive uninsured_motorist personal_injury_protection medical_payments roadside_assistance rental_reimbursement"`
	IncidentDate       time.Time        `json:"incidentDate" binding:"required"`
	Description        string           `json:"description" binding:"required,min=10,max=5000"`
	Location           *string          `json:"location" binding:"omitempty,max=255"`
	EstimatedAmount    *decimal.Decimal `json:"estimatedAmount"`
	IsAtFault          bool             `json:"isAtFault"`
	PoliceReportNumber *string          `json:"policeReportNumber" binding:"omitempty,max=255"`
	InvolvedParties    []PartyReq       `json:"involvedParties" binding:"omitempty,max=20,dive"`
	Witnesses          []PartyReq       `json:"witnesses" binding:"omitempty,max=20,dive"`
}

// ListClaimsQuery holds the query string of GET /claims.
type ListClaimsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=submitted under_review investigating approved denied settled closed"`
	PolicyID string `form:"policyId" binding:"omitempty,uuid"`
	record.Page
}

// InvestigateClaimReq is the body of POST /claims/:id/investigate.
type InvestigateClaimReq struct {
	Notes        *string          `json:"notes" binding:"omitempty,max=5000"`
	FraudScore   *decimal.Decimal `json:"fraudScore"`
	IsFraudulent *bool            `json:"isFraudulent"`
}

// ApproveClaimReq is the body of POST /claims/:id/approve.
type ApproveClaimReq struct {
	ApprovedAmount *decimal.Decimal `json:"approvedAmount" binding:"required"`
}

// SettleClaimReq is the body of POST /claims/:id/settle.
type SettleClaimReq struct {
	SettledAmount *decimal.Decimal `json:"settledAmount" binding:"required"`
}

// DenyClaimReq is the body of POST /claims/:id/deny.
type DenyClaimReq struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

// Input converts the request into a usecase input.
func (r SubmitClaimReq) Input() usecase.SubmitInput {
	return usecase.SubmitInput{
		PolicyID:           r.PolicyID,
		ClaimType:          coverage.Type(r.ClaimType),
		IncidentDate:       r.IncidentDate,
		Description:        r.Description,
		Location:           r.Location,
		EstimatedAmount:    r.EstimatedAmount,
		IsAtFault:          r.IsAtFault,
		PoliceReportNumber: r.PoliceReportNumber,
		InvolvedParties:    parties(r.InvolvedParties),
		Witnesses:          parties(r.Witnesses),
	}
}

// Input converts the request into a usecase input.
func (r InvestigateClaimReq) Input() usecase.InvestigateInput {
	return usecase.InvestigateInput{Notes: r.Notes, FraudScore: r.FraudScore, IsFraudulent: r.IsFraudulent}
}

func parties(in []PartyReq) []entity.Party {
	if len(in) == 0 {
		return nil
	}
	out := make([]entity.Party, len(in))
	for i, p := range in {
		out[i] = entity.Party(p)
	}
	return out
}
