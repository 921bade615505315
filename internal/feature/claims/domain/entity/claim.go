// Package entity defines the claim domain model and its status workflow.
package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"insurance_backend/internal/shared/coverage"
	"insurance_backend/internal/shared/record"
)

// Status is a step of the claim workflow.
type Status string

const (
	StatusSubmitted     Status = "submitted"
	StatusUnderReview   Status = "under_review"
	StatusInvestigating Status = "investigating"
	StatusApproved      Status = "approved"
	StatusDenied        Status = "denied"
	StatusSettled       Status = "settled"
	StatusClosed        Status = "closed"
)

// ErrInvalidTransition is returned when the workflow does not allow the requested move.
var ErrInvalidTransition = errors.New("invalid claim status transition")

var transitions = map[Status][]Status{
	StatusSubmitted:     {StatusUnderReview, StatusDenied},
	StatusUnderReview:   {StatusInvestigating, StatusApproved, StatusDenied},
	StatusInvestigating: {StatusApproved, StatusDenied},
	StatusApproved:      {StatusSettled},
	StatusSettled:       {StatusClosed},
	StatusDenied:        {StatusClosed},
}

// CanTransition reports whether the workflow allows moving from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Party is a person involved in or witnessing the incident.
type Party struct {
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Insurer   string `json:"insurer,omitempty"`
	Statement string `json:"statement,omitempty"`
}

// Claim is a request for compensation filed against a policy.
type Claim struct {
	record.Base
	ClaimNumber        string                      `gorm:"size:50;uniqueIndex;not null" json:"claimNumber"`
	Status             Status                      `gorm:"size:20;not null;default:submitted;index" json:"status"`
	ClaimType          coverage.Type               `gorm:"size:100;not null" json:"claimType"`
	IncidentDate       time.Time                   `gorm:"type:date;not null" json:"incidentDate"`
	ReportedDate       time.Time                   `gorm:"type:date;not null" json:"reportedDate"`
	Description        string                      `gorm:"type:text;not null" json:"description"`
	Location           *string                     `gorm:"size:255" json:"location,omitempty"`
	EstimatedAmount    decimal.NullDecimal         `gorm:"type:decimal(10,2)" json:"estimatedAmount"`
	ApprovedAmount     decimal.NullDecimal         `gorm:"type:decimal(10,2)" json:"approvedAmount"`
	SettledAmount      decimal.NullDecimal         `gorm:"type:decimal(10,2)" json:"settledAmount"`
	DeductibleAmount   decimal.NullDecimal         `gorm:"type:decimal(10,2)" json:"deductibleAmount"`
	IsAtFault          bool                        `gorm:"not null" json:"isAtFault"`
	PoliceReportNumber *string                     `gorm:"size:255" json:"policeReportNumber,omitempty"`
	InvolvedParties    datatypes.JSONType[[]Party] `json:"involvedParties"`
	Witnesses          datatypes.JSONType[[]Party] `json:"witnesses"`
	AdjusterNotes      *string                     `gorm:"type:text" json:"adjusterNotes,omitempty"`
	ClosedDate         *time.Time                  `gorm:"type:date" json:"closedDate,omitempty"`
	DenialReason       *string                     `gorm:"type:text" json:"denialReason,omitempty"`
	IsFraudulent       bool                        `gorm:"not null" json:"isFraudulent"`
	FraudScore         decimal.NullDecimal         `gorm:"type:decimal(3,2)" json:"fraudScore"`
	PolicyID           string                      `gorm:"type:uuid;index;not null" json:"policyId"`
	ClaimantID         string                      `gorm:"type:uuid;index;not null" json:"claimantId"`
	AdjusterID         *string                     `gorm:"type:uuid" json:"adjusterId,omitempty"`
}

// TransitionTo moves the claim to status, stamping the closed date on close.
func (c *Claim) TransitionTo(to Status, now time.Time) error {
	if !CanTransition(c.Status, to) {
		return ErrInvalidTransition
	}
	c.Status = to
	if to == StatusClosed {
		c.ClosedDate = &now
	}
	return nil
}

// AppendNote adds an adjuster note on its own line.
func (c *Claim) AppendNote(note string) {
	if note == "" {
		return
	}
	if c.AdjusterNotes == nil || *c.AdjusterNotes == "" {
		c.AdjusterNotes = &note
		return
	}
	joined := *c.AdjusterNotes + "\n" + note
	c.AdjusterNotes = &joined
}

// GenerateClaimNumber assigns a CLM number unless one is already set.
func (c *Claim) GenerateClaimNumber(now time.Time) {
	if c.ClaimNumber == "" {
		c.ClaimNumber = record.Number("CLM", now)
	}
}
