// Package billing holds the payment frequency shared by quotes, policies and payments.
package billing

import "time"

// Frequency is how often a premium instalment is due.
type Frequency string

const (
	Monthly    Frequency = "monthly"
	Quarterly  Frequency = "quarterly"
	SemiAnnual Frequency = "semi-annual"
	Annual     Frequency = "annual"
)

// Months returns the instalment interval in months, 0 for unknown values.
func (f Frequency) Months() int {
	switch f {
	case Monthly:
		return 1
	case Quarterly:
		return 3
	case SemiAnnual:
		return 6
	case Annual:
		return 12
	}
	return 0
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	return f.Months() > 0
}

// Next returns the instalment due after due.
func (f Frequency) Next(due time.Time) time.Time {
	return due.AddDate(0, f.Months(), 0)
}
