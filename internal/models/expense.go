package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies an expense line. Variable expenses use the
// vehicle-facing categories; recurring monthly expenses use the
// business-overhead categories.
type ExpenseCategory string

const (
	// Variable expense categories.
	CategoryCombustible  ExpenseCategory = "combustible"
	CategoryMantenimiento ExpenseCategory = "mantenimiento"
	CategoryReparacion   ExpenseCategory = "reparacion"
	CategorySeguro       ExpenseCategory = "seguro"
	CategoryImpuestos    ExpenseCategory = "impuestos"
	CategoryOtros        ExpenseCategory = "otros"

	// Fixed monthly categories.
	CategorySeguridadSocial ExpenseCategory = "seguridad_social"
	CategoryCuotaAutonomos  ExpenseCategory = "cuota_autonomos"
	CategoryCuotaAsociacion ExpenseCategory = "cuota_asociacion"
	CategoryGestoria        ExpenseCategory = "gestoria"
	CategorySuministros     ExpenseCategory = "suministros"
)

// ExpenseFrequency is the recurrence interval of a fixed expense.
type ExpenseFrequency string

const (
	FrequencyMonthly   ExpenseFrequency = "monthly"
	FrequencyQuarterly ExpenseFrequency = "quarterly"
	FrequencyBiannual  ExpenseFrequency = "biannual"
	FrequencyAnnual    ExpenseFrequency = "annual"
)

// ExpenseStatus is the approval state of an expense line.
type ExpenseStatus string

const (
	ExpenseStatusPending   ExpenseStatus = "pending"
	ExpenseStatusApproved  ExpenseStatus = "approved"
	ExpenseStatusCompleted ExpenseStatus = "completed"
)

// VATRate is the fixed Spanish standard VAT rate applied on the
// total-with-VAT input path.
var VATRate = decimal.NewFromFloat(0.21)

// Expense is a single fixed (recurring) or variable cost line item.
// TotalAmount = Amount + TaxAmount always holds for lines created through
// the total-with-VAT path.
type Expense struct {
	Base
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Category    ExpenseCategory `gorm:"type:varchar(30);not null" json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"tax_amount"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	IsRecurring bool            `gorm:"not null;index" json:"is_recurring"`

	// Only meaningful when IsRecurring is true.
	Frequency   ExpenseFrequency `gorm:"type:varchar(12)" json:"frequency,omitempty"`
	NextDueDate *time.Time       `json:"next_due_date,omitempty"`

	Status ExpenseStatus `gorm:"type:varchar(12);not null;default:'pending'" json:"status"`
}

// SplitVAT decomposes a VAT-inclusive total into base amount and tax at the
// fixed 21% rate: amount = total / 1.21, tax = total - amount.
func SplitVAT(total decimal.Decimal) (amount, tax decimal.Decimal) {
	amount = total.Div(decimal.NewFromInt(1).Add(VATRate))
	tax = total.Sub(amount)
	return amount, tax
}

// NextOccurrence returns the due date advanced by one recurrence interval.
func (f ExpenseFrequency) NextOccurrence(from time.Time) time.Time {
	switch f {
	case FrequencyQuarterly:
		return from.AddDate(0, 3, 0)
	case FrequencyBiannual:
		return from.AddDate(0, 6, 0)
	case FrequencyAnnual:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}
