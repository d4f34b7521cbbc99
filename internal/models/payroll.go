package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollStatus is the payment state of a payroll.
type PayrollStatus string

const (
	PayrollStatusPending PayrollStatus = "pending"
	PayrollStatusPaid    PayrollStatus = "paid"
)

// Payroll covers one driver for one period. Periods must not overlap per
// driver; the payroll service rejects conflicting creates.
type Payroll struct {
	Base
	DriverID    uint      `gorm:"not null;index" json:"driver_id"`
	PeriodStart time.Time `gorm:"not null" json:"period_start"`
	PeriodEnd   time.Time `gorm:"not null" json:"period_end"`

	BaseSalary     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"base_salary"`
	Commissions    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"commissions"`
	Bonuses        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"bonuses"`
	Deductions     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"deductions"`
	TaxWithholding decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"tax_withholding"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"net_amount"`

	Status      PayrollStatus `gorm:"type:varchar(12);not null;default:'pending'" json:"status"`
	PaymentDate *time.Time    `json:"payment_date,omitempty"`

	// The payslip PDF is stored externally and only referenced here; its
	// contents are never parsed into the amount fields.
	PdfURL string `json:"pdf_url,omitempty"`
	Notes  string `json:"notes,omitempty"`

	Driver User `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
}

// ComputeNet derives the net amount: base + commissions + bonuses -
// deductions - tax withholding.
func (p *Payroll) ComputeNet() decimal.Decimal {
	return p.BaseSalary.
		Add(p.Commissions).
		Add(p.Bonuses).
		Sub(p.Deductions).
		Sub(p.TaxWithholding)
}
