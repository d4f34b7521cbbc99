package models

import (
	"time"

	"github.com/shopspring/decimal"

	"taxigest/internal/settlement"
)

// DailyRecord is one driver shift: income split by payment channel, shift
// expenses, kilometers, and the settled commission. Commission mode and rate
// are frozen on the record at creation/edit time so historical records stay
// consistent when the configured defaults change.
type DailyRecord struct {
	Base
	Date     time.Time `gorm:"not null;index" json:"date"`
	DriverID uint      `gorm:"not null;index" json:"driver_id"`

	StartKm uint `gorm:"not null" json:"start_km"`
	EndKm   uint `gorm:"not null" json:"end_km"`
	TotalKm uint `gorm:"not null" json:"total_km"`

	CashAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cash_amount"`
	CardAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"card_amount"`
	InvoiceAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"invoice_amount"`
	OtherAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"other_amount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`

	FuelExpense   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"fuel_expense"`
	OtherExpenses decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"other_expenses"`

	CommissionMode   settlement.Mode `gorm:"type:varchar(20);not null" json:"commission_mode"`
	CommissionRate   decimal.Decimal `gorm:"type:decimal(8,4);not null" json:"commission_rate"`
	DriverCommission decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"driver_commission"`
	NetAmount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"net_amount"`

	Notes      string `json:"notes,omitempty"`
	ShiftStart string `gorm:"size:8" json:"shift_start,omitempty"`
	ShiftEnd   string `gorm:"size:8" json:"shift_end,omitempty"`
	BreakStart string `gorm:"size:8" json:"break_start,omitempty"`
	BreakEnd   string `gorm:"size:8" json:"break_end,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`

	Driver User `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
}

// IncomeTotal sums the four income channels. TotalAmount must always equal
// this value; the record service recomputes it on every write.
func (r *DailyRecord) IncomeTotal() decimal.Decimal {
	return r.CashAmount.Add(r.CardAmount).Add(r.InvoiceAmount).Add(r.OtherAmount)
}

// OperationalExpenses sums the shift's fuel and other expenses.
func (r *DailyRecord) OperationalExpenses() decimal.Decimal {
	return r.FuelExpense.Add(r.OtherExpenses)
}
