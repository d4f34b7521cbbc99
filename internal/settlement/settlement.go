// Package settlement implements the daily financial settlement rules for the
// fleet: per-shift driver commission, period aggregation into a financial
// summary, and the commission-vs-salary reconciliation split. Everything in
// this package is pure computation over decimal values; callers fetch the
// records, expenses, and base salary, and render or persist the results.
//
// Monetary values keep full decimal precision while accumulating; rounding
// to cents happens only at presentation time (see FinancialSummary.Rounded).
package settlement

import (
	"github.com/shopspring/decimal"

	apperrors "taxigest/internal/errors"
)

// Mode selects how a shift's driver commission is derived. The business ran
// with both policies on different screens, so the caller must always pick one
// explicitly rather than this package guessing.
type Mode string

const (
	// ModeGross applies the commission rate to gross income, before any
	// operational expenses are subtracted.
	ModeGross Mode = "gross"
	// ModePostExpense applies the commission rate to income net of fuel and
	// other shift expenses.
	ModePostExpense Mode = "post_expense"
)

// Valid reports whether m is a known commission mode.
func (m Mode) Valid() bool {
	return m == ModeGross || m == ModePostExpense
}

// healthyMarginThreshold is the fixed business threshold (in percent) above
// which a period's profit margin is considered healthy.
var healthyMarginThreshold = decimal.NewFromInt(15)

// FixedCategory identifies one of the monthly recurring expense buckets.
type FixedCategory string

const (
	FixedSeguridadSocial FixedCategory = "seguridad_social"
	FixedCuotaAutonomos  FixedCategory = "cuota_autonomos"
	FixedCuotaAsociacion FixedCategory = "cuota_asociacion"
	FixedGestoria        FixedCategory = "gestoria"
	FixedSeguro          FixedCategory = "seguro"
	FixedSuministros     FixedCategory = "suministros"
	FixedOtros           FixedCategory = "otros"
)

// FixedCategories lists every monthly bucket in display order. A summary
// always contains all of them, zero-valued when absent from the input.
var FixedCategories = []FixedCategory{
	FixedSeguridadSocial,
	FixedCuotaAutonomos,
	FixedCuotaAsociacion,
	FixedGestoria,
	FixedSeguro,
	FixedSuministros,
	FixedOtros,
}

// DailyInput holds the per-shift figures needed to derive a commission.
type DailyInput struct {
	TotalAmount   decimal.Decimal
	FuelExpense   decimal.Decimal
	OtherExpenses decimal.Decimal
}

// Commission is the result of settling a single shift.
type Commission struct {
	DriverCommission decimal.Decimal
	NetAmount        decimal.Decimal
}

// ComputeDailyCommission derives the driver commission and company net for
// one shift under the given mode and rate.
//
// Under ModeGross: commission = totalAmount * rate, and
// net = totalAmount - commission - (fuel + other).
// Under ModePostExpense: commission = (totalAmount - fuel - other) * rate,
// and net = totalAmount - (fuel + other) - commission.
//
// Inputs must be non-negative; a typed validation error names the offending
// field otherwise. A zero totalAmount settles to zero commission.
func ComputeDailyCommission(in DailyInput, mode Mode, rate decimal.Decimal) (Commission, error) {
	if !mode.Valid() {
		return Commission{}, apperrors.WithMessage(apperrors.ErrInvalidCommission, "commission mode must be 'gross' or 'post_expense'")
	}
	if rate.IsNegative() {
		return Commission{}, apperrors.WithMessage(apperrors.ErrNegativeAmount, "commission rate must not be negative")
	}
	if in.TotalAmount.IsNegative() {
		return Commission{}, apperrors.WithMessage(apperrors.ErrNegativeAmount, "total_amount must not be negative")
	}
	if in.FuelExpense.IsNegative() {
		return Commission{}, apperrors.WithMessage(apperrors.ErrNegativeAmount, "fuel_expense must not be negative")
	}
	if in.OtherExpenses.IsNegative() {
		return Commission{}, apperrors.WithMessage(apperrors.ErrNegativeAmount, "other_expenses must not be negative")
	}

	operational := in.FuelExpense.Add(in.OtherExpenses)

	var commission decimal.Decimal
	switch mode {
	case ModeGross:
		commission = in.TotalAmount.Mul(rate)
	case ModePostExpense:
		commission = in.TotalAmount.Sub(operational).Mul(rate)
	}

	net := in.TotalAmount.Sub(operational).Sub(commission)
	return Commission{DriverCommission: commission, NetAmount: net}, nil
}

// RecordInput is one already-settled shift entering a period aggregation.
// DriverCommission is the value frozen when the record was created or last
// edited; it is summed as-is and never recomputed here, so periods that mix
// historical modes or rates stay consistent with what was actually paid.
type RecordInput struct {
	TotalAmount      decimal.Decimal
	FuelExpense      decimal.Decimal
	OtherExpenses    decimal.Decimal
	DriverCommission decimal.Decimal
}

// ExpenseInput is one expense line entering a period aggregation. Category is
// only consulted for fixed (recurring) lines, where it selects the monthly
// bucket; unknown categories fall into the "otros" bucket.
type ExpenseInput struct {
	Category FixedCategory
	Amount   decimal.Decimal
}

// UnifiedExpenses groups every expense source of a period. Total excludes the
// driver commission, which the summary subtracts once, separately.
type UnifiedExpenses struct {
	MonthlyFixed     map[FixedCategory]decimal.Decimal `json:"monthly_fixed_expenses"`
	DailyOperational decimal.Decimal                   `json:"daily_operational_expenses"`
	Variable         decimal.Decimal                   `json:"variable_expenses"`
	Total            decimal.Decimal                   `json:"total_expenses"`
}

// FinancialSummary is the settlement of a period: income, commission, the
// unified expense breakdown, real net profit, and the informational
// commission-vs-salary split for driver-facing payroll display.
type FinancialSummary struct {
	TotalIncome       decimal.Decimal `json:"total_income"`
	DriverCommission  decimal.Decimal `json:"driver_commission"`
	NominaReal        decimal.Decimal `json:"nomina_real"`
	EfectivoAdicional decimal.Decimal `json:"efectivo_adicional"`
	Expenses          UnifiedExpenses `json:"unified_expenses"`
	RealNetProfit     decimal.Decimal `json:"real_net_profit"`
}

// AggregatePeriod settles a period from its raw inputs.
//
// Records must already be filtered to the requested date range and driver.
// fixedExpenses are the recurring monthly lines, variableExpenses the one-off
// lines. baseSalary is the resolved payroll base (or the configured default)
// used only for the reconciliation split.
//
// Empty inputs are valid: sums default to zero and the result is a plain
// loss of the expense total.
func AggregatePeriod(records []RecordInput, fixedExpenses, variableExpenses []ExpenseInput, baseSalary decimal.Decimal) FinancialSummary {
	var totalIncome, commission, operational decimal.Decimal

	for _, r := range records {
		totalIncome = totalIncome.Add(r.TotalAmount)
		commission = commission.Add(r.DriverCommission)
		operational = operational.Add(r.FuelExpense).Add(r.OtherExpenses)
	}

	fixed := make(map[FixedCategory]decimal.Decimal, len(FixedCategories))
	for _, cat := range FixedCategories {
		fixed[cat] = decimal.Zero
	}
	var fixedTotal decimal.Decimal
	for _, e := range fixedExpenses {
		cat := e.Category
		if _, ok := fixed[cat]; !ok {
			cat = FixedOtros
		}
		fixed[cat] = fixed[cat].Add(e.Amount)
		fixedTotal = fixedTotal.Add(e.Amount)
	}

	var variable decimal.Decimal
	for _, e := range variableExpenses {
		variable = variable.Add(e.Amount)
	}

	totalExpenses := operational.Add(fixedTotal).Add(variable)

	// Commission is subtracted exactly once here; it is deliberately not part
	// of totalExpenses.
	realNetProfit := totalIncome.Sub(commission).Sub(totalExpenses)

	nominaReal := decimal.Min(commission, baseSalary)
	efectivoAdicional := decimal.Max(decimal.Zero, commission.Sub(baseSalary))

	return FinancialSummary{
		TotalIncome:       totalIncome,
		DriverCommission:  commission,
		NominaReal:        nominaReal,
		EfectivoAdicional: efectivoAdicional,
		Expenses: UnifiedExpenses{
			MonthlyFixed:     fixed,
			DailyOperational: operational,
			Variable:         variable,
			Total:            totalExpenses,
		},
		RealNetProfit: realNetProfit,
	}
}

// Rounded returns a copy of the summary with every monetary field rounded to
// two decimals, for presentation and serialization at API boundaries.
func (s FinancialSummary) Rounded() FinancialSummary {
	fixed := make(map[FixedCategory]decimal.Decimal, len(s.Expenses.MonthlyFixed))
	for cat, amount := range s.Expenses.MonthlyFixed {
		fixed[cat] = amount.Round(2)
	}
	return FinancialSummary{
		TotalIncome:       s.TotalIncome.Round(2),
		DriverCommission:  s.DriverCommission.Round(2),
		NominaReal:        s.NominaReal.Round(2),
		EfectivoAdicional: s.EfectivoAdicional.Round(2),
		Expenses: UnifiedExpenses{
			MonthlyFixed:     fixed,
			DailyOperational: s.Expenses.DailyOperational.Round(2),
			Variable:         s.Expenses.Variable.Round(2),
			Total:            s.Expenses.Total.Round(2),
		},
		RealNetProfit: s.RealNetProfit.Round(2),
	}
}

// MarginClassification reports a period's profit margin and whether it clears
// the fixed health threshold.
type MarginClassification struct {
	ProfitMarginPct decimal.Decimal `json:"profit_margin_pct"`
	IsHealthy       bool            `json:"is_healthy"`
}

// ClassifyMargin computes realNetProfit / totalIncome as a percentage. A zero
// income period has a defined margin of zero rather than a division error.
func ClassifyMargin(totalIncome, realNetProfit decimal.Decimal) MarginClassification {
	if totalIncome.IsZero() {
		return MarginClassification{ProfitMarginPct: decimal.Zero, IsHealthy: false}
	}
	pct := realNetProfit.Div(totalIncome).Mul(decimal.NewFromInt(100))
	return MarginClassification{
		ProfitMarginPct: pct,
		IsHealthy:       pct.GreaterThan(healthyMarginThreshold),
	}
}
