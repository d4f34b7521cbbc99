package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"taxigest/internal/cache"
	apperrors "taxigest/internal/errors"
	"taxigest/internal/models"
	"taxigest/internal/settlement"
)

// summaryService computes period settlement summaries. The heavy lifting is
// the pure settlement package; this service only fetches the three inputs
// (records, expenses, base salary) and caches the result.
type summaryService struct {
	db       *gorm.DB
	payrolls PayrollServicer
	settings SettingServicer
	cache    *cache.TTLCache
}

// NewSummaryService creates a new SummaryServicer. The cache is shared with
// the write-side services, which invalidate it on every mutation.
func NewSummaryService(db *gorm.DB, payrolls PayrollServicer, settings SettingServicer, summaryCache *cache.TTLCache) SummaryServicer {
	return &summaryService{db: db, payrolls: payrolls, settings: settings, cache: summaryCache}
}

// fixedBucket maps an expense category onto a monthly settlement bucket.
// Non-overhead categories on recurring lines land in "otros".
func fixedBucket(cat models.ExpenseCategory) settlement.FixedCategory {
	switch cat {
	case models.CategorySeguridadSocial:
		return settlement.FixedSeguridadSocial
	case models.CategoryCuotaAutonomos:
		return settlement.FixedCuotaAutonomos
	case models.CategoryCuotaAsociacion:
		return settlement.FixedCuotaAsociacion
	case models.CategoryGestoria:
		return settlement.FixedGestoria
	case models.CategorySeguro:
		return settlement.FixedSeguro
	case models.CategorySuministros:
		return settlement.FixedSuministros
	default:
		return settlement.FixedOtros
	}
}

// GetFinancialSummary settles the period [from, to] (optionally for a single
// driver) into a FinancialSummary plus margin classification. Results are
// cached per (driver, from, to) for the configured TTL; identical concurrent
// requests share one computation.
func (s *summaryService) GetFinancialSummary(from, to time.Time, driverID *uint) (*PeriodSummary, error) {
	if to.Before(from) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "'to' must not be before 'from'")
	}

	key := summaryKey(from, to, driverID)
	v, err := s.cache.GetOrCompute(key, func() (any, error) {
		return s.compute(from, to, driverID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*PeriodSummary), nil
}

func summaryKey(from, to time.Time, driverID *uint) string {
	driver := uint(0)
	if driverID != nil {
		driver = *driverID
	}
	return fmt.Sprintf("summary:%d:%s:%s", driver, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func (s *summaryService) compute(from, to time.Time, driverID *uint) (*PeriodSummary, error) {
	recordQuery := s.db.Model(&models.DailyRecord{}).Where("date BETWEEN ? AND ?", from, to)
	if driverID != nil {
		recordQuery = recordQuery.Where("driver_id = ?", *driverID)
	}
	var records []models.DailyRecord
	if err := recordQuery.Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := s.db.Where("date BETWEEN ? AND ?", from, to).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	recordInputs := make([]settlement.RecordInput, 0, len(records))
	for _, r := range records {
		recordInputs = append(recordInputs, settlement.RecordInput{
			TotalAmount:      r.TotalAmount,
			FuelExpense:      r.FuelExpense,
			OtherExpenses:    r.OtherExpenses,
			DriverCommission: r.DriverCommission,
		})
	}

	var fixed, variable []settlement.ExpenseInput
	for _, e := range expenses {
		if e.IsRecurring {
			fixed = append(fixed, settlement.ExpenseInput{
				Category: fixedBucket(e.Category),
				Amount:   e.Amount,
			})
		} else {
			variable = append(variable, settlement.ExpenseInput{Amount: e.Amount})
		}
	}

	baseSalary := s.settings.DriverBaseSalary()
	if driverID != nil {
		resolved, err := s.payrolls.ResolveBaseSalary(*driverID, from, to)
		if err != nil {
			return nil, err
		}
		baseSalary = resolved
	}

	summary := settlement.AggregatePeriod(recordInputs, fixed, variable, baseSalary)
	margin := settlement.ClassifyMargin(summary.TotalIncome, summary.RealNetProfit)

	return &PeriodSummary{
		From:     from,
		To:       to,
		DriverID: driverID,
		Summary:  summary.Rounded(),
		Margin: settlement.MarginClassification{
			ProfitMarginPct: margin.ProfitMarginPct.Round(2),
			IsHealthy:       margin.IsHealthy,
		},
	}, nil
}
