package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"taxigest/internal/cache"
	apperrors "taxigest/internal/errors"
	"taxigest/internal/models"
	"taxigest/internal/pagination"
)

// payrollService handles payroll business logic.
type payrollService struct {
	db           *gorm.DB
	settings     SettingServicer
	summaryCache *cache.TTLCache
}

// NewPayrollService creates a new PayrollServicer.
func NewPayrollService(db *gorm.DB, settings SettingServicer, summaryCache *cache.TTLCache) PayrollServicer {
	return &payrollService{db: db, settings: settings, summaryCache: summaryCache}
}

func (s *payrollService) validate(in PayrollInput) error {
	if in.PeriodEnd.Before(in.PeriodStart) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "period_end must not be before period_start")
	}
	for _, a := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"base_salary", in.BaseSalary},
		{"commissions", in.Commissions},
		{"bonuses", in.Bonuses},
		{"deductions", in.Deductions},
		{"tax_withholding", in.TaxWithholding},
	} {
		if a.value.IsNegative() {
			return apperrors.WithMessage(apperrors.ErrNegativeAmount, a.name+" must not be negative")
		}
	}
	return nil
}

// hasOverlap reports whether another payroll for the driver intersects the
// period, excluding payroll excludeID.
func (s *payrollService) hasOverlap(driverID uint, start, end time.Time, excludeID uint) (bool, error) {
	var count int64
	q := s.db.Model(&models.Payroll{}).
		Where("driver_id = ? AND period_start <= ? AND period_end >= ?", driverID, end, start)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// CreatePayroll creates a payroll for a driver and period. Periods must not
// overlap an existing payroll for the same driver.
func (s *payrollService) CreatePayroll(in PayrollInput) (*models.Payroll, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	var driver models.User
	if err := s.db.First(&driver, in.DriverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	overlap, err := s.hasOverlap(in.DriverID, in.PeriodStart, in.PeriodEnd, 0)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, apperrors.ErrPayrollPeriodOverlap
	}

	payroll := &models.Payroll{
		DriverID:       in.DriverID,
		PeriodStart:    in.PeriodStart,
		PeriodEnd:      in.PeriodEnd,
		BaseSalary:     in.BaseSalary,
		Commissions:    in.Commissions,
		Bonuses:        in.Bonuses,
		Deductions:     in.Deductions,
		TaxWithholding: in.TaxWithholding,
		Status:         models.PayrollStatusPending,
		PdfURL:         in.PdfURL,
		Notes:          in.Notes,
	}
	payroll.NetAmount = payroll.ComputeNet()

	if err := s.db.Create(payroll).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.summaryCache.InvalidateAll()
	return payroll, nil
}

// GetPayrolls returns a paginated payroll list with optional filters.
func (s *payrollService) GetPayrolls(page pagination.PageRequest, driverID *uint, status *models.PayrollStatus) (*pagination.PageResponse[models.Payroll], error) {
	page.Defaults()

	base := s.db.Model(&models.Payroll{})
	if driverID != nil {
		base = base.Where("driver_id = ?", *driverID)
	}
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payrolls []models.Payroll
	if err := base.Order("period_start DESC").Scopes(pagination.Paginate(page)).Find(&payrolls).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payrolls, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPayrollByID returns a payroll by ID.
func (s *payrollService) GetPayrollByID(payrollID uint) (*models.Payroll, error) {
	var payroll models.Payroll
	if err := s.db.First(&payroll, payrollID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPayrollNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &payroll, nil
}

// UpdatePayroll replaces a payroll's amounts and recomputes the net.
func (s *payrollService) UpdatePayroll(payrollID uint, in PayrollInput) (*models.Payroll, error) {
	payroll, err := s.GetPayrollByID(payrollID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	if in.DriverID == 0 {
		in.DriverID = payroll.DriverID
	}
	overlap, err := s.hasOverlap(in.DriverID, in.PeriodStart, in.PeriodEnd, payroll.ID)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, apperrors.ErrPayrollPeriodOverlap
	}

	payroll.DriverID = in.DriverID
	payroll.PeriodStart = in.PeriodStart
	payroll.PeriodEnd = in.PeriodEnd
	payroll.BaseSalary = in.BaseSalary
	payroll.Commissions = in.Commissions
	payroll.Bonuses = in.Bonuses
	payroll.Deductions = in.Deductions
	payroll.TaxWithholding = in.TaxWithholding
	payroll.PdfURL = in.PdfURL
	payroll.Notes = in.Notes
	payroll.NetAmount = payroll.ComputeNet()

	if err := s.db.Save(payroll).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.summaryCache.InvalidateAll()
	return payroll, nil
}

// MarkPaid transitions a pending payroll to paid.
func (s *payrollService) MarkPaid(payrollID uint, paymentDate time.Time) (*models.Payroll, error) {
	payroll, err := s.GetPayrollByID(payrollID)
	if err != nil {
		return nil, err
	}
	if payroll.Status == models.PayrollStatusPaid {
		return nil, apperrors.ErrPayrollAlreadyPaid
	}

	updates := map[string]interface{}{
		"status":       models.PayrollStatusPaid,
		"payment_date": paymentDate,
	}
	if err := s.db.Model(payroll).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	payroll.Status = models.PayrollStatusPaid
	payroll.PaymentDate = &paymentDate
	return payroll, nil
}

// ResolveBaseSalary returns the base salary of a payroll covering the period
// for the driver, or the configured default when none was finalized.
func (s *payrollService) ResolveBaseSalary(driverID uint, periodStart, periodEnd time.Time) (decimal.Decimal, error) {
	var payroll models.Payroll
	err := s.db.
		Where("driver_id = ? AND period_start <= ? AND period_end >= ?", driverID, periodEnd, periodStart).
		Order("period_start DESC").
		First(&payroll).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.settings.DriverBaseSalary(), nil
	case err != nil:
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payroll.BaseSalary, nil
}
