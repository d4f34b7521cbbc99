package services

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"taxigest/internal/cache"
	apperrors "taxigest/internal/errors"
	"taxigest/internal/logger"
	"taxigest/internal/models"
	"taxigest/internal/pagination"
	"taxigest/internal/settlement"
)

// recordService handles daily record business logic.
type recordService struct {
	db           *gorm.DB
	settings     SettingServicer
	summaryCache *cache.TTLCache
}

// NewRecordService creates a new RecordServicer. The summary cache is
// invalidated on every write so aggregations never serve stale data.
func NewRecordService(db *gorm.DB, settings SettingServicer, summaryCache *cache.TTLCache) RecordServicer {
	return &recordService{db: db, settings: settings, summaryCache: summaryCache}
}

// settle validates the input and fills the derived fields of a record:
// total km, total income, and the frozen commission/net under the resolved
// mode and rate.
func (s *recordService) settle(record *models.DailyRecord, in RecordInput) error {
	if in.EndKm < in.StartKm {
		return apperrors.ErrInvalidKmRange
	}
	for _, a := range []struct {
		name  string
		value interface{ IsNegative() bool }
	}{
		{"cash_amount", in.CashAmount},
		{"card_amount", in.CardAmount},
		{"invoice_amount", in.InvoiceAmount},
		{"other_amount", in.OtherAmount},
		{"fuel_expense", in.FuelExpense},
		{"other_expenses", in.OtherExpenses},
	} {
		if a.value.IsNegative() {
			return apperrors.WithMessage(apperrors.ErrNegativeAmount, a.name+" must not be negative")
		}
	}

	mode := in.Mode
	if mode == "" {
		mode = s.settings.DefaultCommissionMode()
	}
	rate := s.settings.DriverCommissionRate()
	if in.Rate != nil {
		rate = *in.Rate
	}

	record.Date = in.Date
	record.DriverID = in.DriverID
	record.StartKm = in.StartKm
	record.EndKm = in.EndKm
	record.TotalKm = in.EndKm - in.StartKm
	record.CashAmount = in.CashAmount
	record.CardAmount = in.CardAmount
	record.InvoiceAmount = in.InvoiceAmount
	record.OtherAmount = in.OtherAmount
	record.TotalAmount = record.IncomeTotal()
	record.FuelExpense = in.FuelExpense
	record.OtherExpenses = in.OtherExpenses
	record.Notes = in.Notes
	record.ShiftStart = in.ShiftStart
	record.ShiftEnd = in.ShiftEnd
	record.BreakStart = in.BreakStart
	record.BreakEnd = in.BreakEnd
	record.ImageURL = in.ImageURL

	commission, err := settlement.ComputeDailyCommission(settlement.DailyInput{
		TotalAmount:   record.TotalAmount,
		FuelExpense:   record.FuelExpense,
		OtherExpenses: record.OtherExpenses,
	}, mode, rate)
	if err != nil {
		return err
	}

	record.CommissionMode = mode
	record.CommissionRate = rate
	record.DriverCommission = commission.DriverCommission
	record.NetAmount = commission.NetAmount
	return nil
}

// CreateRecord creates a daily record. Drivers may only create records for
// themselves; an empty DriverID defaults to the actor.
func (s *recordService) CreateRecord(actor *models.User, in RecordInput) (*models.DailyRecord, error) {
	if in.DriverID == 0 {
		in.DriverID = actor.ID
	}
	if !actor.IsAdmin() && in.DriverID != actor.ID {
		return nil, apperrors.ErrForbidden
	}

	var driver models.User
	if err := s.db.First(&driver, in.DriverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	record := &models.DailyRecord{}
	if err := s.settle(record, in); err != nil {
		return nil, err
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.summaryCache.InvalidateAll()
	return record, nil
}

// GetRecords returns a paginated record list. Drivers only see their own
// records regardless of the requested filter.
func (s *recordService) GetRecords(actor *models.User, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.DailyRecord], error) {
	page.Defaults()

	base := s.db.Model(&models.DailyRecord{})
	if !actor.IsAdmin() {
		base = base.Where("driver_id = ?", actor.ID)
	} else if filter.DriverID != nil {
		base = base.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.From != nil {
		base = base.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		base = base.Where("date <= ?", *filter.To)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var records []models.DailyRecord
	if err := base.Order("date DESC").Scopes(pagination.Paginate(page)).Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(records, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRecordByID returns a record the actor is allowed to see.
func (s *recordService) GetRecordByID(actor *models.User, recordID uint) (*models.DailyRecord, error) {
	var record models.DailyRecord
	if err := s.db.First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !actor.IsAdmin() && record.DriverID != actor.ID {
		// Not-found rather than forbidden, to avoid leaking record existence.
		return nil, apperrors.ErrRecordNotFound
	}
	return &record, nil
}

// UpdateRecord re-settles the record from the new input and appends an
// immutable revision entry capturing the previous derived values.
func (s *recordService) UpdateRecord(actor *models.User, recordID uint, in RecordInput) (*models.DailyRecord, error) {
	record, err := s.GetRecordByID(actor, recordID)
	if err != nil {
		return nil, err
	}
	if in.DriverID == 0 {
		in.DriverID = record.DriverID
	}
	if !actor.IsAdmin() && in.DriverID != actor.ID {
		return nil, apperrors.ErrForbidden
	}

	previous := map[string]interface{}{
		"date":              record.Date,
		"total_amount":      record.TotalAmount,
		"fuel_expense":      record.FuelExpense,
		"other_expenses":    record.OtherExpenses,
		"driver_commission": record.DriverCommission,
		"net_amount":        record.NetAmount,
		"commission_mode":   record.CommissionMode,
		"commission_rate":   record.CommissionRate,
	}

	if err := s.settle(record, in); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(record).Error; err != nil {
			return err
		}
		changes, err := json.Marshal(previous)
		if err != nil {
			return err
		}
		revision := &models.RecordRevision{
			RecordID: record.ID,
			EditorID: actor.ID,
			Changes:  string(changes),
		}
		return tx.Create(revision).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.summaryCache.InvalidateAll()
	return record, nil
}

// DeleteRecord soft-deletes a record the actor owns (or any record for an
// admin). Revisions are kept.
func (s *recordService) DeleteRecord(actor *models.User, recordID uint) error {
	record, err := s.GetRecordByID(actor, recordID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(record).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.summaryCache.InvalidateAll()
	logger.Get().Infow("daily record deleted", "record_id", recordID, "actor_id", actor.ID)
	return nil
}

// GetRecordRevisions returns the edit history of a record, oldest first.
func (s *recordService) GetRecordRevisions(actor *models.User, recordID uint) ([]models.RecordRevision, error) {
	if _, err := s.GetRecordByID(actor, recordID); err != nil {
		return nil, err
	}

	var revisions []models.RecordRevision
	if err := s.db.Where("record_id = ?", recordID).Order("created_at").Find(&revisions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return revisions, nil
}
