package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"taxigest/internal/config"
	apperrors "taxigest/internal/errors"
	"taxigest/internal/logger"
	"taxigest/internal/models"
	"taxigest/internal/settlement"
)

// settingService handles the key/value configuration store.
type settingService struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewSettingService creates a new SettingServicer.
func NewSettingService(db *gorm.DB, cfg *config.Config) SettingServicer {
	return &settingService{db: db, cfg: cfg}
}

// Get returns the stored value for key.
func (s *settingService) Get(key string) (string, error) {
	var setting models.Setting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrSettingNotFound
		}
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return setting.Value, nil
}

// Set stores a value under key, creating or updating the row.
func (s *settingService) Set(key, value string) (*models.Setting, error) {
	if key == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidSetting, "setting key is required")
	}

	// Decimal-valued keys must parse to non-negative numbers.
	switch key {
	case models.SettingDriverBaseSalary, models.SettingDriverCommissionRate:
		d, err := decimal.NewFromString(value)
		if err != nil || d.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidSetting, key+" must be a non-negative number")
		}
	}

	var setting models.Setting
	err := s.db.Where("key = ?", key).First(&setting).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		setting = models.Setting{Key: key, Value: value}
		if err := s.db.Create(&setting).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	default:
		if err := s.db.Model(&setting).Update("value", value).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		setting.Value = value
	}

	return &setting, nil
}

// All returns every stored setting.
func (s *settingService) All() ([]models.Setting, error) {
	var settings []models.Setting
	if err := s.db.Order("key").Find(&settings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return settings, nil
}

// getDecimal returns the stored decimal for key, or fallback when the key is
// absent or unparsable.
func (s *settingService) getDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	value, err := s.Get(key)
	if err != nil {
		return fallback
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		logger.Get().Warnw("unparsable stored setting, using fallback", "key", key, "value", value)
		return fallback
	}
	return d
}

// DriverBaseSalary returns the configured base salary (default 1400 EUR).
func (s *settingService) DriverBaseSalary() decimal.Decimal {
	return s.getDecimal(models.SettingDriverBaseSalary, s.cfg.DriverBaseSalary)
}

// DriverCommissionRate returns the configured commission rate (default 0.35).
func (s *settingService) DriverCommissionRate() decimal.Decimal {
	return s.getDecimal(models.SettingDriverCommissionRate, s.cfg.DriverCommissionRate)
}

// DefaultCommissionMode returns the configured commission mode. The stored
// config value is validated at use; an unknown value falls back to gross.
func (s *settingService) DefaultCommissionMode() settlement.Mode {
	mode := settlement.Mode(s.cfg.CommissionMode)
	if !mode.Valid() {
		return settlement.ModeGross
	}
	return mode
}
