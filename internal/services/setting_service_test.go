package services

import (
	"testing"

	"taxigest/internal/models"
	"taxigest/internal/settlement"
	"taxigest/internal/testutil"
)

func TestSettingGetSet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSettingService(db, testConfig(t))

	t.Run("missing_key", func(t *testing.T) {
		_, err := svc.Get("nonexistent")
		testutil.AssertAppError(t, err, "SETTING_NOT_FOUND")
	})

	t.Run("set_then_get", func(t *testing.T) {
		_, err := svc.Set(models.SettingDriverBaseSalary, "1500")
		testutil.AssertNoError(t, err)

		value, err := svc.Get(models.SettingDriverBaseSalary)
		testutil.AssertNoError(t, err)
		if value != "1500" {
			t.Errorf("expected 1500, got %s", value)
		}
	})

	t.Run("set_overwrites", func(t *testing.T) {
		_, err := svc.Set(models.SettingDriverBaseSalary, "1600")
		testutil.AssertNoError(t, err)

		value, err := svc.Get(models.SettingDriverBaseSalary)
		testutil.AssertNoError(t, err)
		if value != "1600" {
			t.Errorf("expected 1600, got %s", value)
		}
	})

	t.Run("empty_key_rejected", func(t *testing.T) {
		_, err := svc.Set("", "x")
		testutil.AssertAppError(t, err, "INVALID_SETTING")
	})

	t.Run("non_numeric_salary_rejected", func(t *testing.T) {
		_, err := svc.Set(models.SettingDriverBaseSalary, "lots")
		testutil.AssertAppError(t, err, "INVALID_SETTING")
	})

	t.Run("negative_rate_rejected", func(t *testing.T) {
		_, err := svc.Set(models.SettingDriverCommissionRate, "-0.1")
		testutil.AssertAppError(t, err, "INVALID_SETTING")
	})
}

func TestSettingDefaults(t *testing.T) {
	t.Run("config_fallbacks_when_unset", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingService(db, testConfig(t))

		testutil.AssertDecimal(t, "1400", svc.DriverBaseSalary(), "base_salary")
		testutil.AssertDecimal(t, "0.35", svc.DriverCommissionRate(), "commission_rate")
		if svc.DefaultCommissionMode() != settlement.ModeGross {
			t.Errorf("expected gross mode, got %s", svc.DefaultCommissionMode())
		}
	})

	t.Run("stored_values_win", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingService(db, testConfig(t))

		_, err := svc.Set(models.SettingDriverBaseSalary, "1500")
		testutil.AssertNoError(t, err)
		_, err = svc.Set(models.SettingDriverCommissionRate, "0.40")
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, "1500", svc.DriverBaseSalary(), "base_salary")
		testutil.AssertDecimal(t, "0.40", svc.DriverCommissionRate(), "commission_rate")
	})

	t.Run("unknown_mode_falls_back_to_gross", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		cfg := testConfig(t)
		cfg.CommissionMode = "net_of_everything"
		svc := NewSettingService(db, cfg)

		if svc.DefaultCommissionMode() != settlement.ModeGross {
			t.Errorf("expected gross fallback, got %s", svc.DefaultCommissionMode())
		}
	})

	t.Run("all_lists_stored_settings", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSettingService(db, testConfig(t))

		_, err := svc.Set(models.SettingDriverBaseSalary, "1400")
		testutil.AssertNoError(t, err)
		_, err = svc.Set(models.SettingDriverCommissionRate, "0.35")
		testutil.AssertNoError(t, err)

		settings, err := svc.All()
		testutil.AssertNoError(t, err)
		if len(settings) != 2 {
			t.Errorf("expected 2 settings, got %d", len(settings))
		}
	})
}
