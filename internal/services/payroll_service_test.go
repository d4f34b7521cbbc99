package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"taxigest/internal/cache"
	"taxigest/internal/models"
	"taxigest/internal/pagination"
	"taxigest/internal/testutil"
)

func newPayrollService(t *testing.T, db *gorm.DB) PayrollServicer {
	t.Helper()
	settings := NewSettingService(db, testConfig(t))
	return NewPayrollService(db, settings, cache.New(time.Minute))
}

func march(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
}

func TestCreatePayroll(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPayrollService(t, db)
		driver := testutil.CreateTestDriver(t, db)
		start, end := march(t)

		payroll, err := svc.CreatePayroll(PayrollInput{
			DriverID:       driver.ID,
			PeriodStart:    start,
			PeriodEnd:      end,
			BaseSalary:     testutil.Dec(t, "1400"),
			Commissions:    testutil.Dec(t, "150"),
			Bonuses:        testutil.Dec(t, "50"),
			Deductions:     testutil.Dec(t, "30"),
			TaxWithholding: testutil.Dec(t, "210"),
		})
		testutil.AssertNoError(t, err)

		// 1400 + 150 + 50 - 30 - 210
		testutil.AssertDecimal(t, "1360", payroll.NetAmount, "net_amount")
		if payroll.Status != models.PayrollStatusPending {
			t.Errorf("expected pending status, got %s", payroll.Status)
		}
	})

	t.Run("overlapping_period_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPayrollService(t, db)
		driver := testutil.CreateTestDriver(t, db)
		start, end := march(t)
		testutil.CreateTestPayroll(t, db, driver.ID, start, end, "1400")

		_, err := svc.CreatePayroll(PayrollInput{
			DriverID:    driver.ID,
			PeriodStart: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
			BaseSalary:  testutil.Dec(t, "1400"),
		})
		testutil.AssertAppError(t, err, "PAYROLL_PERIOD_OVERLAP")
	})

	t.Run("other_driver_may_overlap", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPayrollService(t, db)
		driver1 := testutil.CreateTestDriver(t, db)
		driver2 := testutil.CreateTestDriver(t, db)
		start, end := march(t)
		testutil.CreateTestPayroll(t, db, driver1.ID, start, end, "1400")

		_, err := svc.CreatePayroll(PayrollInput{
			DriverID:    driver2.ID,
			PeriodStart: start,
			PeriodEnd:   end,
			BaseSalary:  testutil.Dec(t, "1400"),
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("inverted_period_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPayrollService(t, db)
		driver := testutil.CreateTestDriver(t, db)
		start, end := march(t)

		_, err := svc.CreatePayroll(PayrollInput{
			DriverID:    driver.ID,
			PeriodStart: end,
			PeriodEnd:   start,
			BaseSalary:  testutil.Dec(t, "1400"),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("negative_amount_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPayrollService(t, db)
		driver := testutil.CreateTestDriver(t, db)
		start, end := march(t)

		_, err := svc.CreatePayroll(PayrollInput{
			DriverID:    driver.ID,
			PeriodStart: start,
			PeriodEnd:   end,
			BaseSalary:  testutil.Dec(t, "-100"),
		})
		testutil.AssertAppError(t, err, "NEGATIVE_AMOUNT")
	})
}

func TestMarkPaid(t *testing.T) {
	t.Run("pending_to_paid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPayrollService(t, db)
		driver := testutil.CreateTestDriver(t, db)
		start, end := march(t)
		payroll := testutil.CreateTestPayroll(t, db, driver.ID, start, end, "1400")

		paid := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
		updated, err := svc.MarkPaid(payroll.ID, paid)
		testutil.AssertNoError(t, err)

		if updated.Status != models.PayrollStatusPaid {
			t.Errorf("expected paid status, got %s", updated.Status)
		}
		if updated.PaymentDate == nil || !updated.PaymentDate.Equal(paid) {
			t.Errorf("expected payment date %s, got %v", paid, updated.PaymentDate)
		}
	})

	t.Run("already_paid_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPayrollService(t, db)
		driver := testutil.CreateTestDriver(t, db)
		start, end := march(t)
		payroll := testutil.CreateTestPayroll(t, db, driver.ID, start, end, "1400")

		_, err := svc.MarkPaid(payroll.ID, time.Now())
		testutil.AssertNoError(t, err)
		_, err = svc.MarkPaid(payroll.ID, time.Now())
		testutil.AssertAppError(t, err, "PAYROLL_ALREADY_PAID")
	})
}

func TestGetPayrolls(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newPayrollService(t, db)
	driver1 := testutil.CreateTestDriver(t, db)
	driver2 := testutil.CreateTestDriver(t, db)
	start, end := march(t)

	testutil.CreateTestPayroll(t, db, driver1.ID, start, end, "1400")
	testutil.CreateTestPayroll(t, db, driver2.ID, start, end, "1400")

	result, err := svc.GetPayrolls(pagination.PageRequest{}, &driver1.ID, nil)
	testutil.AssertNoError(t, err)
	if result.TotalItems != 1 {
		t.Errorf("expected 1 payroll for driver1, got %d", result.TotalItems)
	}
}

func TestResolveBaseSalary(t *testing.T) {
	t.Run("from_finalized_payroll", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPayrollService(t, db)
		driver := testutil.CreateTestDriver(t, db)
		start, end := march(t)
		testutil.CreateTestPayroll(t, db, driver.ID, start, end, "1550")

		salary, err := svc.ResolveBaseSalary(driver.ID, start, end)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "1550", salary, "base_salary")
	})

	t.Run("configured_default_when_absent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPayrollService(t, db)
		driver := testutil.CreateTestDriver(t, db)
		start, end := march(t)

		salary, err := svc.ResolveBaseSalary(driver.ID, start, end)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "1400", salary, "base_salary")
	})

	t.Run("stored_setting_overrides_default", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		settings := NewSettingService(db, testConfig(t))
		svc := NewPayrollService(db, settings, cache.New(time.Minute))
		driver := testutil.CreateTestDriver(t, db)
		start, end := march(t)

		_, err := settings.Set(models.SettingDriverBaseSalary, "1500")
		testutil.AssertNoError(t, err)

		salary, err := svc.ResolveBaseSalary(driver.ID, start, end)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "1500", salary, "base_salary")
	})
}
