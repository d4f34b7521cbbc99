package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taxigest/internal/models"
	"taxigest/internal/settlement"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal, failing the test on bad input.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

// CreateTestAdmin creates an active admin user.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createUser(t, db, models.RoleAdmin)
}

// CreateTestDriver creates an active driver user.
func CreateTestDriver(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createUser(t, db, models.RoleDriver)
}

func createUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestRecord creates a settled daily record for the driver with the
// given totals, under gross mode at 35%.
func CreateTestRecord(t *testing.T, db *gorm.DB, driverID uint, date time.Time, total, fuel, other string) *models.DailyRecord {
	t.Helper()

	rate := Dec(t, "0.35")
	commission, err := settlement.ComputeDailyCommission(settlement.DailyInput{
		TotalAmount:   Dec(t, total),
		FuelExpense:   Dec(t, fuel),
		OtherExpenses: Dec(t, other),
	}, settlement.ModeGross, rate)
	if err != nil {
		t.Fatalf("failed to settle fixture record: %v", err)
	}

	record := &models.DailyRecord{
		Date:             date,
		DriverID:         driverID,
		StartKm:          100,
		EndKm:            300,
		TotalKm:          200,
		CashAmount:       Dec(t, total),
		TotalAmount:      Dec(t, total),
		FuelExpense:      Dec(t, fuel),
		OtherExpenses:    Dec(t, other),
		CommissionMode:   settlement.ModeGross,
		CommissionRate:   rate,
		DriverCommission: commission.DriverCommission,
		NetAmount:        commission.NetAmount,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create test record: %v", err)
	}
	return record
}

// CreateTestExpense creates a one-off expense line with the given base amount.
func CreateTestExpense(t *testing.T, db *gorm.DB, date time.Time, category models.ExpenseCategory, amount string) *models.Expense {
	t.Helper()

	a := Dec(t, amount)
	expense := &models.Expense{
		Date:        date,
		Category:    category,
		Description: fmt.Sprintf("Test expense %d", nextID()),
		Amount:      a,
		TotalAmount: a,
		Status:      models.ExpenseStatusPending,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestRecurringExpense creates a monthly recurring expense line.
func CreateTestRecurringExpense(t *testing.T, db *gorm.DB, date time.Time, category models.ExpenseCategory, amount string) *models.Expense {
	t.Helper()

	a := Dec(t, amount)
	due := date.AddDate(0, 1, 0)
	expense := &models.Expense{
		Date:        date,
		Category:    category,
		Description: fmt.Sprintf("Test recurring expense %d", nextID()),
		Amount:      a,
		TotalAmount: a,
		IsRecurring: true,
		Frequency:   models.FrequencyMonthly,
		NextDueDate: &due,
		Status:      models.ExpenseStatusApproved,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test recurring expense: %v", err)
	}
	return expense
}

// CreateTestPayroll creates a pending payroll for the driver and period.
func CreateTestPayroll(t *testing.T, db *gorm.DB, driverID uint, start, end time.Time, baseSalary string) *models.Payroll {
	t.Helper()

	payroll := &models.Payroll{
		DriverID:    driverID,
		PeriodStart: start,
		PeriodEnd:   end,
		BaseSalary:  Dec(t, baseSalary),
		Status:      models.PayrollStatusPending,
	}
	payroll.NetAmount = payroll.ComputeNet()
	if err := db.Create(payroll).Error; err != nil {
		t.Fatalf("failed to create test payroll: %v", err)
	}
	return payroll
}
