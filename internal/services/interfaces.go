package services

import (
	"time"

	"github.com/shopspring/decimal"

	"taxigest/internal/models"
	"taxigest/internal/pagination"
	"taxigest/internal/settlement"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string, role models.Role) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// RecordInput carries the writable fields of a daily record. Mode and Rate
// are optional; when empty/nil the configured defaults apply and are frozen
// onto the record.
type RecordInput struct {
	Date     time.Time
	DriverID uint
	StartKm  uint
	EndKm    uint

	CashAmount    decimal.Decimal
	CardAmount    decimal.Decimal
	InvoiceAmount decimal.Decimal
	OtherAmount   decimal.Decimal

	FuelExpense   decimal.Decimal
	OtherExpenses decimal.Decimal

	Mode settlement.Mode
	Rate *decimal.Decimal

	Notes      string
	ShiftStart string
	ShiftEnd   string
	BreakStart string
	BreakEnd   string
	ImageURL   string
}

// RecordFilter holds optional filter parameters for listing daily records.
type RecordFilter struct {
	From     *time.Time
	To       *time.Time
	DriverID *uint
}

// RecordServicer defines the contract for daily record business logic.
// The actor is the authenticated user; drivers are restricted to their own
// records, admins are unrestricted.
type RecordServicer interface {
	CreateRecord(actor *models.User, in RecordInput) (*models.DailyRecord, error)
	GetRecords(actor *models.User, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.DailyRecord], error)
	GetRecordByID(actor *models.User, recordID uint) (*models.DailyRecord, error)
	UpdateRecord(actor *models.User, recordID uint, in RecordInput) (*models.DailyRecord, error)
	DeleteRecord(actor *models.User, recordID uint) error
	GetRecordRevisions(actor *models.User, recordID uint) ([]models.RecordRevision, error)
}

// ExpenseInput carries the writable fields of an expense line with the VAT
// split already resolved by the caller.
type ExpenseInput struct {
	Date        time.Time
	Category    models.ExpenseCategory
	Description string
	Amount      decimal.Decimal
	TaxAmount   decimal.Decimal
	IsRecurring bool
	Frequency   models.ExpenseFrequency
	NextDueDate *time.Time
	Status      models.ExpenseStatus
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	From        *time.Time
	To          *time.Time
	Category    *models.ExpenseCategory
	IsRecurring *bool
	Status      *models.ExpenseStatus
}

// ExpenseServicer defines the contract for expense business logic.
type ExpenseServicer interface {
	CreateExpense(in ExpenseInput) (*models.Expense, error)
	// CreateExpenseFromTotal is the standard variable-expense input path: the
	// operator enters the VAT-inclusive total and the service derives the
	// base amount and tax at the fixed 21% rate.
	CreateExpenseFromTotal(in ExpenseInput, totalWithVAT decimal.Decimal) (*models.Expense, error)
	GetExpenses(page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(expenseID uint) (*models.Expense, error)
	UpdateExpense(expenseID uint, in ExpenseInput) (*models.Expense, error)
	DeleteExpense(expenseID uint) error
	// AdvanceDueDate rolls a recurring expense's next due date forward by one
	// frequency interval. Recurrence is seeded rows, not a scheduler; the
	// admin flow calls this explicitly when a due line has been handled.
	AdvanceDueDate(expenseID uint) (*models.Expense, error)
}

// PayrollInput carries the writable fields of a payroll.
type PayrollInput struct {
	DriverID    uint
	PeriodStart time.Time
	PeriodEnd   time.Time

	BaseSalary     decimal.Decimal
	Commissions    decimal.Decimal
	Bonuses        decimal.Decimal
	Deductions     decimal.Decimal
	TaxWithholding decimal.Decimal

	PdfURL string
	Notes  string
}

// PayrollServicer defines the contract for payroll business logic.
type PayrollServicer interface {
	CreatePayroll(in PayrollInput) (*models.Payroll, error)
	GetPayrolls(page pagination.PageRequest, driverID *uint, status *models.PayrollStatus) (*pagination.PageResponse[models.Payroll], error)
	GetPayrollByID(payrollID uint) (*models.Payroll, error)
	UpdatePayroll(payrollID uint, in PayrollInput) (*models.Payroll, error)
	MarkPaid(payrollID uint, paymentDate time.Time) (*models.Payroll, error)
	// ResolveBaseSalary returns the base salary of a finalized payroll
	// covering the period, or the configured default when none exists.
	ResolveBaseSalary(driverID uint, periodStart, periodEnd time.Time) (decimal.Decimal, error)
}

// PeriodSummary is the API-facing settlement of a period: the financial
// summary rounded to cents plus its margin classification.
type PeriodSummary struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	DriverID *uint     `json:"driver_id,omitempty"`

	Summary settlement.FinancialSummary     `json:"summary"`
	Margin  settlement.MarginClassification `json:"margin"`
}

// SummaryServicer defines the contract for period settlement summaries.
type SummaryServicer interface {
	GetFinancialSummary(from, to time.Time, driverID *uint) (*PeriodSummary, error)
}

// SettingServicer defines the contract for the key/value configuration store.
// Known keys fall back to env-config defaults when no row exists.
type SettingServicer interface {
	Get(key string) (string, error)
	Set(key, value string) (*models.Setting, error)
	All() ([]models.Setting, error)
	DriverBaseSalary() decimal.Decimal
	DriverCommissionRate() decimal.Decimal
	DefaultCommissionMode() settlement.Mode
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
