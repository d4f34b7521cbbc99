package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"taxigest/internal/cache"
	apperrors "taxigest/internal/errors"
	"taxigest/internal/models"
	"taxigest/internal/pagination"
)

// expenseService handles expense business logic.
type expenseService struct {
	db           *gorm.DB
	summaryCache *cache.TTLCache
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, summaryCache *cache.TTLCache) ExpenseServicer {
	return &expenseService{db: db, summaryCache: summaryCache}
}

func (s *expenseService) validate(in *ExpenseInput) error {
	if in.Amount.IsNegative() || in.TaxAmount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrNegativeAmount, "amount and tax_amount must not be negative")
	}
	if in.IsRecurring && (in.Frequency == "" || in.NextDueDate == nil) {
		return apperrors.ErrRecurrenceIncomplete
	}
	if !in.IsRecurring {
		in.Frequency = ""
		in.NextDueDate = nil
	}
	if in.Status == "" {
		in.Status = models.ExpenseStatusPending
	}
	return nil
}

// CreateExpense creates an expense line with an explicit amount/tax split.
func (s *expenseService) CreateExpense(in ExpenseInput) (*models.Expense, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		Date:        in.Date,
		Category:    in.Category,
		Description: in.Description,
		Amount:      in.Amount,
		TaxAmount:   in.TaxAmount,
		TotalAmount: in.Amount.Add(in.TaxAmount),
		IsRecurring: in.IsRecurring,
		Frequency:   in.Frequency,
		NextDueDate: in.NextDueDate,
		Status:      in.Status,
	}

	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.summaryCache.InvalidateAll()
	return expense, nil
}

// CreateExpenseFromTotal creates an expense from a VAT-inclusive total,
// deriving the base amount and tax at the fixed 21% rate.
func (s *expenseService) CreateExpenseFromTotal(in ExpenseInput, totalWithVAT decimal.Decimal) (*models.Expense, error) {
	if totalWithVAT.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrNegativeAmount, "total must not be negative")
	}
	in.Amount, in.TaxAmount = models.SplitVAT(totalWithVAT)
	return s.CreateExpense(in)
}

// GetExpenses returns a paginated expense list with optional filters.
func (s *expenseService) GetExpenses(page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{})
	if filter.From != nil {
		base = base.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		base = base.Where("date <= ?", *filter.To)
	}
	if filter.Category != nil {
		base = base.Where("category = ?", *filter.Category)
	}
	if filter.IsRecurring != nil {
		base = base.Where("is_recurring = ?", *filter.IsRecurring)
	}
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Order("date DESC").Scopes(pagination.Paginate(page)).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetExpenseByID returns an expense by ID.
func (s *expenseService) GetExpenseByID(expenseID uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.First(&expense, expenseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense replaces an expense's writable fields, recomputing the total.
func (s *expenseService) UpdateExpense(expenseID uint, in ExpenseInput) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	expense.Date = in.Date
	expense.Category = in.Category
	expense.Description = in.Description
	expense.Amount = in.Amount
	expense.TaxAmount = in.TaxAmount
	expense.TotalAmount = in.Amount.Add(in.TaxAmount)
	expense.IsRecurring = in.IsRecurring
	expense.Frequency = in.Frequency
	expense.NextDueDate = in.NextDueDate
	expense.Status = in.Status

	if err := s.db.Save(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.summaryCache.InvalidateAll()
	return expense, nil
}

// DeleteExpense soft-deletes an expense.
func (s *expenseService) DeleteExpense(expenseID uint) error {
	expense, err := s.GetExpenseByID(expenseID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.summaryCache.InvalidateAll()
	return nil
}

// AdvanceDueDate rolls a recurring expense's next due date forward by one
// frequency interval.
func (s *expenseService) AdvanceDueDate(expenseID uint) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(expenseID)
	if err != nil {
		return nil, err
	}
	if !expense.IsRecurring || expense.NextDueDate == nil {
		return nil, apperrors.ErrNotRecurring
	}

	next := expense.Frequency.NextOccurrence(*expense.NextDueDate)
	if err := s.db.Model(expense).Update("next_due_date", next).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expense.NextDueDate = &next
	return expense, nil
}
