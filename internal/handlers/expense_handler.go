package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "taxigest/internal/errors"
	"taxigest/internal/models"
	"taxigest/internal/pagination"
	"taxigest/internal/services"
)

// ExpenseHandler handles expense requests. Expenses are an admin-only surface.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// ExpenseRequest represents the request payload for creating or updating an
// expense. Either total_with_vat is given and the base/tax split is derived
// at 21%, or amount (and optionally tax_amount) is given directly.
type ExpenseRequest struct {
	Date        string `json:"date" binding:"required"`
	Category    string `json:"category" binding:"required,expense_category"`
	Description string `json:"description" binding:"max=500"`

	TotalWithVAT *decimal.Decimal `json:"total_with_vat"`
	Amount       decimal.Decimal  `json:"amount"`
	TaxAmount    decimal.Decimal  `json:"tax_amount"`

	IsRecurring bool    `json:"is_recurring"`
	Frequency   string  `json:"frequency" binding:"omitempty,expense_frequency"`
	NextDueDate *string `json:"next_due_date"`

	Status string `json:"status" binding:"omitempty,expense_status"`
}

func (r *ExpenseRequest) toInput() (services.ExpenseInput, error) {
	date, err := parseFlexibleTime(r.Date)
	if err != nil {
		return services.ExpenseInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD")
	}

	input := services.ExpenseInput{
		Date:        date,
		Category:    models.ExpenseCategory(r.Category),
		Description: r.Description,
		Amount:      r.Amount,
		TaxAmount:   r.TaxAmount,
		IsRecurring: r.IsRecurring,
		Frequency:   models.ExpenseFrequency(r.Frequency),
		Status:      models.ExpenseStatus(r.Status),
	}

	if r.NextDueDate != nil && *r.NextDueDate != "" {
		due, err := parseFlexibleTime(*r.NextDueDate)
		if err != nil {
			return services.ExpenseInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid next_due_date format, use RFC3339 or YYYY-MM-DD")
		}
		input.NextDueDate = &due
	}

	return input, nil
}

// CreateExpense handles the creation of an expense
// @Summary     Create an expense
// @Description Create a fixed or variable expense line; total_with_vat derives the base/tax split at 21%
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	var expense *models.Expense
	if req.TotalWithVAT != nil {
		expense, err = h.expenseService.CreateExpenseFromTotal(input, *req.TotalWithVAT)
	} else {
		expense, err = h.expenseService.CreateExpense(input)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"category": expense.Category, "total_amount": expense.TotalAmount})

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// GetExpenses handles the listing of expenses
// @Summary     List expenses
// @Description Get a paginated list of expenses with optional filters
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page         query int    false "Page number (default 1)"
// @Param       page_size    query int    false "Items per page (default 20, max 100)"
// @Param       from         query string false "Filter by start date (RFC3339 or YYYY-MM-DD)"
// @Param       to           query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Param       category     query string false "Filter by category"
// @Param       is_recurring query bool   false "Filter by recurrence"
// @Param       status       query string false "Filter by status (pending, approved, completed)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseExpenseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.expenseService.GetExpenses(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExpense handles the retrieval of a single expense
// @Summary     Get an expense
// @Description Get an expense by ID
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense handles the update of an expense
// @Summary     Update an expense
// @Description Replace an expense line's fields
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int            true "Expense ID"
// @Param       request body ExpenseRequest true "New expense details"
// @Success     200 {object} models.Expense "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(expenseID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"category": expense.Category, "total_amount": expense.TotalAmount})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense handles the deletion of an expense
// @Summary     Delete an expense
// @Description Soft-delete an expense line
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     204 "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_EXPENSE", "expense", expenseID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// AdvanceDueDate handles rolling a recurring expense's due date forward
// @Summary     Advance a recurring expense
// @Description Roll a recurring expense's next due date forward by one frequency interval
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     200 {object} models.Expense "Expense advanced"
// @Failure     400 {object} ErrorResponse "Invalid input or not recurring"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id}/advance [post]
func (h *ExpenseHandler) AdvanceDueDate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.AdvanceDueDate(expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADVANCE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"next_due_date": expense.NextDueDate})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

func parseExpenseFilter(c *gin.Context) (services.ExpenseFilter, error) {
	var filter services.ExpenseFilter

	if v := c.Query("from"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from format, use RFC3339 or YYYY-MM-DD")
		}
		filter.From = &t
	}

	if v := c.Query("to"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to format, use RFC3339 or YYYY-MM-DD")
		}
		filter.To = &t
	}

	if v := c.Query("category"); v != "" {
		category := models.ExpenseCategory(v)
		filter.Category = &category
	}

	if v := c.Query("is_recurring"); v != "" {
		recurring, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid is_recurring")
		}
		filter.IsRecurring = &recurring
	}

	if v := c.Query("status"); v != "" {
		status := models.ExpenseStatus(v)
		switch status {
		case models.ExpenseStatusPending, models.ExpenseStatusApproved, models.ExpenseStatusCompleted:
			filter.Status = &status
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status, must be pending, approved, or completed")
		}
	}

	return filter, nil
}
