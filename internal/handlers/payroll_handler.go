package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "taxigest/internal/errors"
	"taxigest/internal/models"
	"taxigest/internal/pagination"
	"taxigest/internal/services"
)

// PayrollHandler handles payroll requests. Payrolls are an admin-only surface.
type PayrollHandler struct {
	payrollService services.PayrollServicer
	auditService   services.AuditServicer
}

// NewPayrollHandler creates a new PayrollHandler.
func NewPayrollHandler(payrollService services.PayrollServicer, auditService services.AuditServicer) *PayrollHandler {
	return &PayrollHandler{payrollService: payrollService, auditService: auditService}
}

// PayrollRequest represents the request payload for creating or updating a
// payroll.
type PayrollRequest struct {
	DriverID    uint   `json:"driver_id" binding:"required"`
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`

	BaseSalary     decimal.Decimal `json:"base_salary"`
	Commissions    decimal.Decimal `json:"commissions"`
	Bonuses        decimal.Decimal `json:"bonuses"`
	Deductions     decimal.Decimal `json:"deductions"`
	TaxWithholding decimal.Decimal `json:"tax_withholding"`

	PdfURL string `json:"pdf_url" binding:"omitempty,url"`
	Notes  string `json:"notes" binding:"max=1000"`
}

// MarkPaidRequest represents the request payload for marking a payroll paid.
type MarkPaidRequest struct {
	PaymentDate *string `json:"payment_date"`
}

func (r *PayrollRequest) toInput() (services.PayrollInput, error) {
	start, err := parseFlexibleTime(r.PeriodStart)
	if err != nil {
		return services.PayrollInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid period_start format, use RFC3339 or YYYY-MM-DD")
	}
	end, err := parseFlexibleTime(r.PeriodEnd)
	if err != nil {
		return services.PayrollInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid period_end format, use RFC3339 or YYYY-MM-DD")
	}
	return services.PayrollInput{
		DriverID:       r.DriverID,
		PeriodStart:    start,
		PeriodEnd:      end,
		BaseSalary:     r.BaseSalary,
		Commissions:    r.Commissions,
		Bonuses:        r.Bonuses,
		Deductions:     r.Deductions,
		TaxWithholding: r.TaxWithholding,
		PdfURL:         r.PdfURL,
		Notes:          r.Notes,
	}, nil
}

// CreatePayroll handles the creation of a payroll
// @Summary     Create a payroll
// @Description Create a payroll for a driver and period; periods must not overlap per driver
// @Tags        payrolls
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PayrollRequest true "Payroll details"
// @Success     201 {object} models.Payroll "Payroll created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Period overlap"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payrolls [post]
func (h *PayrollHandler) CreatePayroll(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	payroll, err := h.payrollService.CreatePayroll(input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_PAYROLL", "payroll", payroll.ID, c.ClientIP(),
		map[string]interface{}{"driver_id": payroll.DriverID, "net_amount": payroll.NetAmount})

	c.JSON(http.StatusCreated, gin.H{"payroll": payroll})
}

// GetPayrolls handles the listing of payrolls
// @Summary     List payrolls
// @Description Get a paginated list of payrolls with optional filters
// @Tags        payrolls
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       driver_id query int    false "Filter by driver"
// @Param       status    query string false "Filter by status (pending, paid)"
// @Success     200 {object} pagination.PageResponse[models.Payroll] "Paginated payrolls"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payrolls [get]
func (h *PayrollHandler) GetPayrolls(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var driverID *uint
	if v := c.Query("driver_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid driver_id"))
			return
		}
		parsed := uint(id)
		driverID = &parsed
	}

	var status *models.PayrollStatus
	if v := c.Query("status"); v != "" {
		s := models.PayrollStatus(v)
		switch s {
		case models.PayrollStatusPending, models.PayrollStatusPaid:
			status = &s
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status, must be pending or paid"))
			return
		}
	}

	result, err := h.payrollService.GetPayrolls(page, driverID, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPayroll handles the retrieval of a single payroll
// @Summary     Get a payroll
// @Description Get a payroll by ID
// @Tags        payrolls
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Payroll ID"
// @Success     200 {object} models.Payroll "Payroll"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Payroll not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payrolls/{id} [get]
func (h *PayrollHandler) GetPayroll(c *gin.Context) {
	payrollID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	payroll, err := h.payrollService.GetPayrollByID(payrollID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payroll": payroll})
}

// UpdatePayroll handles the update of a payroll
// @Summary     Update a payroll
// @Description Replace a payroll's amounts; the net is recomputed
// @Tags        payrolls
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int            true "Payroll ID"
// @Param       request body PayrollRequest true "New payroll details"
// @Success     200 {object} models.Payroll "Payroll updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Payroll not found"
// @Failure     409 {object} ErrorResponse "Period overlap"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payrolls/{id} [put]
func (h *PayrollHandler) UpdatePayroll(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payrollID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	payroll, err := h.payrollService.UpdatePayroll(payrollID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_PAYROLL", "payroll", payroll.ID, c.ClientIP(),
		map[string]interface{}{"driver_id": payroll.DriverID, "net_amount": payroll.NetAmount})

	c.JSON(http.StatusOK, gin.H{"payroll": payroll})
}

// MarkPaid handles the pending-to-paid transition of a payroll
// @Summary     Mark a payroll paid
// @Description Transition a pending payroll to paid; defaults the payment date to now
// @Tags        payrolls
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int             true  "Payroll ID"
// @Param       request body MarkPaidRequest false "Payment details"
// @Success     200 {object} models.Payroll "Payroll marked paid"
// @Failure     400 {object} ErrorResponse "Invalid input or already paid"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Payroll not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payrolls/{id}/pay [post]
func (h *PayrollHandler) MarkPaid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payrollID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil && *req.PaymentDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.PaymentDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payment_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		paymentDate = parsed
	}

	payroll, err := h.payrollService.MarkPaid(payrollID, paymentDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "PAY_PAYROLL", "payroll", payroll.ID, c.ClientIP(),
		map[string]interface{}{"payment_date": payroll.PaymentDate})

	c.JSON(http.StatusOK, gin.H{"payroll": payroll})
}
