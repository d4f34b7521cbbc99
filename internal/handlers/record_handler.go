package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "taxigest/internal/errors"
	"taxigest/internal/pagination"
	"taxigest/internal/services"
	"taxigest/internal/settlement"
)

// RecordHandler handles daily record requests.
type RecordHandler struct {
	recordService services.RecordServicer
	userService   services.UserServicer
	auditService  services.AuditServicer
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(recordService services.RecordServicer, userService services.UserServicer, auditService services.AuditServicer) *RecordHandler {
	return &RecordHandler{recordService: recordService, userService: userService, auditService: auditService}
}

// RecordRequest represents the request payload for creating or updating a
// daily record. Amounts are decimal strings or numbers; commission mode and
// rate are optional and default to the configured values.
type RecordRequest struct {
	Date     string `json:"date" binding:"required"`
	DriverID uint   `json:"driver_id"`
	StartKm  uint   `json:"start_km"`
	EndKm    uint   `json:"end_km"`

	CashAmount    decimal.Decimal `json:"cash_amount"`
	CardAmount    decimal.Decimal `json:"card_amount"`
	InvoiceAmount decimal.Decimal `json:"invoice_amount"`
	OtherAmount   decimal.Decimal `json:"other_amount"`

	FuelExpense   decimal.Decimal `json:"fuel_expense"`
	OtherExpenses decimal.Decimal `json:"other_expenses"`

	CommissionMode string           `json:"commission_mode" binding:"omitempty,commission_mode"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`

	Notes      string `json:"notes" binding:"max=1000"`
	ShiftStart string `json:"shift_start" binding:"omitempty,clock_time"`
	ShiftEnd   string `json:"shift_end" binding:"omitempty,clock_time"`
	BreakStart string `json:"break_start" binding:"omitempty,clock_time"`
	BreakEnd   string `json:"break_end" binding:"omitempty,clock_time"`
	ImageURL   string `json:"image_url" binding:"omitempty,url"`
}

func (r *RecordRequest) toInput() (services.RecordInput, error) {
	date, err := parseFlexibleTime(r.Date)
	if err != nil {
		return services.RecordInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD")
	}
	return services.RecordInput{
		Date:          date,
		DriverID:      r.DriverID,
		StartKm:       r.StartKm,
		EndKm:         r.EndKm,
		CashAmount:    r.CashAmount,
		CardAmount:    r.CardAmount,
		InvoiceAmount: r.InvoiceAmount,
		OtherAmount:   r.OtherAmount,
		FuelExpense:   r.FuelExpense,
		OtherExpenses: r.OtherExpenses,
		Mode:          settlement.Mode(r.CommissionMode),
		Rate:          r.CommissionRate,
		Notes:         r.Notes,
		ShiftStart:    r.ShiftStart,
		ShiftEnd:      r.ShiftEnd,
		BreakStart:    r.BreakStart,
		BreakEnd:      r.BreakEnd,
		ImageURL:      r.ImageURL,
	}, nil
}

// CreateRecord handles the creation of a daily record
// @Summary     Create a daily record
// @Description Create a daily shift record; commission is settled and frozen at creation time
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RecordRequest true "Record details"
// @Success     201 {object} models.DailyRecord "Record created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /records [post]
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	record, err := h.recordService.CreateRecord(actor, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "CREATE_RECORD", "daily_record", record.ID, c.ClientIP(),
		map[string]interface{}{"date": record.Date, "total_amount": record.TotalAmount, "driver_id": record.DriverID})

	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// GetRecords handles the listing of daily records
// @Summary     List daily records
// @Description Get a paginated list of daily records; drivers only see their own
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       from      query string false "Filter by start date (RFC3339 or YYYY-MM-DD)"
// @Param       to        query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Param       driver_id query int    false "Filter by driver (admin only)"
// @Success     200 {object} pagination.PageResponse[models.DailyRecord] "Paginated records"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /records [get]
func (h *RecordHandler) GetRecords(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseRecordFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.recordService.GetRecords(actor, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecord handles the retrieval of a single daily record
// @Summary     Get a daily record
// @Description Get a daily record by ID
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Record ID"
// @Success     200 {object} models.DailyRecord "Record"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /records/{id} [get]
func (h *RecordHandler) GetRecord(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	record, err := h.recordService.GetRecordByID(actor, recordID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": record})
}

// UpdateRecord handles the update of a daily record
// @Summary     Update a daily record
// @Description Re-settle a daily record from new values; the previous derived values are kept as a revision
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int           true "Record ID"
// @Param       request body RecordRequest true "New record details"
// @Success     200 {object} models.DailyRecord "Record updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /records/{id} [put]
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	record, err := h.recordService.UpdateRecord(actor, recordID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "UPDATE_RECORD", "daily_record", record.ID, c.ClientIP(),
		map[string]interface{}{"date": record.Date, "total_amount": record.TotalAmount})

	c.JSON(http.StatusOK, gin.H{"record": record})
}

// DeleteRecord handles the deletion of a daily record
// @Summary     Delete a daily record
// @Description Soft-delete a daily record; its revisions are kept
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Record ID"
// @Success     204 "Record deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /records/{id} [delete]
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recordService.DeleteRecord(actor, recordID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "DELETE_RECORD", "daily_record", recordID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// GetRecordRevisions handles the retrieval of a record's edit history
// @Summary     Get record revisions
// @Description Get the append-only edit history of a daily record, oldest first
// @Tags        records
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Record ID"
// @Success     200 {object} []models.RecordRevision "Revisions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /records/{id}/revisions [get]
func (h *RecordHandler) GetRecordRevisions(c *gin.Context) {
	actor, err := getActor(c, h.userService)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recordID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	revisions, err := h.recordService.GetRecordRevisions(actor, recordID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"revisions": revisions})
}

func parseRecordFilter(c *gin.Context) (services.RecordFilter, error) {
	var filter services.RecordFilter

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

	if v := c.Query("driver_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid driver_id")
		}
		driverID := uint(id)
		filter.DriverID = &driverID
	}

	return filter, nil
}
