package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "taxigest/internal/errors"
	"taxigest/internal/services"
)

// SummaryHandler handles period settlement summary requests.
type SummaryHandler struct {
	summaryService services.SummaryServicer
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryService services.SummaryServicer) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// GetSummary handles the retrieval of a period financial summary
// @Summary     Get a financial summary
// @Description Settle a date range into income, commission, payroll reconciliation, expense buckets, net profit, and margin health
// @Tags        summary
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       from      query string true  "Period start (RFC3339 or YYYY-MM-DD)"
// @Param       to        query string true  "Period end (RFC3339 or YYYY-MM-DD)"
// @Param       driver_id query int    false "Restrict to one driver"
// @Success     200 {object} services.PeriodSummary "Period summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from and to are required"))
		return
	}

	from, err := parseFlexibleTime(fromStr)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from format, use RFC3339 or YYYY-MM-DD"))
		return
	}
	to, err := parseFlexibleTime(toStr)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	var driverID *uint
	if v := c.Query("driver_id"); v != "" {
		id, parseErr := strconv.ParseUint(v, 10, 32)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid driver_id"))
			return
		}
		parsed := uint(id)
		driverID = &parsed
	}

	summary, err := h.summaryService.GetFinancialSummary(from, to, driverID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
