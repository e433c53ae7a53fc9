package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayflow/internal/app/commands"
	"stayflow/internal/app/dto"
	rateplanapp "stayflow/internal/app/handlers/rateplan"
	"stayflow/internal/app/queries"
)

// RatePlanHandler serves the host price-ledger endpoints and the guest
// booking-options quote.
type RatePlanHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h RatePlanHandler) ListPrices(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	query := rateplanapp.GetPricesQuery{
		RatePlanID: c.Param("id"),
		OwnerID:    principal.ID,
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
		Limit:      parseInt(c.Query("limit")),
		Offset:     parseInt(c.Query("offset")),
	}
	result, err := queries.Ask[rateplanapp.GetPricesQuery, []dto.Price](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prices": result})
}

type setPriceRequest struct {
	Date   string  `json:"date" binding:"required"`
	Amount float64 `json:"amount"`
}

func (h RatePlanHandler) SetPrice(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	var req setPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := rateplanapp.SetPriceCommand{
		RatePlanID: c.Param("id"),
		OwnerID:    principal.ID,
		Date:       req.Date,
		Amount:     req.Amount,
		RequestID:  idempotencyKeyHeader(c),
	}
	result, err := commands.Dispatch[rateplanapp.SetPriceCommand, dto.Price](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RatePlanHandler) DeletePrice(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	cmd := rateplanapp.DeletePriceCommand{
		RatePlanID: c.Param("id"),
		OwnerID:    principal.ID,
		Date:       c.Param("date"),
		RequestID:  idempotencyKeyHeader(c),
	}
	result, err := commands.Dispatch[rateplanapp.DeletePriceCommand, dto.BulkDeleteResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type bulkPricesRequest struct {
	Prices []setPriceRequest `json:"prices" binding:"required"`
}

func (h RatePlanHandler) BulkSetPrices(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	var req bulkPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	entries := make([]rateplanapp.PriceEntry, 0, len(req.Prices))
	for _, price := range req.Prices {
		entries = append(entries, rateplanapp.PriceEntry{Date: price.Date, Amount: price.Amount})
	}
	cmd := rateplanapp.BulkSetPricesCommand{
		RatePlanID: c.Param("id"),
		OwnerID:    principal.ID,
		Entries:    entries,
		RequestID:  idempotencyKeyHeader(c),
	}
	result, err := commands.Dispatch[rateplanapp.BulkSetPricesCommand, dto.BulkPricesResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RatePlanHandler) BulkDeletePrices(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	cmd := rateplanapp.BulkDeletePricesCommand{
		RatePlanID: c.Param("id"),
		OwnerID:    principal.ID,
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
		RequestID:  idempotencyKeyHeader(c),
	}
	result, err := commands.Dispatch[rateplanapp.BulkDeletePricesCommand, dto.BulkDeleteResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RatePlanHandler) PriceStatistics(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	query := rateplanapp.GetPriceStatisticsQuery{
		RatePlanID: c.Param("id"),
		OwnerID:    principal.ID,
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
	}
	result, err := queries.Ask[rateplanapp.GetPriceStatisticsQuery, dto.PriceStatistics](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RatePlanHandler) PriceGaps(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	query := rateplanapp.GetPriceGapsQuery{
		RatePlanID: c.Param("id"),
		OwnerID:    principal.ID,
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
	}
	result, err := queries.Ask[rateplanapp.GetPriceGapsQuery, dto.PriceGaps](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type copyPricesRequest struct {
	SourceStart string `json:"source_start" binding:"required"`
	SourceEnd   string `json:"source_end" binding:"required"`
	TargetStart string `json:"target_start" binding:"required"`
}

func (h RatePlanHandler) CopyPrices(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	var req copyPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := rateplanapp.CopyPricesCommand{
		RatePlanID:  c.Param("id"),
		OwnerID:     principal.ID,
		SourceStart: req.SourceStart,
		SourceEnd:   req.SourceEnd,
		TargetStart: req.TargetStart,
		RequestID:   idempotencyKeyHeader(c),
	}
	result, err := commands.Dispatch[rateplanapp.CopyPricesCommand, dto.CopyPricesResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RatePlanHandler) ExportPrices(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	cmd := rateplanapp.ExportPricesCommand{
		RatePlanID: c.Param("id"),
		OwnerID:    principal.ID,
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
	}
	result, err := commands.Dispatch[rateplanapp.ExportPricesCommand, dto.PricesExport](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RatePlanHandler) BookingOptions(c *gin.Context) {
	query := rateplanapp.GetBookingOptionsQuery{
		PropertyID:         c.Param("id"),
		CheckIn:            c.Query("check_in"),
		CheckOut:           c.Query("check_out"),
		NumGuests:          parseIntWithDefault(c.Query("guests"), 1),
		IsHalfDay:          parseBool(c.Query("half_day")),
		PreviousRatePlanID: c.Query("rate_plan_id"),
	}
	result, err := queries.Ask[rateplanapp.GetBookingOptionsQuery, dto.BookingOptions](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

func parseIntWithDefault(raw string, fallback int) int {
	value := parseInt(raw)
	if value == 0 {
		return fallback
	}
	return value
}

func parseBool(raw string) bool {
	value, _ := strconv.ParseBool(strings.TrimSpace(raw))
	return value
}
