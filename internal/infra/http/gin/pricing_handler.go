package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayflow/internal/app/commands"
	"stayflow/internal/app/dto"
	pricingapp "stayflow/internal/app/handlers/pricing"
	"stayflow/internal/app/queries"
)

// PricingHandler serves the host weekly pricing, override and calendar
// endpoints plus the guest-facing merged calendar.
type PricingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type weeklyPricingRequest struct {
	Rates map[string]dto.DayRate `json:"rates" binding:"required"`
}

func (h PricingHandler) SetWeekly(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	var req weeklyPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := pricingapp.SetWeeklyPricingCommand{
		PropertyID: c.Param("id"),
		OwnerID:    principal.ID,
		Rates:      req.Rates,
		RequestID:  idempotencyKeyHeader(c),
	}
	result, err := commands.Dispatch[pricingapp.SetWeeklyPricingCommand, dto.WeeklyPricing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PricingHandler) GetWeekly(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	query := pricingapp.GetWeeklyPricingQuery{
		PropertyID: c.Param("id"),
		OwnerID:    principal.ID,
	}
	result, err := queries.Ask[pricingapp.GetWeeklyPricingQuery, dto.WeeklyPricing](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type overridesRequest struct {
	Overrides []dto.DateOverride `json:"overrides" binding:"required"`
}

func (h PricingHandler) SetOverrides(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	var req overridesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := pricingapp.SetDateOverridesCommand{
		PropertyID: c.Param("id"),
		OwnerID:    principal.ID,
		Overrides:  req.Overrides,
		RequestID:  idempotencyKeyHeader(c),
	}
	result, err := commands.Dispatch[pricingapp.SetDateOverridesCommand, []dto.DateOverride](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overrides": result})
}

type deleteOverridesRequest struct {
	Dates []string `json:"dates" binding:"required"`
}

func (h PricingHandler) DeleteOverrides(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	var req deleteOverridesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := pricingapp.DeleteDateOverridesCommand{
		PropertyID: c.Param("id"),
		OwnerID:    principal.ID,
		Dates:      req.Dates,
		RequestID:  idempotencyKeyHeader(c),
	}
	result, err := commands.Dispatch[pricingapp.DeleteDateOverridesCommand, dto.OverridesDeleted](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PricingHandler) Calendar(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	query := pricingapp.GetPricingCalendarQuery{
		PropertyID: c.Param("id"),
		OwnerID:    principal.ID,
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
	}
	result, err := queries.Ask[pricingapp.GetPricingCalendarQuery, dto.PricingCalendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PricingHandler) PublicCalendar(c *gin.Context) {
	query := pricingapp.GetPublicPricingCalendarQuery{
		PropertyID: c.Param("id"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
	}
	result, err := queries.Ask[pricingapp.GetPublicPricingCalendarQuery, dto.PublicPricingCalendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
