package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	availabilityapp "stayflow/internal/app/handlers/availability"

	"stayflow/internal/app/commands"
	"stayflow/internal/app/dto"
	"stayflow/internal/app/queries"
)

// AvailabilityHandler serves host slot management and the guest-facing
// availability range.
type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h AvailabilityHandler) GetRange(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	query := availabilityapp.GetAvailabilityQuery{
		PropertyID: c.Param("id"),
		OwnerID:    principal.ID,
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
	}
	result, err := queries.Ask[availabilityapp.GetAvailabilityQuery, dto.AvailabilityRange](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) PublicRange(c *gin.Context) {
	query := availabilityapp.GetPublicAvailabilityQuery{
		PropertyID: c.Param("id"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
	}
	result, err := queries.Ask[availabilityapp.GetPublicAvailabilityQuery, dto.AvailabilityRange](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type setSlotRequest struct {
	Date   string `json:"date" binding:"required"`
	Status string `json:"status"`
	// Available is the legacy boolean form, honored when status is absent.
	Available *bool  `json:"available"`
	Reason    string `json:"reason"`
}

func (h AvailabilityHandler) SetOne(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	var req setSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	status := req.Status
	if status == "" && req.Available != nil {
		if *req.Available {
			status = "available"
		} else {
			status = "blocked"
		}
	}
	cmd := availabilityapp.SetAvailabilityCommand{
		PropertyID: c.Param("id"),
		OwnerID:    principal.ID,
		Date:       req.Date,
		Status:     status,
		Reason:     req.Reason,
		RequestID:  idempotencyKeyHeader(c),
	}
	result, err := commands.Dispatch[availabilityapp.SetAvailabilityCommand, dto.AvailabilitySlot](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type bulkSlotsRequest struct {
	Updates []setSlotRequest `json:"updates" binding:"required"`
}

func (h AvailabilityHandler) SetMany(c *gin.Context) {
	principal, ok := requireRole(c, "owner")
	if !ok {
		return
	}
	var req bulkSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	updates := make([]availabilityapp.BulkSlotUpdate, 0, len(req.Updates))
	for _, update := range req.Updates {
		updates = append(updates, availabilityapp.BulkSlotUpdate{
			Date:      update.Date,
			Status:    update.Status,
			Available: update.Available,
			Reason:    update.Reason,
		})
	}
	cmd := availabilityapp.SetBulkAvailabilityCommand{
		PropertyID: c.Param("id"),
		OwnerID:    principal.ID,
		Updates:    updates,
		RequestID:  idempotencyKeyHeader(c),
	}
	result, err := commands.Dispatch[availabilityapp.SetBulkAvailabilityCommand, dto.BulkAvailabilityResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
