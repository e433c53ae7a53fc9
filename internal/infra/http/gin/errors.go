package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayflow/internal/domain/shared/fault"
)

// respondError maps fault kinds onto HTTP statuses: unknown entities are
// 404, past-date mutations are 422, every other validation failure is 400,
// anything unclassified is 500.
func respondError(c *gin.Context, err error) {
	switch fault.KindOf(err) {
	case fault.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case fault.KindPastDate:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case fault.KindInvalidInput, fault.KindRangeTooLarge, fault.KindInvalidRange:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func idempotencyKeyHeader(c *gin.Context) string {
	return c.GetHeader("Idempotency-Key")
}
