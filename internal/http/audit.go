package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/computerwizzy/shopify-inventory-sync/internal/audit"
	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
)

// AuditController serves the audit event log.
type AuditController struct {
	audit *audit.Service
}

func NewAuditController(auditService *audit.Service) *AuditController {
	return &AuditController{audit: auditService}
}

// ListEvents returns audit events newest first, paginated. Filters:
// ?type= narrows by event type, ?entity_type=&entity_id= narrows to one
// entity's trail
// GET /api/audit
func (ac *AuditController) ListEvents(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit := parseLimitQuery(c, 50, 200)
	offset := (page - 1) * limit

	entityType := c.Query("entity_type")
	if entityType != "" {
		entityID, err := strconv.ParseUint(c.Query("entity_id"), 10, 32)
		if err != nil {
			respondBadRequest(c, "entity_id must be a positive integer")
			return
		}
		events, err := ac.audit.GetEventsForEntity(entityType, uint(entityID), limit)
		if err != nil {
			respondInternalError(c, err, "audit events")
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events, "total_events": len(events)})
		return
	}

	var (
		events []entities.AuditEvent
		total  int64
	)
	if eventType := c.Query("type"); eventType != "" {
		events, total, err = ac.audit.GetEventsByType(entities.AuditEventType(eventType), limit, offset)
	} else {
		events, total, err = ac.audit.GetEvents(limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "audit events")
		return
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}
	c.JSON(http.StatusOK, gin.H{
		"events":       events,
		"page":         page,
		"limit":        limit,
		"total_pages":  totalPages,
		"total_events": total,
	})
}
