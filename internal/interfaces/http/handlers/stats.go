// internal/interfaces/http/handlers/stats.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/ledger"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// StatsHandler answers admin dashboards from the aggregate ledger. No query
// here touches the base tables.
type StatsHandler struct {
	ledgerService *ledger.Service
	userService   *user.Service
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(ledgerService *ledger.Service, userService *user.Service) *StatsHandler {
	return &StatsHandler{
		ledgerService: ledgerService,
		userService:   userService,
	}
}

// GetOrderStats handles GET /admin/stats/orders
func (h *StatsHandler) GetOrderStats(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	totals, err := h.ledgerService.Totals(ledger.ScopeOrdersByStatus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve order stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order stats retrieved successfully",
		"data":    totals,
	})
}

// GetUserStats handles GET /admin/stats/users
func (h *StatsHandler) GetUserStats(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	totals, err := h.ledgerService.Totals(ledger.ScopeUsersByRole)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve user stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User stats retrieved successfully",
		"data":    totals,
	})
}

// BackfillLedger handles POST /admin/ledger/backfill. Administrative
// recovery operation; safe to re-run.
func (h *StatsHandler) BackfillLedger(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	result, err := h.ledgerService.Backfill()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ledger backfill completed",
		"data":    result,
	})
}

func (h *StatsHandler) requireAdmin(c *gin.Context) bool {
	actorID, _ := middleware.GetUserIDFromContext(c)
	if err := h.userService.RequireAdmin(actorID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Admin access required",
		})
		return false
	}
	return true
}
