// internal/interfaces/http/handlers/returns.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/returns"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// ReturnsHandler handles return request endpoints
type ReturnsHandler struct {
	returnsService *returns.Service
	userService    *user.Service
}

// NewReturnsHandler creates a new returns handler
func NewReturnsHandler(returnsService *returns.Service, userService *user.Service) *ReturnsHandler {
	return &ReturnsHandler{
		returnsService: returnsService,
		userService:    userService,
	}
}

// CreateReturn handles POST /returns
func (h *ReturnsHandler) CreateReturn(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req returns.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	request, err := h.returnsService.Create(userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Return request created successfully",
		"data":    request,
	})
}

// ListReturns handles GET /returns
func (h *ReturnsHandler) ListReturns(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"message": "Return requests retrieved successfully",
			"data":    []returns.ReturnRequest{},
		})
		return
	}

	requests, err := h.returnsService.ListForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve return requests",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return requests retrieved successfully",
		"data":    requests,
	})
}

// AdminListReturns handles GET /admin/returns
func (h *ReturnsHandler) AdminListReturns(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	requests, err := h.returnsService.ListAll(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve return requests",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return requests retrieved successfully",
		"data":    requests,
	})
}

// ApproveReturn handles PUT /admin/returns/:id/approve
func (h *ReturnsHandler) ApproveReturn(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid return request ID",
		})
		return
	}

	var req struct {
		RefundAmount int64  `json:"refund_amount" binding:"required,min=1"`
		Comment      string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	request, err := h.returnsService.Approve(requestID, req.RefundAmount, req.Comment)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return request approved",
		"data":    request,
	})
}

// RejectReturn handles PUT /admin/returns/:id/reject
func (h *ReturnsHandler) RejectReturn(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid return request ID",
		})
		return
	}

	var req struct {
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	request, err := h.returnsService.Reject(requestID, req.Comment)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return request rejected",
		"data":    request,
	})
}

// RefundReturn handles PUT /admin/returns/:id/refund
func (h *ReturnsHandler) RefundReturn(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	actorID, _ := middleware.GetUserIDFromContext(c)
	requestID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid return request ID",
		})
		return
	}

	request, err := h.returnsService.MarkRefunded(requestID, actorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Return request refunded",
		"data":    request,
	})
}

func (h *ReturnsHandler) requireAdmin(c *gin.Context) bool {
	actorID, _ := middleware.GetUserIDFromContext(c)
	if err := h.userService.RequireAdmin(actorID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Admin access required",
		})
		return false
	}
	return true
}
