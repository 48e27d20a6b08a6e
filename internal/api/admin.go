package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kartvizit-service/internal/store"
)

func pageFromQuery(c *gin.Context) store.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return store.Page{Number: page, Limit: limit}
}

func pagination(page store.Page, total int64) gin.H {
	pages := total / int64(page.Limit)
	if total%int64(page.Limit) != 0 {
		pages++
	}
	return gin.H{
		"page":  page.Number,
		"limit": page.Limit,
		"total": total,
		"pages": pages,
	}
}

func (h *Handler) adminStats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) adminLiveStats(c *gin.Context) {
	counters, err := h.adminService.LiveStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counters)
}

func (h *Handler) adminListOrders(c *gin.Context) {
	page := pageFromQuery(c)
	status := c.Query("status")
	search := c.Query("search")

	orders, total, err := h.adminService.ListOrders(c.Request.Context(), page, status, search)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":     orders,
		"pagination": pagination(page, total),
	})
}

func (h *Handler) adminOverrideOrder(c *gin.Context) {
	var req struct {
		OrderID int64  `json:"order_id" binding:"required"`
		Status  string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order ID and status are required"})
		return
	}

	admin := currentUser(c)
	order, err := h.adminService.OverrideOrderStatus(c.Request.Context(), admin.ID, req.OrderID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) adminVerifyPayment(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	result, err := h.paymentService.PollStatus(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": result.Success,
		"status":  result.Status,
		"amount":  result.Amount,
		"error":   result.ErrorMsg,
	})
}

func (h *Handler) adminListUsers(c *gin.Context) {
	page := pageFromQuery(c)
	search := c.Query("search")

	users, total, err := h.adminService.ListUsers(c.Request.Context(), page, search)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"pagination": pagination(page, total),
	})
}

func (h *Handler) adminListCards(c *gin.Context) {
	page := pageFromQuery(c)
	search := c.Query("search")

	var isActive *bool
	if val := c.Query("is_active"); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err == nil {
			isActive = &parsed
		}
	}

	cards, total, err := h.adminService.ListCards(c.Request.Context(), page, search, isActive)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cards":      cards,
		"pagination": pagination(page, total),
	})
}
