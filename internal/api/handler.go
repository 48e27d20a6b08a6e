package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kartvizit-service/internal/moneytolia"
	"kartvizit-service/internal/service"
)

// Handler contains HTTP handlers
type Handler struct {
	authService    *service.AuthService
	cardService    *service.CardService
	orderService   *service.OrderService
	paymentService *service.PaymentService
	adminService   *service.AdminService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	authService *service.AuthService,
	cardService *service.CardService,
	orderService *service.OrderService,
	paymentService *service.PaymentService,
	adminService *service.AdminService,
) *Handler {
	return &Handler{
		authService:    authService,
		cardService:    cardService,
		orderService:   orderService,
		paymentService: paymentService,
		adminService:   adminService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", h.register)
		v1.POST("/auth/login", h.login)

		v1.GET("/c/:slug", h.getPublicCard)

		v1.POST("/payment/moneytolia/callback", h.paymentCallback)

		authed := v1.Group("")
		authed.Use(h.authRequired())
		{
			authed.POST("/auth/logout", h.logout)

			authed.GET("/cards", h.listCards)
			authed.POST("/cards", h.createCard)
			authed.PATCH("/cards/:id/flags", h.updateCardFlags)

			authed.GET("/orders", h.listOrders)
			authed.POST("/orders", h.createOrder)
			authed.GET("/orders/:id", h.getOrder)
		}

		admin := v1.Group("/admin")
		admin.Use(h.authRequired(), h.adminRequired())
		{
			admin.GET("/stats", h.adminStats)
			admin.GET("/stats/live", h.adminLiveStats)
			admin.GET("/orders", h.adminListOrders)
			admin.PATCH("/orders", h.adminOverrideOrder)
			admin.POST("/orders/:id/verify-payment", h.adminVerifyPayment)
			admin.GET("/users", h.adminListUsers)
			admin.GET("/cards", h.adminListCards)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := header[len("Bearer "):]
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) listCards(c *gin.Context) {
	user := currentUser(c)
	cards, err := h.cardService.ListCards(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (h *Handler) createCard(c *gin.Context) {
	var req service.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user := currentUser(c)
	card, err := h.cardService.CreateCard(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, card)
}

func (h *Handler) updateCardFlags(c *gin.Context) {
	cardID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID"})
		return
	}

	var req struct {
		IsActive bool `json:"is_active"`
		IsPublic bool `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user := currentUser(c)
	if err := h.cardService.UpdateFlags(c.Request.Context(), user.ID, cardID, req.IsActive, req.IsPublic); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) getPublicCard(c *gin.Context) {
	card, err := h.cardService.GetPublicCard(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// createOrder handles checkout: it creates the order and returns the
// payment redirect URL.
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	req.ClientIP = c.ClientIP()

	user := currentUser(c)
	resp, err := h.orderService.CreateOrder(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) listOrders(c *gin.Context) {
	user := currentUser(c)
	orders, err := h.orderService.ListOrders(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	user := currentUser(c)
	order, err := h.orderService.GetOrder(c.Request.Context(), user.ID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// paymentCallback receives the gateway's asynchronous payment result. Every
// rejection reason maps to the same response body so the endpoint cannot be
// used as a verification oracle.
func (h *Handler) paymentCallback(c *gin.Context) {
	var cb moneytolia.CallbackData
	if err := c.ShouldBindJSON(&cb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid callback"})
		return
	}

	if err := h.paymentService.HandleCallback(c.Request.Context(), cb); err != nil {
		if errors.Is(err, service.ErrCallbackRejected) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid callback"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// respondError maps service errors to HTTP responses
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var gatewayErr *service.GatewayError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})
	case errors.As(err, &gatewayErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": gatewayErr.Msg})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
