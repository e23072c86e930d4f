package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderflow/internal/domain"
	"github.com/vladislavdragonenkov/orderflow/internal/service/order"
)

// userIDHeader проставляется вышестоящим слоем аутентификации; мы доверяем
// ему без повторной проверки личности.
const userIDHeader = "X-User-Id"

// placeOrderRequest — тело POST /api/v1/orders. Валидация формы запроса
// живёт здесь, на краю; сервис оформления получает уже проверенные значения.
type placeOrderRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int32  `json:"quantity" binding:"required,gt=0"`
}

type orderResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	ProductID  string `json:"product_id"`
	Quantity   int32  `json:"quantity"`
	TotalMinor int64  `json:"total_minor"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// Handler связывает HTTP-край с сервисом оформления заказов.
type Handler struct {
	orders *order.Service
	logger *log.Entry
}

// NewHandler создаёт HTTP-обработчики поверх сервиса заказов.
func NewHandler(orders *order.Service, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "httpapi")
	}
	return &Handler{orders: orders, logger: logger}
}

// NewRouter собирает gin-роутер со всеми маршрутами сервиса.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	api.POST("/orders", h.placeOrder)

	return router
}

func (h *Handler) placeOrder(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "You are not authorized to access this resource"})
		return
	}

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	placed, err := h.orders.PlaceOrder(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order placed successfully",
		"data": orderResponse{
			ID:         placed.ID,
			UserID:     placed.UserID,
			ProductID:  placed.ProductID,
			Quantity:   placed.Quantity,
			TotalMinor: placed.TotalMinor,
			Status:     string(placed.Status),
			CreatedAt:  placed.CreatedAt.Format(time.RFC3339Nano),
		},
	})
}

// writeError переводит ошибки сервиса в HTTP-статусы: бизнес-отказы → 400
// (busy дополнительно помечается как retryable), инфраструктурные сбои → 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Product not found"})
	case errors.Is(err, domain.ErrProductBusy):
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   "This product is currently being processed. Please try again shortly.",
			"retryable": true,
		})
	case errors.Is(err, domain.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient stock available"})
	default:
		h.logger.WithError(err).Error("place order failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}
