package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orderflow/internal/domain"
	"github.com/vladislavdragonenkov/orderflow/internal/lock/memorylock"
	"github.com/vladislavdragonenkov/orderflow/internal/service/order"
	"github.com/vladislavdragonenkov/orderflow/internal/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger.WithField("component", "test")
}

func newTestRouter(t *testing.T, stock int32) (*gin.Engine, *memory.Store, *memorylock.Manager) {
	t.Helper()

	store := memory.NewStore()
	store.SeedProduct(domain.Product{
		ID:         "product-1",
		Name:       "SSD 1TB",
		Stock:      stock,
		PriceMinor: 250,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	})
	locks := memorylock.NewManager()
	svc := order.NewServiceWithoutMetrics(store, locks, loggerForTests())
	return NewRouter(NewHandler(svc, loggerForTests())), store, locks
}

func doPlaceOrder(router *gin.Engine, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPlaceOrderEndpoint_Success(t *testing.T) {
	router, store, _ := newTestRouter(t, 10)

	rec := doPlaceOrder(router, "user-1", `{"product_id":"product-1","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string        `json:"message"`
		Data    orderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Order placed successfully", resp.Message)
	require.Equal(t, "user-1", resp.Data.UserID)
	require.Equal(t, int32(2), resp.Data.Quantity)
	require.Equal(t, int64(500), resp.Data.TotalMinor)
	require.Equal(t, "completed", resp.Data.Status)

	product, _ := store.Product("product-1")
	require.Equal(t, int32(8), product.Stock)
}

func TestPlaceOrderEndpoint_Unauthorized(t *testing.T) {
	router, _, _ := newTestRouter(t, 10)

	rec := doPlaceOrder(router, "", `{"product_id":"product-1","quantity":2}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceOrderEndpoint_BadBody(t *testing.T) {
	router, _, _ := newTestRouter(t, 10)

	cases := []struct {
		name string
		body string
	}{
		{name: "missing product", body: `{"quantity":2}`},
		{name: "zero quantity", body: `{"product_id":"product-1","quantity":0}`},
		{name: "negative quantity", body: `{"product_id":"product-1","quantity":-1}`},
		{name: "not json", body: `quantity=2`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doPlaceOrder(router, "user-1", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPlaceOrderEndpoint_InsufficientStock(t *testing.T) {
	router, store, _ := newTestRouter(t, 1)

	rec := doPlaceOrder(router, "user-1", `{"product_id":"product-1","quantity":2}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Insufficient stock")

	product, _ := store.Product("product-1")
	require.Equal(t, int32(1), product.Stock)
}

func TestPlaceOrderEndpoint_ProductNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t, 10)

	rec := doPlaceOrder(router, "user-1", `{"product_id":"missing","quantity":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Product not found")
}

func TestPlaceOrderEndpoint_BusyIsRetryable(t *testing.T) {
	router, _, locks := newTestRouter(t, 5)

	foreign, err := locks.Acquire(t.Context(), "product_order:product-1", 10*time.Second)
	require.NoError(t, err)
	defer func() { _ = foreign.Release(t.Context()) }()

	rec := doPlaceOrder(router, "user-1", `{"product_id":"product-1","quantity":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Message   string `json:"message"`
		Retryable bool   `json:"retryable"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Retryable)
	require.Contains(t, resp.Message, "try again")
}
