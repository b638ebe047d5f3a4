package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"merchant-client/internal/domain"
	customersvc "merchant-client/internal/service/customer"
	ordersvc "merchant-client/internal/service/order"
	"merchant-client/pkg/money"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// APIPrefix is where the merchant API is mounted.
const APIPrefix = "/api/1.0"

// Authenticator resolves an API key to a merchant id.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (string, error)
}

type customerService interface {
	Create(ctx context.Context, merchantID string, in customersvc.CreateInput) (*domain.Customer, error)
	Get(ctx context.Context, merchantID, id string) (*domain.Customer, error)
	List(ctx context.Context, merchantID string) ([]domain.Customer, error)
	Update(ctx context.Context, merchantID, id string, in customersvc.UpdateInput) (*domain.Customer, error)
	Delete(ctx context.Context, merchantID, id string) error
}

type orderService interface {
	Create(ctx context.Context, merchantID string, in ordersvc.CreateInput) (*domain.Order, error)
	Get(ctx context.Context, merchantID, id string) (*domain.Order, error)
	List(ctx context.Context, merchantID string, f domain.OrderFilter) ([]domain.Order, error)
	Confirm(ctx context.Context, merchantID, id, paymentMethodID string) (*domain.Order, error)
	Capture(ctx context.Context, merchantID, id string, amount *money.Amount) (*domain.Order, error)
	Cancel(ctx context.Context, merchantID, id string) (*domain.Order, error)
	Refund(ctx context.Context, merchantID, id string, amount *money.Amount, description string) (*domain.Order, error)
}

// Deps carries the services the router dispatches to.
type Deps struct {
	Auth        Authenticator
	CustomerSvc customerService
	OrderSvc    orderService
}

func (d Deps) validate() error {
	switch {
	case d.Auth == nil:
		return errors.New("httpserver: authenticator is required")
	case d.CustomerSvc == nil:
		return errors.New("httpserver: customer service is required")
	case d.OrderSvc == nil:
		return errors.New("httpserver: order service is required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), cors.New(corsConfig(corsOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{logger: logger, customers: deps.CustomerSvc, orders: deps.OrderSvc}

	api := router.Group(APIPrefix, merchantMiddleware(deps.Auth))
	api.GET("/customers", h.listCustomers)
	api.POST("/customers", h.createCustomer)
	api.GET("/customers/:id", h.getCustomer)
	api.PATCH("/customers/:id", h.updateCustomer)
	api.DELETE("/customers/:id", h.deleteCustomer)

	api.GET("/orders", h.listOrders)
	api.POST("/orders", h.createOrder)
	api.GET("/orders/:id", h.getOrder)
	api.POST("/orders/:id/confirm", h.confirmOrder)
	api.POST("/orders/:id/capture", h.captureOrder)
	api.POST("/orders/:id/cancel", h.cancelOrder)
	api.POST("/orders/:id/refund", h.refundOrder)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{ErrorID: "not_found", Message: "no route for " + c.Request.Method + " " + c.Request.URL.Path})
	})

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

type handlers struct {
	logger    *log.Logger
	customers customerService
	orders    orderService
}
