package httpserver

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront-engine/internal/cart"
	"storefront-engine/internal/checkout"
	"storefront-engine/internal/domain"
)

// Deps carries the engine components the facade exposes.
type Deps struct {
	Cart     *cart.Store
	Session  sessionStore
	Checkout *checkout.Orchestrator
	Catalog  catalogClient
	Orders   orderClient
}

type sessionStore interface {
	IsAuthenticated() bool
	CurrentUser() *domain.UserIdentity
	Role() string
	State() domain.SessionState
	Login(ctx context.Context, email, password string) (bool, error)
	LoginOffline(ctx context.Context, email, password string) (bool, error)
	Logout() error
}

type catalogClient interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int) (*domain.Product, error)
}

type orderClient interface {
	ListByCustomer(ctx context.Context, customerID int) ([]domain.Order, error)
}

// buildRouter wires the facade routes the storefront screens call.
func buildRouter(logger *log.Logger, deps Deps, allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")
	{
		api.GET("/products", h.listProducts)

		api.GET("/cart", h.getCart)
		api.POST("/cart/items", h.addCartItem)
		api.DELETE("/cart/items", h.removeCartItem)
		api.PUT("/cart/items/quantity", h.setCartQuantity)
		api.POST("/cart/clear", h.clearCart)
		api.POST("/cart/promo", h.applyPromo)

		api.GET("/session", h.getSession)
		api.POST("/session/login", h.login)
		api.POST("/session/logout", h.logout)

		api.POST("/checkout", h.submitCheckout)
		api.GET("/checkout/status", h.checkoutStatus)
		api.POST("/checkout/reset", h.resetCheckout)

		api.GET("/orders", h.listOrders)
	}

	return router
}
