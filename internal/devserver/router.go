package devserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	orderrepo "onlineshop/internal/repository/order"
	productrepo "onlineshop/internal/repository/product"
	supplierrepo "onlineshop/internal/repository/supplier"
	userrepo "onlineshop/internal/repository/user"
)

// Deps carries everything the handlers need.
type Deps struct {
	Users         userrepo.Repository
	Products      productrepo.Repository
	Suppliers     supplierrepo.Repository
	Orders        orderrepo.Repository
	JWTSecret     string
	TokenTTL      time.Duration
	ShippingCents int64
}

// buildRouter wires all routes of the shop API.
func buildRouter(logger *log.Logger, deps Deps, ready gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", ready)

	authed := authRequired(deps)

	auth := router.Group("/auth")
	{
		auth.POST("/register", registerHandler(deps))
		auth.POST("/login", loginHandler(deps))
	}

	router.GET("/products", listProductsHandler(deps))
	router.GET("/products/:id", getProductHandler(deps))
	router.POST("/products", authed, adminOnly(), createProductHandler(deps))
	router.PUT("/products/:id", authed, adminOnly(), updateProductHandler(deps))
	router.DELETE("/products/:id", authed, adminOnly(), deleteProductHandler(deps))

	router.GET("/suppliers", authed, listSuppliersHandler(deps))
	router.POST("/suppliers", authed, addSupplierHandler(deps))

	order := router.Group("/order")
	{
		order.POST("/preview", previewOrderHandler(deps))
		order.POST("/create", authed, createOrderHandler(deps))
		order.GET("/orders", authed, listOrdersHandler(deps))
		order.DELETE("/:id", authed, deleteOrderHandler(deps))
	}

	user := router.Group("/user")
	{
		user.GET("/me", authed, meHandler())
		user.GET("", authed, adminOnly(), listUsersHandler(deps))
	}

	return router
}
