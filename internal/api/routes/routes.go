package routes

import (
	"example.com/cartonbox/internal/api/handlers"
	"example.com/cartonbox/internal/api/middleware"
	"example.com/cartonbox/internal/auth"
	"example.com/cartonbox/internal/metrics"
	"example.com/cartonbox/internal/search"
	"example.com/cartonbox/internal/services"

	"github.com/gin-gonic/gin"
)

// Services bundles the service layer handed to the router
type Services struct {
	Customers   *services.CustomerService
	Orders      *services.OrderService
	Production  *services.ProductionService
	Fulfillment *services.FulfillmentService
	Dashboard   *services.DashboardService
	Users       *services.UserService
	Search      *search.ElasticClient
	Metrics     *metrics.Metrics
}

// SetupRoutes sets up all the routes for the server
func SetupRoutes(r *gin.Engine, svc Services, issuer *auth.TokenIssuer) {
	// Health check and metrics
	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", handlers.NewMetricsHandler(svc.Metrics).GetMetrics)

	authHandler := handlers.NewAuthHandler(svc.Users)
	customerHandler := handlers.NewCustomerHandler(svc.Customers)
	orderHandler := handlers.NewOrderHandler(svc.Orders)
	productionHandler := handlers.NewProductionHandler(svc.Production)
	deliveryHandler := handlers.NewDeliveryHandler(svc.Fulfillment, svc.Search)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	userHandler := handlers.NewUserHandler(svc.Users)

	api := r.Group("/api/v1")

	// Unauthenticated endpoints
	api.POST("/auth/sign-in", authHandler.SignIn)
	api.POST("/auth/password-reset", authHandler.RequestPasswordReset)
	api.POST("/auth/password-reset/confirm", authHandler.ResetPassword)

	// Everything below requires a valid token
	authed := api.Group("")
	authed.Use(middleware.Authenticate(issuer))

	authed.GET("/auth/me", authHandler.Me)

	customers := authed.Group("/customers")
	customers.GET("", middleware.RequirePermission(auth.PermCustomersView), customerHandler.List)
	customers.GET("/:id", middleware.RequirePermission(auth.PermCustomersView), customerHandler.Get)
	customers.POST("", middleware.RequirePermission(auth.PermCustomersCreate), customerHandler.Create)
	customers.PUT("/:id", middleware.RequirePermission(auth.PermCustomersEdit), customerHandler.Update)
	customers.DELETE("/:id", middleware.RequirePermission(auth.PermCustomersDelete), customerHandler.Delete)

	orders := authed.Group("/purchase-orders")
	orders.GET("", middleware.RequirePermission(auth.PermOrdersView), orderHandler.List)
	orders.GET("/:id", middleware.RequirePermission(auth.PermOrdersView), orderHandler.Get)
	orders.POST("", middleware.RequirePermission(auth.PermOrdersCreate), orderHandler.Create)
	orders.PUT("/:id", middleware.RequirePermission(auth.PermOrdersEdit), orderHandler.Update)
	orders.DELETE("/:id", middleware.RequirePermission(auth.PermOrdersDelete), orderHandler.Delete)
	orders.POST("/:id/document", middleware.RequirePermission(auth.PermOrdersEdit), orderHandler.AttachPDF)

	production := authed.Group("/production")
	production.GET("/items", middleware.RequirePermission(auth.PermProductionView), productionHandler.List)
	production.PATCH("/orders/:poId/items/:itemId", middleware.RequirePermission(auth.PermProductionUpdate), productionHandler.UpdateItem)

	deliveries := authed.Group("/deliveries")
	deliveries.GET("", middleware.RequirePermission(auth.PermDeliveryView), deliveryHandler.List)
	deliveries.GET("/ready-to-ship", middleware.RequirePermission(auth.PermDeliveryView), deliveryHandler.ReadyToShip)
	deliveries.GET("/search", middleware.RequirePermission(auth.PermDeliveryView), deliveryHandler.Search)
	deliveries.GET("/:id", middleware.RequirePermission(auth.PermDeliveryView), deliveryHandler.Get)
	deliveries.POST("", middleware.RequirePermission(auth.PermDeliveryCreate), deliveryHandler.Create)
	deliveries.DELETE("/:id", middleware.RequirePermission(auth.PermDeliveryDelete), deliveryHandler.Delete)

	authed.GET("/dashboard", middleware.RequirePermission(auth.PermOrdersView), dashboardHandler.Aggregates)

	users := authed.Group("/users")
	users.Use(middleware.RequirePermission(auth.PermUsersManage))
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)
}
