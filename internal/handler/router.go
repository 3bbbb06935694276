package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/herbtrace/herbtrace-api/internal/middleware"
	"github.com/herbtrace/herbtrace-api/internal/models"
	"github.com/herbtrace/herbtrace-api/internal/service"
)

// Deps bundles everything the router needs.
type Deps struct {
	Auth         *service.AuthService
	Batches      *service.BatchService
	Verification *service.VerificationService
	Saved        *service.SavedService
	Reviews      *service.ReviewService
	Orders       *service.OrderService
	Users        *service.UserService
	Exports      *service.ExportService
	Metrics      *service.MetricsService
}

// RegisterRoutes mounts all API routes under the given prefix.
func RegisterRoutes(r *gin.Engine, prefix string, deps Deps) {
	authHandler := NewAuthHandler(deps.Auth)
	batchHandler := NewBatchHandler(deps.Batches)
	verifyHandler := NewVerificationHandler(deps.Verification)
	savedHandler := NewSavedHandler(deps.Saved)
	reviewHandler := NewReviewHandler(deps.Reviews)
	orderHandler := NewOrderHandler(deps.Orders)
	userHandler := NewUserHandler(deps.Users)
	exportHandler := NewExportHandler(deps.Exports)
	metricsHandler := NewMetricsHandler(deps.Metrics)

	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(deps.Auth), authHandler.Logout)
		auth.PUT("/password", middleware.JWT(deps.Auth), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(deps.Auth), authHandler.Me)
	}

	// Verification is public; claims, when present, enable history
	// recording for customers.
	api.POST("/verify", middleware.OptionalJWT(deps.Auth), verifyHandler.Verify)
	api.GET("/verify/history", middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleCustomer), verifyHandler.History)

	herbs := api.Group("/herbs")
	{
		herbs.GET("", batchHandler.Browse)
		herbs.GET("/:id", batchHandler.Get)
		herbs.GET("/:id/reviews", reviewHandler.List)
		herbs.POST("/:id/reviews", middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleCustomer), reviewHandler.Submit)
	}

	farmer := api.Group("/farmer", middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleFarmer, models.RoleAdmin))
	{
		farmer.POST("/batches", batchHandler.Create)
		farmer.GET("/batches", batchHandler.ListMine)
		farmer.PATCH("/batches/:id", batchHandler.Update)
		farmer.DELETE("/batches/:id", batchHandler.Delete)
		farmer.POST("/batches/:id/certificate", exportHandler.Certificate)
		farmer.POST("/exports/listings", exportHandler.ListingsCSV)
	}

	customer := api.Group("/customer", middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleCustomer))
	{
		customer.GET("/saved", savedHandler.List)
		customer.GET("/saved/:id", savedHandler.IsSaved)
		customer.POST("/saved/:id", savedHandler.Save)
		customer.DELETE("/saved/:id", savedHandler.Unsave)
		customer.POST("/orders", orderHandler.Checkout)
		customer.GET("/orders", orderHandler.List)
		customer.GET("/orders/:id", orderHandler.Get)
		customer.GET("/profile/stats", userHandler.ProfileStats)
	}

	admin := api.Group("/admin", middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", userHandler.List)
		admin.PUT("/users/:id/active", userHandler.SetActive)
		admin.PUT("/batches/:id/status", batchHandler.SetStatus)
	}

	api.GET("/downloads/:token", exportHandler.Download)
}
