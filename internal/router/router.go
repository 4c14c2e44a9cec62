package router

import (
	"github.com/gin-gonic/gin"

	"ims/internal/domain"
	"ims/internal/handler"
	"ims/internal/middleware"
	"ims/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	invoiceH *handler.InvoiceHandler,
	dashboardH *handler.DashboardHandler,
	integrationH *handler.IntegrationHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Form-automation ingest, guarded by shared secret instead of JWT
	v1.POST("/integrations/forms", integrationH.Ingest)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	canWrite := middleware.RequireRole(domain.RoleAdmin, domain.RoleAccounts)

	// Invoice routes. Reads are open to any authenticated role; writes
	// need admin or accounts.
	invoices := protected.Group("/invoices")
	invoices.GET("", invoiceH.List)
	invoices.GET("/counts", invoiceH.Counts)
	invoices.GET("/export", invoiceH.Export)
	invoices.GET("/:id", invoiceH.Get)
	invoices.POST("", canWrite, invoiceH.Create)
	invoices.PUT("/:id", canWrite, invoiceH.Update)
	invoices.POST("/:id/recompute", canWrite, invoiceH.Recompute)

	// Portal submission surface: strict validation, small upload ceiling
	portal := protected.Group("/portal")
	portal.POST("/invoices", canWrite, invoiceH.PortalCreate)
	portal.PUT("/invoices/:id", canWrite, invoiceH.PortalUpdate)

	// Dashboard aggregates
	protected.GET("/dashboard", dashboardH.Get)

	return r
}
