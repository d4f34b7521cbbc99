package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"taxigest/internal/cache"
	"taxigest/internal/config"
	"taxigest/internal/database"
	"taxigest/internal/handlers"
	"taxigest/internal/logger"
	"taxigest/internal/middleware"
	"taxigest/internal/services"
	"taxigest/internal/validator"

	_ "taxigest/internal/docs" // Import swagger docs
)

// @title           TaxiGest API
// @version         1.0
// @description     TaxiGest is a record-keeping and payroll application for a taxi business: daily shift records with frozen commission settlement, fixed and variable expenses, driver payrolls, and period financial summaries.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Custom binding validators
	validator.Register()

	// Initialize services. The summary cache is shared between the read side
	// and the write-side services that invalidate it.
	db := dbManager.DB()
	summaryCache := cache.New(appConfig.SummaryCacheTTL)
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	settingService := services.NewSettingService(db, appConfig)
	recordService := services.NewRecordService(db, settingService, summaryCache)
	expenseService := services.NewExpenseService(db, summaryCache)
	payrollService := services.NewPayrollService(db, settingService, summaryCache)
	summaryService := services.NewSummaryService(db, payrollService, settingService, summaryCache)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	recordHandler := handlers.NewRecordHandler(recordService, userService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	payrollHandler := handlers.NewPayrollHandler(payrollService, auditService)
	summaryHandler := handlers.NewSummaryHandler(summaryService)
	settingHandler := handlers.NewSettingHandler(settingService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Daily record routes; drivers are scoped to their own records by the service
	records := protected.Group("/records")
	records.POST("", recordHandler.CreateRecord)
	records.GET("", recordHandler.GetRecords)
	records.GET("/:id", recordHandler.GetRecord)
	records.PUT("/:id", recordHandler.UpdateRecord)
	records.DELETE("/:id", recordHandler.DeleteRecord)
	records.GET("/:id/revisions", recordHandler.GetRecordRevisions)

	// Admin-only surfaces
	admin := protected.Group("/")
	admin.Use(middleware.RequireAdmin())

	expenses := admin.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)
	expenses.POST("/:id/advance", expenseHandler.AdvanceDueDate)

	payrolls := admin.Group("/payrolls")
	payrolls.POST("", payrollHandler.CreatePayroll)
	payrolls.GET("", payrollHandler.GetPayrolls)
	payrolls.GET("/:id", payrollHandler.GetPayroll)
	payrolls.PUT("/:id", payrollHandler.UpdatePayroll)
	payrolls.POST("/:id/pay", payrollHandler.MarkPaid)

	admin.GET("/summary", summaryHandler.GetSummary)

	settings := admin.Group("/settings")
	settings.GET("", settingHandler.GetSettings)
	settings.GET("/:key", settingHandler.GetSetting)
	settings.PUT("/:key", settingHandler.SetSetting)

	log.Infof("Starting TaxiGest backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
