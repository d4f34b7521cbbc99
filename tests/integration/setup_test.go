package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taxigest/internal/cache"
	"taxigest/internal/config"
	"taxigest/internal/handlers"
	"taxigest/internal/logger"
	"taxigest/internal/middleware"
	"taxigest/internal/models"
	"taxigest/internal/services"
	"taxigest/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.DailyRecord{},
		&models.Expense{},
		&models.Payroll{},
		&models.RecordRevision{},
		&models.Setting{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	cfg := &config.Config{
		DriverBaseSalary:     decimal.NewFromInt(1400),
		DriverCommissionRate: decimal.NewFromFloat(0.35),
		CommissionMode:       "gross",
		SummaryCacheTTL:      time.Minute,
	}

	// Services
	summaryCache := cache.New(cfg.SummaryCacheTTL)
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	settingService := services.NewSettingService(db, cfg)
	recordService := services.NewRecordService(db, settingService, summaryCache)
	expenseService := services.NewExpenseService(db, summaryCache)
	payrollService := services.NewPayrollService(db, settingService, summaryCache)
	summaryService := services.NewSummaryService(db, payrollService, settingService, summaryCache)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	recordHandler := handlers.NewRecordHandler(recordService, userService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	payrollHandler := handlers.NewPayrollHandler(payrollService, auditService)
	summaryHandler := handlers.NewSummaryHandler(summaryService)
	settingHandler := handlers.NewSettingHandler(settingService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	records := protected.Group("/records")
	records.POST("", recordHandler.CreateRecord)
	records.GET("", recordHandler.GetRecords)
	records.GET("/:id", recordHandler.GetRecord)
	records.PUT("/:id", recordHandler.UpdateRecord)
	records.DELETE("/:id", recordHandler.DeleteRecord)
	records.GET("/:id/revisions", recordHandler.GetRecordRevisions)

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

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user with the given role and returns the
// access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password, role string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User","role":%q}`, email, password, role)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}
