// Package server assembles the HTTP router from its collaborators.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"budgetcontrol/internal/auth"
	_ "budgetcontrol/internal/docs" // Import swagger docs
	"budgetcontrol/internal/handlers"
	"budgetcontrol/internal/mailer"
	"budgetcontrol/internal/middleware"
	"budgetcontrol/internal/ratelimit"
	"budgetcontrol/internal/repository"
	"budgetcontrol/internal/services"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	DB            *gorm.DB
	Issuer        *auth.SessionIssuer
	Hasher        auth.Hasher
	Notifier      mailer.Notifier
	Limiter       ratelimit.Limiter
	CodeTTL       time.Duration
	AllowedOrigin string
}

// NewRouter wires services, handlers and middleware into a gin engine.
func NewRouter(deps Deps) *gin.Engine {
	users := repository.NewUserRepository(deps.DB)

	// Initialize services
	authService := services.NewAuthService(users, deps.Hasher, deps.Issuer, deps.Notifier, deps.CodeTTL)
	budgetService := services.NewBudgetService(deps.DB)
	expenseService := services.NewExpenseService(deps.DB)
	auditService := services.NewAuditService(deps.DB)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(deps.AllowedOrigin))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	session := middleware.AuthMiddleware(deps.Issuer, users)

	// Public account routes
	authRoutes := v1.Group("/auth")
	public := authRoutes.Group("")
	if deps.Limiter != nil {
		public.Use(middleware.RateLimit(deps.Limiter, "auth"))
	}
	public.POST("/register", authHandler.Register)
	public.POST("/confirm-account", authHandler.ConfirmAccount)
	public.POST("/login", authHandler.Login)
	public.POST("/forgot-password", authHandler.ForgotPassword)
	public.POST("/validate-token", authHandler.ValidateToken)
	public.POST("/reset-password/:token", authHandler.ResetPassword)

	// Authenticated account routes
	account := authRoutes.Group("", session)
	account.GET("/user", authHandler.GetUser)
	account.POST("/check-password", authHandler.CheckPassword)
	account.PUT("/update-password", authHandler.UpdatePassword)

	// Budget routes
	budgets := v1.Group("/budgets", session)
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)

	owned := budgets.Group("/:budgetId", middleware.BudgetAccess(budgetService))
	owned.GET("", budgetHandler.GetBudget)
	owned.PUT("", budgetHandler.UpdateBudget)
	owned.PATCH("", budgetHandler.UpdateBudget)
	owned.DELETE("", budgetHandler.DeleteBudget)

	// Expense routes
	expenses := owned.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)

	expense := expenses.Group("/:expenseId", middleware.ExpenseAccess(expenseService))
	expense.GET("", expenseHandler.GetExpense)
	expense.PUT("", expenseHandler.UpdateExpense)
	expense.PATCH("", expenseHandler.UpdateExpense)
	expense.DELETE("", expenseHandler.DeleteExpense)

	return router
}
