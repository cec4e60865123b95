package services

import (
	"context"

	"budgetcontrol/internal/models"
	"budgetcontrol/internal/pagination"
)

// AuthServicer defines the account lifecycle: registration, verification,
// login, password reset and password checks.
type AuthServicer interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	VerifyAccount(ctx context.Context, code string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	ForgotPassword(ctx context.Context, email string) (*models.User, error)
	ValidateResetToken(ctx context.Context, code string) error
	ResetPassword(ctx context.Context, code, newPassword string) (*models.User, error)
	ValidateCurrentPassword(ctx context.Context, identity *models.Identity, password string) error
	ChangePassword(ctx context.Context, identity *models.Identity, current, newPassword string) error
	GetIdentity(ctx context.Context, userID string) (*models.Identity, error)
}

// BudgetServicer defines the contract for budget-related business logic.
// Ownership is enforced by the route guards, so lookups are by id only.
type BudgetServicer interface {
	CreateBudget(ctx context.Context, userID, name string, amount float64) (*models.Budget, error)
	GetUserBudgets(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(ctx context.Context, budgetID string) (*models.Budget, error)
	UpdateBudget(ctx context.Context, budgetID string, name *string, amount *float64) (*models.Budget, error)
	DeleteBudget(ctx context.Context, budgetID string) error
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(ctx context.Context, budgetID, name string, amount float64) (*models.Expense, error)
	GetBudgetExpenses(ctx context.Context, budgetID string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(ctx context.Context, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expenseID string, name *string, amount *float64) (*models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
