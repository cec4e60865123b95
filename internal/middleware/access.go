package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"budgetcontrol/internal/authz"
	apperrors "budgetcontrol/internal/errors"
	"budgetcontrol/internal/models"
	"budgetcontrol/internal/uuid"
)

// BudgetFinder loads a budget by id.
type BudgetFinder interface {
	GetBudgetByID(ctx context.Context, budgetID string) (*models.Budget, error)
}

// ExpenseFinder loads an expense by id.
type ExpenseFinder interface {
	GetExpenseByID(ctx context.Context, expenseID string) (*models.Expense, error)
}

// BudgetAccess loads the :budgetId budget and lets the request through only
// when it belongs to the authenticated identity. Must run after AuthMiddleware.
func BudgetAccess(budgets BudgetFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		budgetID := c.Param("budgetId")
		if !uuid.IsValid(budgetID) {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid budgetId"))
			return
		}

		identity, ok := CurrentIdentity(c)
		if !ok {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		budget, err := budgets.GetBudgetByID(c.Request.Context(), budgetID)
		if err != nil {
			abortWithError(c, err)
			return
		}

		if err := authz.RequireOwner(budget.UserID, identity.ID); err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(BudgetKey, budget)
		c.Next()
	}
}

// ExpenseAccess loads the :expenseId expense and checks it is filed under the
// :budgetId budget. Ownership comes from BudgetAccess, which must run first.
func ExpenseAccess(expenses ExpenseFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		expenseID := c.Param("expenseId")
		if !uuid.IsValid(expenseID) {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid expenseId"))
			return
		}

		budget, ok := CurrentBudget(c)
		if !ok {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		expense, err := expenses.GetExpenseByID(c.Request.Context(), expenseID)
		if err != nil {
			abortWithError(c, err)
			return
		}

		if err := authz.RequireBudgetMembership(expense, budget.ID); err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(ExpenseKey, expense)
		c.Next()
	}
}
