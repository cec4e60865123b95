package middleware

import (
	"github.com/gin-gonic/gin"

	"budgetcontrol/internal/models"
)

// Context keys set by the middleware in this package.
const (
	IdentityKey = "identity"
	UserIDKey   = "userID"
	BudgetKey   = "budget"
	ExpenseKey  = "expense"
)

// CurrentIdentity returns the identity stored by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (*models.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*models.Identity)
	return identity, ok && identity != nil
}

// CurrentBudget returns the budget stored by BudgetAccess.
func CurrentBudget(c *gin.Context) (*models.Budget, bool) {
	v, ok := c.Get(BudgetKey)
	if !ok {
		return nil, false
	}
	budget, ok := v.(*models.Budget)
	return budget, ok && budget != nil
}

// CurrentExpense returns the expense stored by ExpenseAccess.
func CurrentExpense(c *gin.Context) (*models.Expense, bool) {
	v, ok := c.Get(ExpenseKey)
	if !ok {
		return nil, false
	}
	expense, ok := v.(*models.Expense)
	return expense, ok && expense != nil
}
