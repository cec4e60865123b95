// Package authz holds the ownership checks applied to budget and expense routes.
package authz

import (
	apperrors "budgetcontrol/internal/errors"
	"budgetcontrol/internal/models"
)

// RequireOwner fails unless the resource owner is the caller.
func RequireOwner(ownerID, identityID string) error {
	if ownerID == "" || identityID == "" || ownerID != identityID {
		return apperrors.ErrUnauthorized
	}
	return nil
}

// RequireBudgetMembership fails unless the expense is attached to the budget
// named in the route.
func RequireBudgetMembership(expense *models.Expense, budgetID string) error {
	if expense == nil || expense.BudgetID != budgetID {
		return apperrors.ErrInvalidAction
	}
	return nil
}
