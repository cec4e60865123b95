package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "budgetcontrol/internal/errors"
	"budgetcontrol/internal/logger"
	"budgetcontrol/internal/middleware"
	"budgetcontrol/internal/models"
)

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse is the body of endpoints that only acknowledge an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// getIdentity extracts the authenticated identity from the Gin context.
// Returns ErrUnauthorized if not present.
func getIdentity(c *gin.Context) (*models.Identity, error) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return identity, nil
}

// getBudget returns the budget loaded by the budget access guard.
func getBudget(c *gin.Context) (*models.Budget, error) {
	budget, ok := middleware.CurrentBudget(c)
	if !ok {
		return nil, apperrors.ErrBudgetNotFound
	}
	return budget, nil
}

// getExpense returns the expense loaded by the expense access guard.
func getExpense(c *gin.Context) (*models.Expense, error) {
	expense, ok := middleware.CurrentExpense(c)
	if !ok {
		return nil, apperrors.ErrExpenseNotFound
	}
	return expense, nil
}

func bindError(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message}})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{Error: ErrorDetail{
		Code:    apperrors.ErrInternalServer.Code,
		Message: apperrors.ErrInternalServer.Message,
	}})
}
