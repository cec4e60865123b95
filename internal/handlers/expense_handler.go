package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetcontrol/internal/pagination"
	"budgetcontrol/internal/services"
)

// ExpenseHandler handles expenses nested under a budget.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// CreateExpenseRequest represents the request payload for creating an expense.
type CreateExpenseRequest struct {
	Name   string  `json:"name" binding:"required,min=1,max=100"`
	Amount float64 `json:"amount" binding:"required,gt=0,lte=9999999999.99"`
}

// UpdateExpenseRequest represents the request payload for updating an expense.
type UpdateExpenseRequest struct {
	Name   *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Amount *float64 `json:"amount" binding:"omitempty,gt=0,lte=9999999999.99"`
}

// CreateExpense records an expense against the budget in the path.
// @Summary     Create an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       budgetId path string               true "Budget ID"
// @Param       request  body CreateExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{budgetId}/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	budget, err := getBudget(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), budget.ID, req.Name, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(budget.UserID, services.ActionCreateExpense, "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"budget_id": budget.ID, "name": req.Name, "amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// GetExpenses lists the expenses of the budget in the path.
// @Summary     List expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       budgetId  path  string true  "Budget ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     401 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{budgetId}/expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	budget, err := getBudget(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.expenseService.GetBudgetExpenses(c.Request.Context(), budget.ID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExpense returns a single expense.
// @Summary     Get an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       budgetId  path string true "Budget ID"
// @Param       expenseId path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     401 {object} ErrorResponse "Not the owner"
// @Failure     403 {object} ErrorResponse "Expense belongs to another budget"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /budgets/{budgetId}/expenses/{expenseId} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	expense, err := getExpense(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense updates the name or amount of an expense.
// @Summary     Update an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       budgetId  path string               true "Budget ID"
// @Param       expenseId path string               true "Expense ID"
// @Param       request   body UpdateExpenseRequest true "Fields to update"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Not the owner"
// @Failure     403 {object} ErrorResponse "Expense belongs to another budget"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /budgets/{budgetId}/expenses/{expenseId} [put]
// @Router      /budgets/{budgetId}/expenses/{expenseId} [patch]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	budget, err := getBudget(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	expense, err := getExpense(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	updated, err := h.expenseService.UpdateExpense(c.Request.Context(), expense.ID, req.Name, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(budget.UserID, services.ActionUpdateExpense, "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "amount": req.Amount})

	c.JSON(http.StatusOK, gin.H{"expense": updated})
}

// DeleteExpense deletes an expense.
// @Summary     Delete an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       budgetId  path string true "Budget ID"
// @Param       expenseId path string true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     401 {object} ErrorResponse "Not the owner"
// @Failure     403 {object} ErrorResponse "Expense belongs to another budget"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /budgets/{budgetId}/expenses/{expenseId} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	budget, err := getBudget(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	expense, err := getExpense(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), expense.ID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(budget.UserID, services.ActionDeleteExpense, "expense", expense.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Expense deleted"})
}
