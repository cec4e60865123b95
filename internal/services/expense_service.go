package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "budgetcontrol/internal/errors"
	"budgetcontrol/internal/models"
	"budgetcontrol/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// CreateExpense records an expense against a budget.
func (s *expenseService) CreateExpense(ctx context.Context, budgetID, name string, amount float64) (*models.Expense, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Budget{}).Where("id = ?", budgetID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrBudgetNotFound
	}

	expense := &models.Expense{
		BudgetID: budgetID,
		Name:     name,
		Amount:   amount,
	}
	if err := s.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// GetBudgetExpenses returns a paginated list of a budget's expenses in the
// order they were recorded.
func (s *expenseService) GetBudgetExpenses(
	ctx context.Context,
	budgetID string,
	page pagination.PageRequest,
) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Expense{}).Where("budget_id = ?", budgetID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Order("created_at ASC").Scopes(pagination.Paginate(page)).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetExpenseByID returns an expense by ID.
func (s *expenseService) GetExpenseByID(ctx context.Context, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.WithContext(ctx).Where("id = ?", expenseID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense updates the provided fields of an expense.
func (s *expenseService) UpdateExpense(ctx context.Context, expenseID string, name *string, amount *float64) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		updates["name"] = *name
	}
	if amount != nil {
		updates["amount"] = *amount
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(expense).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetExpenseByID(ctx, expenseID)
}

// DeleteExpense removes an expense.
func (s *expenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	res := s.db.WithContext(ctx).Where("id = ?", expenseID).Delete(&models.Expense{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}
