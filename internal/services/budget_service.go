package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "budgetcontrol/internal/errors"
	"budgetcontrol/internal/models"
	"budgetcontrol/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a new budget owned by userID.
func (s *budgetService) CreateBudget(ctx context.Context, userID, name string, amount float64) (*models.Budget, error) {
	budget := &models.Budget{
		UserID: userID,
		Name:   name,
		Amount: amount,
	}

	if err := s.db.WithContext(ctx).Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget.SetSpent(0)
	return budget, nil
}

// GetUserBudgets returns a paginated list of the user's budgets, newest first,
// with spent and remaining filled in.
func (s *budgetService) GetUserBudgets(
	ctx context.Context,
	userID string,
	page pagination.PageRequest,
) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Budget{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.fillSpent(ctx, budgets); err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget with its expenses.
func (s *budgetService) GetBudgetByID(ctx context.Context, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	err := s.db.WithContext(ctx).
		Preload("Expenses", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", budgetID).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	budget.Summarize()
	return &budget, nil
}

// UpdateBudget updates the provided fields of a budget.
func (s *budgetService) UpdateBudget(ctx context.Context, budgetID string, name *string, amount *float64) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(ctx, budgetID)
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
		if err := s.db.WithContext(ctx).Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetBudgetByID(ctx, budgetID)
}

// DeleteBudget removes a budget together with all of its expenses.
func (s *budgetService) DeleteBudget(ctx context.Context, budgetID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", budgetID).Delete(&models.Budget{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrBudgetNotFound
		}
		if err := tx.Where("budget_id = ?", budgetID).Delete(&models.Expense{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// fillSpent sets Spent and Remaining on each budget from one grouped query.
func (s *budgetService) fillSpent(ctx context.Context, budgets []models.Budget) error {
	if len(budgets) == 0 {
		return nil
	}

	ids := make([]string, len(budgets))
	for i := range budgets {
		ids[i] = budgets[i].ID
	}

	var rows []struct {
		BudgetID string
		Total    float64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("budget_id, COALESCE(SUM(amount), 0) AS total").
		Where("budget_id IN ?", ids).
		Group("budget_id").
		Scan(&rows).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := make(map[string]float64, len(rows))
	for _, r := range rows {
		totals[r.BudgetID] = r.Total
	}
	for i := range budgets {
		budgets[i].SetSpent(totals[budgets[i].ID])
	}
	return nil
}
