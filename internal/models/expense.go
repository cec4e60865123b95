package models

// Expense is a single charge recorded against a budget.
type Expense struct {
	Base
	BudgetID string  `gorm:"type:uuid;not null;index" json:"budget_id"`
	Name     string  `gorm:"not null" json:"name"`
	Amount   float64 `gorm:"type:decimal(12,2);not null" json:"amount"`

	Budget *Budget `gorm:"foreignKey:BudgetID" json:"budget,omitempty"`
}
