package models

// Budget is a spending envelope owned by a single user.
type Budget struct {
	Base
	UserID   string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Name     string    `gorm:"not null" json:"name"`
	Amount   float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Expenses []Expense `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE" json:"expenses,omitempty"`

	// Derived from Expenses, not stored.
	Spent     float64 `gorm:"-" json:"spent"`
	Remaining float64 `gorm:"-" json:"remaining"`
}

// Summarize fills Spent and Remaining from the loaded expenses.
func (b *Budget) Summarize() {
	var spent float64
	for _, e := range b.Expenses {
		spent += e.Amount
	}
	b.SetSpent(spent)
}

// SetSpent records the total spent against the budget and derives Remaining.
func (b *Budget) SetSpent(spent float64) {
	b.Spent = spent
	b.Remaining = b.Amount - spent
}
