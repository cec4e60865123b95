package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"budgetcontrol/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "Password1"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a verified user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a verified user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	return createUser(t, db, email, true, nil)
}

// CreateUnverifiedUser creates an unverified user holding the given pending code.
func CreateUnverifiedUser(t *testing.T, db *gorm.DB, code string) *models.User {
	t.Helper()
	email := fmt.Sprintf("pending%d@test.com", nextID())
	return createUser(t, db, email, false, &code)
}

// CreateUserWithCode creates a verified user holding a pending reset code
// issued at the given time.
func CreateUserWithCode(t *testing.T, db *gorm.DB, code string, issuedAt time.Time) *models.User {
	t.Helper()
	email := fmt.Sprintf("reset%d@test.com", nextID())
	user := createUser(t, db, email, true, &code)
	if err := db.Model(user).Update("one_time_token_issued_at", issuedAt).Error; err != nil {
		t.Fatalf("failed to backdate token: %v", err)
	}
	user.OneTimeTokenIssuedAt = &issuedAt
	return user
}

func createUser(t *testing.T, db *gorm.DB, email string, verified bool, code *string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     fmt.Sprintf("Test User %d", nextID()),
		Email:    email,
		Password: string(hash),
		Verified: verified,
	}
	if code != nil {
		now := time.Now()
		user.OneTimeToken = code
		user.OneTimeTokenIssuedAt = &now
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBudget creates a budget of 100.00 owned by the given user.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID: userID,
		Name:   fmt.Sprintf("Test Budget %d", nextID()),
		Amount: 100,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestExpense creates an expense of the given amount under a budget.
func CreateTestExpense(t *testing.T, db *gorm.DB, budgetID string, amount float64) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		BudgetID: budgetID,
		Name:     fmt.Sprintf("Test Expense %d", nextID()),
		Amount:   amount,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
