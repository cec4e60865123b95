package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"budgetcontrol/internal/auth"
	"budgetcontrol/internal/mailer"
	"budgetcontrol/internal/models"
	"budgetcontrol/internal/repository"
	"budgetcontrol/internal/testutil"
)

func newTestAuthService(t *testing.T, db *gorm.DB) (*authService, *mailer.Recorder) {
	t.Helper()

	issuer, err := auth.NewSessionIssuer("test-secret", time.Hour)
	testutil.AssertNoError(t, err)

	rec := mailer.NewRecorder()
	svc := NewAuthService(
		repository.NewUserRepository(db),
		auth.NewBcryptHasher(bcrypt.MinCost),
		issuer,
		rec,
		15*time.Minute,
	).(*authService)
	return svc, rec
}

func TestRegister(t *testing.T) {
	t.Run("creates_unverified_user_with_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, rec := newTestAuthService(t, db)

		user, err := svc.Register(context.Background(), "Ana", "a@x.com", "Password1")
		testutil.AssertNoError(t, err)

		if user.Verified {
			t.Error("expected new user to be unverified")
		}
		if !user.HasPendingToken() {
			t.Fatal("expected a pending code")
		}
		if user.Password == "Password1" {
			t.Error("expected password to be hashed")
		}
		if got := rec.LastCode("a@x.com"); got != *user.OneTimeToken {
			t.Errorf("expected mailed code %s, got %s", *user.OneTimeToken, got)
		}
		if rec.Count(mailer.TemplateVerification) != 1 {
			t.Errorf("expected one verification email, got %d", rec.Count(mailer.TemplateVerification))
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, rec := newTestAuthService(t, db)
		existing := testutil.CreateTestUser(t, db)

		_, err := svc.Register(context.Background(), "Other", existing.Email, "Password1")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")

		var count int64
		db.Model(&models.User{}).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 user, got %d", count)
		}
		if len(rec.Sent()) != 0 {
			t.Error("expected no email to be sent")
		}
	})

	t.Run("notification_failure_keeps_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, rec := newTestAuthService(t, db)
		rec.Err = errors.New("smtp down")

		user, err := svc.Register(context.Background(), "Ana", "a@x.com", "Password1")
		testutil.AssertNoError(t, err)

		var stored models.User
		if err := db.First(&stored, "id = ?", user.ID).Error; err != nil {
			t.Fatalf("expected account to be stored: %v", err)
		}
	})

	t.Run("retries_taken_codes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestAuthService(t, db)
		testutil.CreateUnverifiedUser(t, db, "111111")

		codes := []string{"111111", "222222"}
		svc.generateCode = func() string {
			c := codes[0]
			codes = codes[1:]
			return c
		}

		user, err := svc.Register(context.Background(), "Ana", "a@x.com", "Password1")
		testutil.AssertNoError(t, err)
		if *user.OneTimeToken != "222222" {
			t.Errorf("expected second code, got %s", *user.OneTimeToken)
		}
	})

	t.Run("gives_up_after_max_attempts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestAuthService(t, db)
		testutil.CreateUnverifiedUser(t, db, "111111")
		svc.generateCode = func() string { return "111111" }

		_, err := svc.Register(context.Background(), "Ana", "a@x.com", "Password1")
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")
	})

	t.Run("password_over_72_bytes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, rec := newTestAuthService(t, db)

		_, err := svc.Register(context.Background(), "Ana", "a@x.com", strings.Repeat("é", 40)+"a1")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		var count int64
		db.Model(&models.User{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no user, got %d", count)
		}
		if len(rec.Sent()) != 0 {
			t.Error("expected no email to be sent")
		}
	})
}

func TestVerifyAccount(t *testing.T) {
	t.Run("valid_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, rec := newTestAuthService(t, db)
		user := testutil.CreateUnverifiedUser(t, db, "123456")

		updated, err := svc.VerifyAccount(context.Background(), "123456")
		testutil.AssertNoError(t, err)

		if updated.ID != user.ID || !updated.Verified {
			t.Errorf("expected %s to be verified", user.ID)
		}
		if updated.HasPendingToken() {
			t.Error("expected code to be consumed")
		}
		if rec.Count(mailer.TemplateVerified) != 1 {
			t.Error("expected confirmation email")
		}
	})

	t.Run("unknown_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestAuthService(t, db)

		_, err := svc.VerifyAccount(context.Background(), "999999")
		testutil.AssertAppError(t, err, "INVALID_CODE")
	})

	t.Run("code_cannot_be_reused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestAuthService(t, db)
		testutil.CreateUnverifiedUser(t, db, "123456")

		_, err := svc.VerifyAccount(context.Background(), "123456")
		testutil.AssertNoError(t, err)
		_, err = svc.VerifyAccount(context.Background(), "123456")
		testutil.AssertAppError(t, err, "INVALID_CODE")
	})

	t.Run("expired_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestAuthService(t, db)
		testutil.CreateUnverifiedUser(t, db, "123456")
		svc.now = func() time.Time { return time.Now().Add(time.Hour) }

		_, err := svc.VerifyAccount(context.Background(), "123456")
		testutil.AssertAppError(t, err, "TOKEN_EXPIRED")
	})
}

func TestLogin(t *testing.T) {
	t.Run("valid_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestAuthService(t, db)
		user := testutil.CreateTestUser(t, db)

		token, got, err := svc.Login(context.Background(), user.Email, testutil.TestPassword)
		testutil.AssertNoError(t, err)

		if got.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, got.ID)
		}
		claims, err := svc.sessions.Parse(token)
		testutil.AssertNoError(t, err)
		if claims.UserID != user.ID {
			t.Errorf("expected token for %s, got %s", user.ID, claims.UserID)
		}
	})

	t.Run("unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestAuthService(t, db)

		_, _, err := svc.Login(context.Background(), "nobody@x.com", "Password1")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("unverified_regardless_of_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestAuthService(t, db)
		user := testutil.CreateUnverifiedUser(t, db, "123456")

		for _, password := range []string{testutil.TestPassword, "wrong-pass1"} {
			_, _, err := svc.Login(context.Background(), user.Email, password)
			testutil.AssertAppError(t, err, "ACCOUNT_NOT_VERIFIED")
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestAuthService(t, db)
		user := testutil.CreateTestUser(t, db)

		_, _, err := svc.Login(context.Background(), user.Email, "wrong-pass1")
		testutil.AssertAppError(t, err, "INCORRECT_PASSWORD")
	})
}

func TestPasswordReset(t *testing.T) {
	t.Run("forgot_issues_and_mails_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, rec := newTestAuthService(t, db)
		user := testutil.CreateTestUser(t, db)

		updated, err := svc.ForgotPassword(context.Background(), user.Email)
		testutil.AssertNoError(t, err)

		if !updated.HasPendingToken() {
			t.Fatal("expected a pending code")
		}
		if rec.LastCode(user.Email) != *updated.OneTimeToken {
			t.Error("expected reset email with the stored code")
		}
	})

	t.Run("forgot_unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestAuthService(t, db)

		_, err := svc.ForgotPassword(context.Background(), "nobody@x.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("validate_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestAuthService(t, db)
		testutil.CreateUserWithCode(t, db, "654321", time.Now())

		testutil.AssertNoError(t, svc.ValidateResetToken(context.Background(), "654321"))
		// Validation does not consume the code.
		testutil.AssertNoError(t, svc.ValidateResetToken(context.Background(), "654321"))
		testutil.AssertAppError(t, svc.ValidateResetToken(context.Background(), "000000"), "INVALID_TOKEN")
	})

	t.Run("validate_stale_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestAuthService(t, db)
		testutil.CreateUserWithCode(t, db, "654321", time.Now().Add(-time.Hour))

		testutil.AssertAppError(t, svc.ValidateResetToken(context.Background(), "654321"), "TOKEN_EXPIRED")
	})

	t.Run("reset_replaces_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTestAuthService(t, db)
		user := testutil.CreateUserWithCode(t, db, "654321", time.Now())

		updated, err := svc.ResetPassword(context.Background(), "654321", "NewPassword2")
		testutil.AssertNoError(t, err)
		if updated.HasPendingToken() {
			t.Error("expected code to be consumed")
		}

		_, _, err = svc.Login(context.Background(), user.Email, "NewPassword2")
		testutil.AssertNoError(t, err)
		_, _, err = svc.Login(context.Background(), user.Email, testutil.TestPassword)
		testutil.AssertAppError(t, err, "INCORRECT_PASSWORD")

		_, err = svc.ResetPassword(context.Background(), "654321", "Another3pass")
		testutil.AssertAppError(t, err, "INVALID_TOKEN")
	})
}

func TestCurrentPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc, _ := newTestAuthService(t, db)
	user := testutil.CreateTestUser(t, db)
	ctx := context.Background()

	t.Run("validate", func(t *testing.T) {
		testutil.AssertNoError(t, svc.ValidateCurrentPassword(ctx, user.Identity(), testutil.TestPassword))
		appErr := testutil.AssertAppError(t, svc.ValidateCurrentPassword(ctx, user.Identity(), "nope12345"), "INCORRECT_PASSWORD")
		if appErr.Message != "Unauthorized, incorrect password" {
			t.Errorf("unexpected message %q", appErr.Message)
		}
		testutil.AssertAppError(t, svc.ValidateCurrentPassword(ctx, nil, testutil.TestPassword), "UNAUTHORIZED")
	})

	t.Run("change_requires_current", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.Identity(), "nope12345", "Changed99")
		testutil.AssertAppError(t, err, "INCORRECT_PASSWORD")
	})

	t.Run("change", func(t *testing.T) {
		testutil.AssertNoError(t, svc.ChangePassword(ctx, user.Identity(), testutil.TestPassword, "Changed99"))
		testutil.AssertNoError(t, svc.ValidateCurrentPassword(ctx, user.Identity(), "Changed99"))
	})

	t.Run("identity", func(t *testing.T) {
		identity, err := svc.GetIdentity(ctx, user.ID)
		testutil.AssertNoError(t, err)
		if identity.Email != user.Email {
			t.Errorf("expected %s, got %s", user.Email, identity.Email)
		}
	})
}
