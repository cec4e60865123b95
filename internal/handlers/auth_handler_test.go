package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "budgetcontrol/internal/errors"
	"budgetcontrol/internal/middleware"
	"budgetcontrol/internal/models"
	"budgetcontrol/internal/services"
	"budgetcontrol/internal/validator"
)

// --- mock services ---

type mockAuthService struct {
	registerFn                func(name, email, password string) (*models.User, error)
	verifyAccountFn           func(code string) (*models.User, error)
	loginFn                   func(email, password string) (string, *models.User, error)
	forgotPasswordFn          func(email string) (*models.User, error)
	validateResetTokenFn      func(code string) error
	resetPasswordFn           func(code, newPassword string) (*models.User, error)
	validateCurrentPasswordFn func(identity *models.Identity, password string) error
	changePasswordFn          func(identity *models.Identity, current, newPassword string) error
	getIdentityFn             func(userID string) (*models.Identity, error)
}

func (m *mockAuthService) Register(_ context.Context, name, email, password string) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(name, email, password)
	}
	return &models.User{}, nil
}

func (m *mockAuthService) VerifyAccount(_ context.Context, code string) (*models.User, error) {
	if m.verifyAccountFn != nil {
		return m.verifyAccountFn(code)
	}
	return &models.User{}, nil
}

func (m *mockAuthService) Login(_ context.Context, email, password string) (string, *models.User, error) {
	if m.loginFn != nil {
		return m.loginFn(email, password)
	}
	return "token", &models.User{}, nil
}

func (m *mockAuthService) ForgotPassword(_ context.Context, email string) (*models.User, error) {
	if m.forgotPasswordFn != nil {
		return m.forgotPasswordFn(email)
	}
	return &models.User{}, nil
}

func (m *mockAuthService) ValidateResetToken(_ context.Context, code string) error {
	if m.validateResetTokenFn != nil {
		return m.validateResetTokenFn(code)
	}
	return nil
}

func (m *mockAuthService) ResetPassword(_ context.Context, code, newPassword string) (*models.User, error) {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(code, newPassword)
	}
	return &models.User{}, nil
}

func (m *mockAuthService) ValidateCurrentPassword(_ context.Context, identity *models.Identity, password string) error {
	if m.validateCurrentPasswordFn != nil {
		return m.validateCurrentPasswordFn(identity, password)
	}
	return nil
}

func (m *mockAuthService) ChangePassword(_ context.Context, identity *models.Identity, current, newPassword string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(identity, current, newPassword)
	}
	return nil
}

func (m *mockAuthService) GetIdentity(_ context.Context, userID string) (*models.Identity, error) {
	if m.getIdentityFn != nil {
		return m.getIdentityFn(userID)
	}
	return &models.Identity{ID: userID}, nil
}

var _ services.AuthServicer = (*mockAuthService)(nil)

type mockAuditService struct {
	actions []string
}

func (m *mockAuditService) Log(_, action, _, _, _ string, _ map[string]interface{}) {
	m.actions = append(m.actions, action)
}

// --- test helpers ---

const testUserID = "0190a0b2-7c3d-7e4f-8a1b-000000000001"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectIdentity(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityKey, &models.Identity{ID: id, Name: "Ana", Email: "a@x.com"})
		c.Set(middleware.UserIDKey, id)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/confirm-account", handler.ConfirmAccount)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/forgot-password", handler.ForgotPassword)
	r.POST("/auth/validate-token", handler.ValidateToken)
	r.POST("/auth/reset-password/:token", handler.ResetPassword)
	authed := r.Group("/auth", injectIdentity(testUserID))
	authed.GET("/user", handler.GetUser)
	authed.POST("/check-password", handler.CheckPassword)
	authed.PUT("/update-password", handler.UpdatePassword)
	return r
}

// --- tests ---

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		svc := &mockAuthService{
			registerFn: func(name, email, _ string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: testUserID}, Name: name, Email: email}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, audit))

		rec := doRequest(r, "POST", "/auth/register", `{"name":"Ana","email":"a@x.com","password":"Password1"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if msg := parseJSON(t, rec)["message"]; msg != "Registered correctly" {
			t.Errorf("unexpected message %v", msg)
		}
		if len(audit.actions) != 1 || audit.actions[0] != services.ActionRegister {
			t.Errorf("expected REGISTER audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 409 on duplicate email", func(t *testing.T) {
		svc := &mockAuthService{
			registerFn: func(_, _, _ string) (*models.User, error) { return nil, apperrors.ErrDuplicateEmail },
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/register", `{"name":"Ana","email":"a@x.com","password":"Password1"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EMAIL")
	})

	invalid := map[string]string{
		"short name":         `{"name":"An","email":"a@x.com","password":"Password1"}`,
		"bad email":          `{"name":"Ana","email":"not-an-email","password":"Password1"}`,
		"short password":     `{"name":"Ana","email":"a@x.com","password":"Pass1"}`,
		"password no digit":  `{"name":"Ana","email":"a@x.com","password":"Passwordx"}`,
		"password no letter": `{"name":"Ana","email":"a@x.com","password":"123456789"}`,
	}
	for name, body := range invalid {
		t.Run("returns 400 on "+name, func(t *testing.T) {
			called := false
			svc := &mockAuthService{
				registerFn: func(_, _, _ string) (*models.User, error) { called = true; return &models.User{}, nil },
			}
			r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

			rec := doRequest(r, "POST", "/auth/register", body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
			if called {
				t.Error("service must not be called on invalid input")
			}
		})
	}
}

func TestAuthHandler_ConfirmAccount(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockAuthService{
			verifyAccountFn: func(code string) (*models.User, error) {
				if code != "123456" {
					t.Errorf("unexpected code %s", code)
				}
				return &models.User{Base: models.Base{ID: testUserID}, Verified: true}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/confirm-account", `{"token":"123456"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if msg := parseJSON(t, rec)["message"]; msg != "Your account has been verified" {
			t.Errorf("unexpected message %v", msg)
		}
	})

	t.Run("returns 401 on unknown code", func(t *testing.T) {
		svc := &mockAuthService{
			verifyAccountFn: func(string) (*models.User, error) { return nil, apperrors.ErrInvalidCode },
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/confirm-account", `{"token":"999999"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CODE")
	})

	t.Run("returns 400 on malformed code", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/confirm-account", `{"token":"12ab"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns token on success", func(t *testing.T) {
		svc := &mockAuthService{
			loginFn: func(_, _ string) (string, *models.User, error) {
				return "signed.jwt.token", &models.User{Base: models.Base{ID: testUserID}}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"a@x.com","password":"Password1"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if tok := parseJSON(t, rec)["token"]; tok != "signed.jwt.token" {
			t.Errorf("unexpected token %v", tok)
		}
	})

	errs := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown user", apperrors.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"unverified", apperrors.ErrAccountNotVerified, http.StatusForbidden, "ACCOUNT_NOT_VERIFIED"},
		{"wrong password", apperrors.ErrIncorrectPassword, http.StatusUnauthorized, "INCORRECT_PASSWORD"},
	}
	for _, tt := range errs {
		t.Run("returns "+tt.code+" on "+tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				loginFn: func(_, _ string) (string, *models.User, error) { return "", nil, tt.err },
			}
			r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

			rec := doRequest(r, "POST", "/auth/login", `{"email":"a@x.com","password":"Password1"}`)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), tt.code)
		})
	}
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	t.Run("forgot password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/forgot-password", `{"email":"a@x.com"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if msg := parseJSON(t, rec)["message"]; msg != "Please check your email" {
			t.Errorf("unexpected message %v", msg)
		}
	})

	t.Run("validate token rejects unknown code", func(t *testing.T) {
		svc := &mockAuthService{validateResetTokenFn: func(string) error { return apperrors.ErrInvalidToken }}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/validate-token", `{"token":"123456"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TOKEN")
	})

	t.Run("reset uses path code", func(t *testing.T) {
		var gotCode, gotPassword string
		svc := &mockAuthService{
			resetPasswordFn: func(code, newPassword string) (*models.User, error) {
				gotCode, gotPassword = code, newPassword
				return &models.User{Base: models.Base{ID: testUserID}}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/reset-password/123456", `{"newPassword":"NewPassword2"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotCode != "123456" || gotPassword != "NewPassword2" {
			t.Errorf("unexpected args %q %q", gotCode, gotPassword)
		}
	})

	t.Run("reset rejects malformed path code", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/reset-password/abc", `{"newPassword":"NewPassword2"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Authenticated(t *testing.T) {
	t.Run("get user", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/auth/user", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["id"] != testUserID {
			t.Errorf("unexpected user %v", user)
		}
		if _, ok := user["password"]; ok {
			t.Error("password must not be exposed")
		}
	})

	t.Run("check password", func(t *testing.T) {
		svc := &mockAuthService{
			validateCurrentPasswordFn: func(identity *models.Identity, password string) error {
				if password != "Password1" {
					return apperrors.WithMessage(apperrors.ErrIncorrectPassword, "Unauthorized, incorrect password")
				}
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/check-password", `{"password":"Password1"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		rec = doRequest(r, "POST", "/auth/check-password", `{"password":"wrong"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INCORRECT_PASSWORD")
	})

	t.Run("update password", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, audit))

		rec := doRequest(r, "PUT", "/auth/update-password", `{"current_password":"Password1","password":"Changed99"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(audit.actions) != 1 || audit.actions[0] != services.ActionChangePassword {
			t.Errorf("expected CHANGE_PASSWORD audit entry, got %v", audit.actions)
		}

		rec = doRequest(r, "PUT", "/auth/update-password", `{"current_password":"Password1","password":"weak"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing identity", func(t *testing.T) {
		r := gin.New()
		r.GET("/auth/user", NewAuthHandler(&mockAuthService{}, &mockAuditService{}).GetUser)

		rec := doRequest(r, "GET", "/auth/user", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
