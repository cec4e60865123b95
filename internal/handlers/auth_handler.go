package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetcontrol/internal/services"
)

// AuthHandler handles account lifecycle requests.
type AuthHandler struct {
	authService  services.AuthServicer
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.AuthServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{authService: authService, auditService: auditService}
}

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,password_strength,max=72"`
}

// CodeRequest carries a one-time code from an email.
type CodeRequest struct {
	Token string `json:"token" uri:"token" binding:"required,otp_code"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest represents the forgot-password request payload.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest represents the reset-password request payload.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,password_strength,max=72"`
}

// CheckPasswordRequest represents the check-password request payload.
type CheckPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// UpdatePasswordRequest represents the update-password request payload.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	Password        string `json:"password" binding:"required,password_strength,max=72"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// Register handles account registration.
// @Summary     Register an account
// @Description Create an unverified account and email a 6-digit confirmation code
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "Registration data"
// @Success     201 {object} MessageResponse "Registered correctly"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.ActionRegister, "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusCreated, MessageResponse{Message: "Registered correctly"})
}

// ConfirmAccount handles account verification.
// @Summary     Confirm an account
// @Description Verify an account with the code from the confirmation email
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body CodeRequest true "Confirmation code"
// @Success     201 {object} MessageResponse "Account verified"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid code"
// @Failure     403 {object} ErrorResponse "Code expired"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/confirm-account [post]
func (h *AuthHandler) ConfirmAccount(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.authService.VerifyAccount(c.Request.Context(), req.Token)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.ActionVerifyAccount, "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusCreated, MessageResponse{Message: "Your account has been verified"})
}

// Login handles authentication.
// @Summary     Log in
// @Description Exchange email and password of a verified account for a session token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Credentials"
// @Success     200 {object} TokenResponse "Session token"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Incorrect password"
// @Failure     403 {object} ErrorResponse "Account not verified"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.ActionLogin, "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// ForgotPassword handles password reset requests.
// @Summary     Request a password reset
// @Description Email a 6-digit reset code to the account
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ForgotPasswordRequest true "Account email"
// @Success     200 {object} MessageResponse "Reset code sent"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.ActionForgotPassword, "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Please check your email"})
}

// ValidateToken checks a reset code without consuming it.
// @Summary     Validate a reset code
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body CodeRequest true "Reset code"
// @Success     200 {object} MessageResponse "Token is valid"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Invalid or expired code"
// @Router      /auth/validate-token [post]
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if err := h.authService.ValidateResetToken(c.Request.Context(), req.Token); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Token is valid"})
}

// ResetPassword sets a new password using a reset code.
// @Summary     Reset password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       token   path string               true "Reset code"
// @Param       request body ResetPasswordRequest true "New password"
// @Success     200 {object} MessageResponse "Password modified"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Invalid or expired code"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/reset-password/{token} [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var code CodeRequest
	if err := c.ShouldBindUri(&code); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.authService.ResetPassword(c.Request.Context(), code.Token, req.NewPassword)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.ActionResetPassword, "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Password modified correctly"})
}

// GetUser returns the authenticated identity.
// @Summary     Current user
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Identity "Authenticated user"
// @Failure     403 {object} ErrorResponse "Invalid session"
// @Router      /auth/user [get]
func (h *AuthHandler) GetUser(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": identity})
}

// CheckPassword verifies the authenticated user's current password.
// @Summary     Check current password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CheckPasswordRequest true "Current password"
// @Success     200 {object} MessageResponse "Password is correct"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Incorrect password"
// @Failure     403 {object} ErrorResponse "Invalid session"
// @Router      /auth/check-password [post]
func (h *AuthHandler) CheckPassword(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CheckPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if err := h.authService.ValidateCurrentPassword(c.Request.Context(), identity, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password is correct"})
}

// UpdatePassword changes the authenticated user's password.
// @Summary     Change password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdatePasswordRequest true "Current and new password"
// @Success     200 {object} MessageResponse "Password updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Incorrect password"
// @Failure     403 {object} ErrorResponse "Invalid session"
// @Router      /auth/update-password [put]
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), identity, req.CurrentPassword, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(identity.ID, services.ActionChangePassword, "user", identity.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Password updated correctly"})
}
