package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"budgetcontrol/internal/auth"
	apperrors "budgetcontrol/internal/errors"
	"budgetcontrol/internal/logger"
	"budgetcontrol/internal/mailer"
	"budgetcontrol/internal/models"
	"budgetcontrol/internal/repository"
)

// maxCodeAttempts bounds how many fresh codes are drawn when the generated
// code is already held by another account.
const maxCodeAttempts = 5

// authService implements the account lifecycle on top of the user store.
type authService struct {
	users    repository.UserRepository
	hasher   auth.Hasher
	sessions *auth.SessionIssuer
	notifier mailer.Notifier
	codeTTL  time.Duration

	now          func() time.Time
	generateCode func() string
	log          *zap.SugaredLogger
}

// NewAuthService creates a new AuthServicer. A zero codeTTL disables expiry
// checks on one-time codes.
func NewAuthService(
	users repository.UserRepository,
	hasher auth.Hasher,
	sessions *auth.SessionIssuer,
	notifier mailer.Notifier,
	codeTTL time.Duration,
) AuthServicer {
	return &authService{
		users:        users,
		hasher:       hasher,
		sessions:     sessions,
		notifier:     notifier,
		codeTTL:      codeTTL,
		now:          time.Now,
		generateCode: auth.GenerateOneTimeCode,
		log:          logger.Named("auth"),
	}
}

// Register creates an unverified account holding a fresh one-time code and
// mails the code. Delivery failures never undo the registration.
func (s *authService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.ErrDuplicateEmail
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, hashFailure(err)
	}

	code, err := s.freshCode(ctx)
	if err != nil {
		return nil, err
	}
	issuedAt := s.now().UTC()

	user := &models.User{
		Name:                 name,
		Email:                email,
		Password:             hash,
		OneTimeToken:         &code,
		OneTimeTokenIssuedAt: &issuedAt,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.notifier.SendVerification(ctx, user.Name, user.Email, code); err != nil {
		s.log.Errorw("verification email failed", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// VerifyAccount consumes a verification code and marks its account verified.
func (s *authService) VerifyAccount(ctx context.Context, code string) (*models.User, error) {
	user, err := s.users.FindByOneTimeToken(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCode
		}
		return nil, err
	}
	if s.expired(user) {
		return nil, apperrors.ErrTokenExpired
	}

	updated, err := s.users.Apply(ctx, user.ID, repository.MarkVerified())
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendVerified(ctx, updated.Name, updated.Email); err != nil {
		s.log.Errorw("verified email failed", "user_id", updated.ID, "error", err)
	}

	return updated, nil
}

// Login checks the credentials of a verified account and issues a session token.
// Unverified accounts are refused before the password is looked at.
func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if !user.Verified {
		return "", nil, apperrors.ErrAccountNotVerified
	}
	if !s.hasher.Verify(password, user.Password) {
		return "", nil, apperrors.ErrIncorrectPassword
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return token, user, nil
}

// ForgotPassword issues a new one-time code to the account and mails it.
func (s *authService) ForgotPassword(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	code, err := s.freshCode(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.Apply(ctx, user.ID, repository.IssueOneTimeToken(code, s.now().UTC()))
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendPasswordReset(ctx, updated.Email, code); err != nil {
		s.log.Errorw("password reset email failed", "user_id", updated.ID, "error", err)
	}

	return updated, nil
}

// ValidateResetToken reports whether code is a live reset code. It does not
// consume the code.
func (s *authService) ValidateResetToken(ctx context.Context, code string) error {
	_, err := s.resetHolder(ctx, code)
	return err
}

// ResetPassword replaces the password of the account holding code and
// consumes the code.
func (s *authService) ResetPassword(ctx context.Context, code, newPassword string) (*models.User, error) {
	user, err := s.resetHolder(ctx, code)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, hashFailure(err)
	}

	return s.users.Apply(ctx, user.ID, repository.ResetPassword(hash))
}

// ValidateCurrentPassword re-reads the account behind identity and checks password against it.
func (s *authService) ValidateCurrentPassword(ctx context.Context, identity *models.Identity, password string) error {
	_, err := s.checkPassword(ctx, identity, password)
	return err
}

// ChangePassword replaces the password of an authenticated account after
// checking the current one.
func (s *authService) ChangePassword(ctx context.Context, identity *models.Identity, current, newPassword string) error {
	user, err := s.checkPassword(ctx, identity, current)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return hashFailure(err)
	}

	_, err = s.users.Apply(ctx, user.ID, repository.ChangePassword(hash))
	return err
}

// GetIdentity returns the sanitized view of an account.
func (s *authService) GetIdentity(ctx context.Context, userID string) (*models.Identity, error) {
	return s.users.FindIdentity(ctx, userID)
}

func (s *authService) checkPassword(ctx context.Context, identity *models.Identity, password string) (*models.User, error) {
	if identity == nil {
		return nil, apperrors.ErrUnauthorized
	}
	user, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, user.Password) {
		return nil, apperrors.WithMessage(apperrors.ErrIncorrectPassword, "Unauthorized, incorrect password")
	}
	return user, nil
}

func (s *authService) resetHolder(ctx context.Context, code string) (*models.User, error) {
	user, err := s.users.FindByOneTimeToken(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}
	if s.expired(user) {
		return nil, apperrors.ErrTokenExpired
	}
	return user, nil
}

func (s *authService) expired(user *models.User) bool {
	return s.codeTTL > 0 && user.TokenExpired(s.now(), s.codeTTL)
}

// freshCode draws codes until one is not held by any account.
func (s *authService) freshCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := s.generateCode()
		_, err := s.users.FindByOneTimeToken(ctx, code)
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", apperrors.Wrap(apperrors.ErrInternalServer, errors.New("could not allocate a unique one-time code"))
}

// hashFailure passes typed hasher errors through and reports anything else as internal.
func hashFailure(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
