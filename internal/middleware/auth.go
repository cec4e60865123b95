package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"budgetcontrol/internal/auth"
	apperrors "budgetcontrol/internal/errors"
	"budgetcontrol/internal/models"
)

// IdentityResolver loads the sanitized identity behind a session.
type IdentityResolver interface {
	FindIdentity(ctx context.Context, id string) (*models.Identity, error)
}

// AuthMiddleware verifies the bearer session token, resolves the account it
// names and stores the sanitized identity in the context.
func AuthMiddleware(issuer *auth.SessionIssuer, identities IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, apperrors.ErrForbidden)
			return
		}

		claims, err := issuer.Parse(token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidSession) {
				abortWithError(c, apperrors.Wrap(apperrors.ErrInvalidSession, err))
				return
			}
			abortWithError(c, err)
			return
		}

		identity, err := identities.FindIdentity(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				abortWithError(c, apperrors.ErrInvalidToken)
				return
			}
			abortWithError(c, err)
			return
		}

		c.Set(IdentityKey, identity)
		c.Set(UserIDKey, identity.ID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
