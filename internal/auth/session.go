package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "budgetcontrol/internal/errors"
)

const (
	// DefaultSessionTTL is the lifetime of a session credential.
	DefaultSessionTTL = 30 * 24 * time.Hour

	issuer = "budgetcontrol-api"
)

// ErrInvalidSession is returned by Parse for forged, malformed or expired credentials.
var ErrInvalidSession = errors.New("invalid session credential")

// SessionClaims represents the claims in the session JWT.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and verifies stateless session credentials.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionIssuer returns an issuer for the given secret. An empty secret is a
// configuration error.
func NewSessionIssuer(secret string, ttl time.Duration) (*SessionIssuer, error) {
	if secret == "" {
		return nil, apperrors.WithMessage(apperrors.ErrConfiguration, "session signing secret is not set")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of issued credentials.
func (s *SessionIssuer) TTL() time.Duration { return s.ttl }

// Issue returns a signed credential for the given user id.
func (s *SessionIssuer) Issue(userID string) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", apperrors.WithMessage(apperrors.ErrConfiguration, "session signing secret is not set")
	}

	now := s.now()
	claims := &SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies the signature and expiry of a credential and returns its claims.
func (s *SessionIssuer) Parse(tokenString string) (*SessionClaims, error) {
	if s == nil || len(s.secret) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrConfiguration, "session signing secret is not set")
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if claims.UserID == "" || claims.UserID != claims.Subject {
		return nil, ErrInvalidSession
	}

	return claims, nil
}
