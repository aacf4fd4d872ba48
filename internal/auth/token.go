package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/daybook/daybook/internal/model"
)

// Token errors.
var (
	// ErrInvalidToken covers signature, expiry and malformed-token failures.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrMissingClaims indicates the token lacks the subject or user id claim.
	ErrMissingClaims = errors.New("token is missing required claims")
	// ErrNotAdmin indicates the caller does not carry the admin role.
	ErrNotAdmin = errors.New("admin role required")
)

// signingMethod is pinned to HS256. Tokens signed with any other algorithm
// are rejected to prevent algorithm-confusion attacks.
var signingMethod = jwt.SigningMethodHS256

// Claims is the claim set carried by a session token.
// Subject holds the user's email.
type Claims struct {
	jwt.RegisteredClaims
	UserID string     `json:"uid"`
	Role   model.Role `json:"role,omitempty"`
}

// TokenService issues and validates signed session tokens.
// Tokens are stateless: validity is purely cryptographic plus expiry,
// there is no revocation list.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the process-wide signing
// secret and default token lifetime.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue creates a signed token for the user with the given role.
// Expiry is now + the configured TTL.
func (s *TokenService) Issue(user *model.User, role model.Role) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(signingMethod, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: user.ID,
		Role:   role,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string.
// Any signature, algorithm or expiry failure returns ErrInvalidToken.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method != signingMethod {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{signingMethod.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ResolveIdentity derives the calling identity from a validated claim set.
// Both the subject (email) and user id claims are required; role defaults
// to the ordinary user role when absent. Admin checks use this same path.
func ResolveIdentity(claims *Claims) (*model.Identity, error) {
	if claims.Subject == "" || claims.UserID == "" {
		return nil, ErrMissingClaims
	}

	role := claims.Role
	if role == "" {
		role = model.RoleUser
	}

	return &model.Identity{
		ID:    claims.UserID,
		Email: claims.Subject,
		Role:  role,
	}, nil
}

// RequireAdmin resolves the identity and requires the admin role.
func RequireAdmin(claims *Claims) (*model.Identity, error) {
	identity, err := ResolveIdentity(claims)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return identity, nil
}
