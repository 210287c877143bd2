package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/golang-jwt/jwt/v4"
)

const issuer = "t-watch"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// Claims is the payload of a session token.
type Claims struct {
	Email string          `json:"email"`
	Type  domain.UserType `json:"type"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens. Tokens are always
// signed with the current secret; previous secrets are only accepted when
// verifying, so a rotated secret does not log everybody out.
type TokenService struct {
	secret     []byte
	previous   [][]byte
	expiration time.Duration
	now        func() time.Time
}

func NewTokenService(secret string, expiration time.Duration, previousSecrets ...string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}
	if expiration <= 0 {
		expiration = 30 * 24 * time.Hour
	}
	s := &TokenService{secret: []byte(secret), expiration: expiration, now: time.Now}
	for _, p := range previousSecrets {
		if p != "" {
			s.previous = append(s.previous, []byte(p))
		}
	}
	return s, nil
}

// Issue signs a token for the given account.
func (s *TokenService) Issue(email string, userType domain.UserType) (string, error) {
	now := s.now()
	claims := &Claims{
		Email: email,
		Type:  userType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the claims. It fails with
// ErrTokenExpired or ErrInvalidToken.
func (s *TokenService) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	var lastErr error
	for _, secret := range append([][]byte{s.secret}, s.previous...) {
		claims, err := s.parse(token, secret)
		if err == nil {
			return claims, nil
		}
		if errors.Is(err, ErrTokenExpired) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *TokenService) parse(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	// expiry is checked against our own clock instead of jwt.TimeFunc
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	if claims.Email == "" || claims.Issuer != issuer {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	return claims, nil
}
