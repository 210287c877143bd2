package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs session tokens. *auth.TokenService implements it.
type TokenIssuer interface {
	Issue(email string, userType domain.UserType) (string, error)
}

type AuthService interface {
	// Token exchanges credentials for a session token. An unknown email and a
	// wrong password fail the same way.
	Token(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

func (s *authService) Token(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password cannot be empty", ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAuthenticationFailed
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrAuthenticationFailed
	}

	token, err := s.tokens.Issue(user.Email, user.Type)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
