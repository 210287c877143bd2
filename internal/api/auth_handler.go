package api

import (
	"context"
	"net/http"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves the two operations reachable without a token.
type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
}

func NewAuthHandler(authService service.AuthService, userService service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

type TokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Token(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	token, err := h.authService.Token(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Token: token}, nil
}

func (h *AuthHandler) CreateUser(ctx context.Context, req service.NewUser) (*domain.User, error) {
	return h.userService.CreateUser(ctx, req)
}

func (h *AuthHandler) register(r gin.IRoutes, e endpoint) {
	r.POST("/token", serve(e, false, http.StatusOK, bindJSON[TokenRequest], h.Token))
	r.POST("/users", serve(e, false, http.StatusCreated, bindJSON[service.NewUser], h.CreateUser))
}
