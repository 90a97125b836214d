package handler

import (
	"github.com/labstack/echo/v4"

	"pasarkerja/internal/domain/repository"
	"pasarkerja/internal/infrastructure/firebase"
	"pasarkerja/pkg/errors"
	"pasarkerja/pkg/response"
)

type DevTokenHandler struct {
	firebaseAuth *firebase.FirebaseAuthClient
	userRepo     repository.UserRepository
}

var devTokenHandler *DevTokenHandler

func NewDevTokenHandler(firebaseAuth *firebase.FirebaseAuthClient, userRepo repository.UserRepository) *DevTokenHandler {
	return &DevTokenHandler{
		firebaseAuth: firebaseAuth,
		userRepo:     userRepo,
	}
}

func SetupDevTokenHandler(firebaseAuth *firebase.FirebaseAuthClient, userRepo repository.UserRepository) {
	devTokenHandler = NewDevTokenHandler(firebaseAuth, userRepo)
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

// GenerateUserToken issues a long-lived token for the first regular user,
// for manual API and WebSocket testing.
func (h *DevTokenHandler) GenerateUserToken(c echo.Context) error {
	query := h.userRepo.GetUserByRole(c.Request().Context(), "user", 1)
	if len(query) == 0 {
		return response.Error(c, errors.NotFound("User", nil))
	}

	token, err := h.firebaseAuth.GenerateLongLivedToken(c.Request().Context(), query[0].ID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       query[0].ID,
			"email":    query[0].Email,
			"username": query[0].Username,
			"role":     query[0].Role,
		},
	})
}

// GenerateSellerToken issues a long-lived token for the first seller, so a
// buyer/seller conversation can be exercised end to end.
func (h *DevTokenHandler) GenerateSellerToken(c echo.Context) error {
	query := h.userRepo.GetUserByRole(c.Request().Context(), "seller", 1)
	if len(query) == 0 {
		return response.Error(c, errors.NotFound("Seller", nil))
	}

	token, err := h.firebaseAuth.GenerateLongLivedToken(c.Request().Context(), query[0].ID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       query[0].ID,
			"email":    query[0].Email,
			"username": query[0].Username,
			"role":     query[0].Role,
		},
	})
}
