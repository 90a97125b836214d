package repository

import (
	"context"

	"pasarkerja/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetUserByRole(ctx context.Context, role string, limit int) []*entity.User
}
