package repo

import (
	"context"
	"errors"

	"github.com/rogerio-castellano/school-inventory/internal/models"
)

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
}

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrDuplicatedValueUnique = errors.New("unique constraint violation")
)
