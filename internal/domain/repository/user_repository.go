package repository

import (
	"context"
	"time"

	"github.com/jhoicas/trek-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// FindByCPFAndBirthDate resuelve el login (CPF + fecha de nacimiento).
	FindByCPFAndBirthDate(ctx context.Context, cpf string, birthDate time.Time) (*entity.User, error)
	// UpdateContact corrige email y celular (lo hace el empleado al firmar).
	UpdateContact(ctx context.Context, id, email, phone string) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error)
}
