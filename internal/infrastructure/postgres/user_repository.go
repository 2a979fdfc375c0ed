package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL (tabla user_profiles).
type UserRepo struct {
	db Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(db Querier) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, COALESCE(company_id::text, ''), name, cpf, birth_date, email, phone, role, active, created_at, updated_at`

// Create persiste un nuevo usuario. domain.ErrDuplicate si el CPF ya existe.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO user_profiles (id, company_id, name, cpf, birth_date, email, phone, role, active, created_at, updated_at)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		u.ID, u.CompanyID, u.Name, u.CPF, u.BirthDate, u.Email, u.Phone, u.Role, u.Active,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_profiles WHERE id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// FindByCPFAndBirthDate resuelve el login. La fecha se compara como DATE.
func (r *UserRepo) FindByCPFAndBirthDate(ctx context.Context, cpf string, birthDate time.Time) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_profiles WHERE cpf = $1 AND birth_date = $2::date`
	u, err := scanUser(r.db.QueryRow(ctx, query, cpf, birthDate.Format("2006-01-02")))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by CPF: %w", err)
	}
	return u, nil
}

// UpdateContact corrige email y celular del usuario.
func (r *UserRepo) UpdateContact(ctx context.Context, id, email, phone string) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE user_profiles SET email = $2, phone = $3, updated_at = now() WHERE id = $1`,
		id, email, phone)
	if err != nil {
		return fmt.Errorf("update user contact: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListByCompany lista usuarios; companyID vacío lista todos.
func (r *UserRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	query := `
		SELECT ` + userColumns + ` FROM user_profiles
		WHERE ($1 = '' OR company_id::text = $1)
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.CompanyID, &u.Name, &u.CPF, &u.BirthDate, &u.Email, &u.Phone, &u.Role, &u.Active,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
