package dto

import "time"

// CreateUserRequest alta de un empleado o miembro del back-office.
// BirthDate acepta YYYY-MM-DD o DD/MM/YYYY.
type CreateUserRequest struct {
	CompanyID string `json:"company_id" validate:"required,uuid"`
	Name      string `json:"name" validate:"required,min=1,max=200"`
	CPF       string `json:"cpf" validate:"required,min=11,max=14"`
	BirthDate string `json:"birth_date" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Role      string `json:"role" validate:"omitempty,oneof=employee admin hr dispatch"`
}

// UserResponse salida de un usuario.
type UserResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	CPF       string    `json:"cpf"`
	BirthDate string    `json:"birth_date"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LoginRequest entrada para login: CPF + fecha de nacimiento.
type LoginRequest struct {
	CPF       string `json:"cpf" validate:"required,min=11,max=14"`
	BirthDate string `json:"birth_date" validate:"required"`
}

// LoginResponse salida con token JWT y datos del usuario.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// MeResponse sesión vigente del usuario autenticado.
type MeResponse struct {
	User       UserResponse        `json:"user"`
	Acceptance *AcceptanceResponse `json:"acceptance,omitempty"`
}
