package entity

import "time"

// Roles válidos para User.
const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleDispatch = "dispatch"
)

// ValidRole informa si r es uno de los roles soportados.
func ValidRole(r string) bool {
	switch r {
	case RoleEmployee, RoleAdmin, RoleHR, RoleDispatch:
		return true
	}
	return false
}

// User representa un empleado o miembro del back-office (tabla user_profiles).
// El login se hace con CPF + fecha de nacimiento; no hay contraseña.
type User struct {
	ID        string
	CompanyID string
	Name      string
	CPF       string // único, solo dígitos
	BirthDate time.Time
	Email     string
	Phone     string
	Role      string // employee, admin, hr, dispatch
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
