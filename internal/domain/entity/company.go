package entity

import "time"

// Company representa la empresa contratante cuyos empleados acceden al programa de celulares.
// Se crea desde el panel admin y no se modifica una vez que tiene pedidos.
type Company struct {
	ID      string
	Name    string // razão social
	CNPJ    string // solo dígitos
	Address string
	LogoURL string

	ResponsibleName      string
	ResponsibleCPF       string
	ResponsibleBirthDate *time.Time
	ResponsibleEmail     string
	ResponsiblePhone     string

	CreatedAt time.Time
}
