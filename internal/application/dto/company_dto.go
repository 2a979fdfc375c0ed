package dto

import "time"

// CreateCompanyRequest entrada para registrar una empresa. Si Name viene vacío se completa
// con la consulta de CNPJ.
type CreateCompanyRequest struct {
	CNPJ                 string `json:"cnpj" validate:"required,min=14,max=18"`
	Name                 string `json:"name" validate:"omitempty,max=200"`
	Address              string `json:"address" validate:"omitempty,max=300"`
	LogoURL              string `json:"logo_url" validate:"omitempty,url"`
	ResponsibleName      string `json:"responsible_name" validate:"omitempty,max=200"`
	ResponsibleCPF       string `json:"responsible_cpf" validate:"omitempty,min=11,max=14"`
	ResponsibleBirthDate string `json:"responsible_birth_date" validate:"omitempty"`
	ResponsibleEmail     string `json:"responsible_email" validate:"omitempty,email"`
	ResponsiblePhone     string `json:"responsible_phone" validate:"omitempty,max=30"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	CNPJ                 string     `json:"cnpj"`
	Address              string     `json:"address"`
	LogoURL              string     `json:"logo_url,omitempty"`
	ResponsibleName      string     `json:"responsible_name,omitempty"`
	ResponsibleCPF       string     `json:"responsible_cpf,omitempty"`
	ResponsibleBirthDate *time.Time `json:"responsible_birth_date,omitempty"`
	ResponsibleEmail     string     `json:"responsible_email,omitempty"`
	ResponsiblePhone     string     `json:"responsible_phone,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
