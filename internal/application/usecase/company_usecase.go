package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/application/ports"
	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/repository"
	"github.com/jhoicas/trek-api/pkg/brdoc"
)

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	repo   repository.CompanyRepository
	lookup ports.CompanyLookup
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia. lookup es opcional
// y se usa para completar razón social y dirección desde el CNPJ.
func NewCompanyUseCase(repo repository.CompanyRepository, lookup ports.CompanyLookup) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, lookup: lookup}
}

// Create registra una empresa. Devuelve domain.ErrDuplicate si el CNPJ ya existe.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	cnpj, ok := brdoc.CNPJ(in.CNPJ)
	if !ok {
		return nil, fmt.Errorf("%w: CNPJ debe tener %d dígitos", domain.ErrInvalidInput, brdoc.CNPJLength)
	}
	existing, err := uc.repo.GetByCNPJ(ctx, cnpj)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	name, address := in.Name, in.Address
	if (name == "" || address == "") && uc.lookup != nil {
		// consulta best-effort: sin resultado se exige el nombre manual
		if found, err := uc.lookup.LookupCompany(ctx, cnpj); err == nil && found != nil {
			if name == "" {
				name = found.Name
			}
			if address == "" {
				address = found.Address
			}
		}
	}
	if name == "" {
		return nil, fmt.Errorf("%w: razón social requerida", domain.ErrInvalidInput)
	}

	company := &entity.Company{
		ID:               uuid.New().String(),
		Name:             name,
		CNPJ:             cnpj,
		Address:          address,
		LogoURL:          in.LogoURL,
		ResponsibleName:  in.ResponsibleName,
		ResponsibleEmail: in.ResponsibleEmail,
		ResponsiblePhone: in.ResponsiblePhone,
		CreatedAt:        time.Now(),
	}
	if in.ResponsibleCPF != "" {
		cpf, ok := brdoc.CPF(in.ResponsibleCPF)
		if !ok {
			return nil, fmt.Errorf("%w: CPF del responsable", domain.ErrInvalidInput)
		}
		company.ResponsibleCPF = cpf
	}
	if in.ResponsibleBirthDate != "" {
		bd, ok := brdoc.ParseDate(in.ResponsibleBirthDate)
		if !ok {
			return nil, fmt.Errorf("%w: fecha de nacimiento del responsable", domain.ErrInvalidInput)
		}
		company.ResponsibleBirthDate = &bd
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa por ID.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, nil
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación.
func (uc *CompanyUseCase) List(ctx context.Context, limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:                   c.ID,
		Name:                 c.Name,
		CNPJ:                 c.CNPJ,
		Address:              c.Address,
		LogoURL:              c.LogoURL,
		ResponsibleName:      c.ResponsibleName,
		ResponsibleCPF:       c.ResponsibleCPF,
		ResponsibleBirthDate: c.ResponsibleBirthDate,
		ResponsibleEmail:     c.ResponsibleEmail,
		ResponsiblePhone:     c.ResponsiblePhone,
		CreatedAt:            c.CreatedAt,
	}
}
