package brasilapi

import (
	"context"
	"time"

	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/application/ports"
	"github.com/jhoicas/trek-api/internal/domain"
)

var _ ports.PersonLookup = (*MockPersonLookup)(nil)

var mockNames = [10]string{
	"João da Silva", "Maria Oliveira", "Pedro Santos", "Ana Costa",
	"Carlos Pereira", "Beatriz Souza", "Lucas Ferreira", "Fernanda Lima",
	"Rafael Almeida", "Juliana Rocha",
}

// MockPersonLookup consulta de CPF determinística por el último dígito. No hay registro público
// de CPF; un proveedor real (Serpro, Dataprev) reemplaza este adaptador sin cambiar el puerto.
type MockPersonLookup struct{}

// NewMockPersonLookup construye el mock.
func NewMockPersonLookup() *MockPersonLookup { return &MockPersonLookup{} }

// LookupPerson nombre de una tabla fija; nacimiento = (1980+d, max(1,d), max(1,2d)).
func (MockPersonLookup) LookupPerson(_ context.Context, cpf string) (*dto.PersonLookupResponse, error) {
	if len(cpf) != 11 {
		return nil, domain.ErrLookupNotFound
	}
	last := cpf[10]
	if last < '0' || last > '9' {
		return nil, domain.ErrLookupNotFound
	}
	d := int(last - '0')
	birth := time.Date(1980+d, time.Month(max(1, d)), max(1, 2*d), 0, 0, 0, 0, time.UTC)
	return &dto.PersonLookupResponse{
		CPF:       cpf,
		Name:      mockNames[d],
		BirthDate: birth.Format("2006-01-02"),
	}, nil
}
