package ports

import (
	"context"

	"github.com/jhoicas/trek-api/internal/application/dto"
)

// AddressLookup define el puerto de salida para la consulta de CEP.
// Recibe el CEP normalizado (8 dígitos). Devuelve domain.ErrLookupNotFound si no hay resultado;
// un timeout o un error de red se reportan igual que "no encontrado".
type AddressLookup interface {
	LookupAddress(ctx context.Context, cep string) (*dto.AddressLookupResponse, error)
}

// CompanyLookup define el puerto de salida para la consulta de CNPJ (14 dígitos).
type CompanyLookup interface {
	LookupCompany(ctx context.Context, cnpj string) (*dto.CompanyLookupResponse, error)
}

// PersonLookup define el puerto de salida para la consulta de CPF (11 dígitos).
// Cualquier proveedor debe respetar la forma {nombre, fecha de nacimiento, CPF}.
type PersonLookup interface {
	LookupPerson(ctx context.Context, cpf string) (*dto.PersonLookupResponse, error)
}
