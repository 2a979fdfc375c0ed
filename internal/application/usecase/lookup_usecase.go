package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/application/ports"
	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/pkg/brdoc"
)

// LookupUseCase consultas externas de CEP, CNPJ y CPF. Un identificador mal formado se
// responde igual que "no encontrado": el usuario completa los campos a mano.
type LookupUseCase struct {
	address ports.AddressLookup
	company ports.CompanyLookup
	person  ports.PersonLookup
	metrics ports.Recorder
}

// NewLookupUseCase construye el caso de uso.
func NewLookupUseCase(address ports.AddressLookup, company ports.CompanyLookup, person ports.PersonLookup, metrics ports.Recorder) *LookupUseCase {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &LookupUseCase{address: address, company: company, person: person, metrics: metrics}
}

// Address consulta un CEP.
func (uc *LookupUseCase) Address(ctx context.Context, cep string) (*dto.AddressLookupResponse, error) {
	digits, ok := brdoc.CEP(cep)
	if !ok {
		return nil, domain.ErrLookupNotFound
	}
	defer uc.observe("cep", time.Now())
	return uc.address.LookupAddress(ctx, digits)
}

// Company consulta un CNPJ.
func (uc *LookupUseCase) Company(ctx context.Context, cnpj string) (*dto.CompanyLookupResponse, error) {
	digits, ok := brdoc.CNPJ(cnpj)
	if !ok {
		return nil, domain.ErrLookupNotFound
	}
	defer uc.observe("cnpj", time.Now())
	return uc.company.LookupCompany(ctx, digits)
}

// Person consulta un CPF.
func (uc *LookupUseCase) Person(ctx context.Context, cpf string) (*dto.PersonLookupResponse, error) {
	digits, ok := brdoc.CPF(cpf)
	if !ok {
		return nil, domain.ErrLookupNotFound
	}
	defer uc.observe("cpf", time.Now())
	return uc.person.LookupPerson(ctx, digits)
}

func (uc *LookupUseCase) observe(kind string, start time.Time) {
	uc.metrics.LookupDuration(kind, time.Since(start))
}
