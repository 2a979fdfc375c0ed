package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/trek-api/internal/application/contract"
	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/application/usecase"
	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/testutil"
	"github.com/jhoicas/trek-api/pkg/logger"
)

// ── dobles de consulta ──────────────────────────────────────────────────────

type fakeLookups struct {
	calls int
}

func (f *fakeLookups) LookupAddress(_ context.Context, cep string) (*dto.AddressLookupResponse, error) {
	f.calls++
	if cep == "00000000" {
		return nil, domain.ErrLookupNotFound
	}
	return &dto.AddressLookupResponse{CEP: cep, Street: "Praça da Sé", City: "São Paulo", State: "SP"}, nil
}

func (f *fakeLookups) LookupCompany(_ context.Context, cnpj string) (*dto.CompanyLookupResponse, error) {
	f.calls++
	return &dto.CompanyLookupResponse{CNPJ: cnpj, Name: "Banco do Brasil SA", Address: "SAUN Quadra 5, Brasília - DF"}, nil
}

func (f *fakeLookups) LookupPerson(_ context.Context, cpf string) (*dto.PersonLookupResponse, error) {
	f.calls++
	return &dto.PersonLookupResponse{CPF: cpf, Name: "Fulano"}, nil
}

// ── Company ─────────────────────────────────────────────────────────────────

func TestCompanyUseCase_CreateWithLookupPrefill(t *testing.T) {
	store := testutil.NewStore()
	uc := usecase.NewCompanyUseCase(store.Companies(), &fakeLookups{})

	resp, err := uc.Create(context.Background(), dto.CreateCompanyRequest{
		CNPJ:                 "00.000.000/0001-91",
		ResponsibleCPF:       "123.456.789-09",
		ResponsibleBirthDate: "20/05/1980",
	})
	require.NoError(t, err)
	assert.Equal(t, "00000000000191", resp.CNPJ)
	assert.Equal(t, "Banco do Brasil SA", resp.Name)
	assert.Equal(t, "SAUN Quadra 5, Brasília - DF", resp.Address)
	assert.Equal(t, "12345678909", resp.ResponsibleCPF)
	require.NotNil(t, resp.ResponsibleBirthDate)

	_, err = uc.Create(context.Background(), dto.CreateCompanyRequest{CNPJ: "00000000000191", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCompanyUseCase_CreateValidation(t *testing.T) {
	uc := usecase.NewCompanyUseCase(testutil.NewStore().Companies(), nil)

	_, err := uc.Create(context.Background(), dto.CreateCompanyRequest{CNPJ: "123", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(context.Background(), dto.CreateCompanyRequest{CNPJ: "11222333000181"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin consulta la razón social es obligatoria")
}

// ── Product ─────────────────────────────────────────────────────────────────

func TestProductUseCase(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(testutil.NewStore().Products())
	monthly := decimal.RequireFromString("89.90")
	insurance := decimal.RequireFromString("10.10")

	created, err := uc.Create(ctx, dto.CreateProductRequest{Brand: "Apple", Model: "iPhone 15", MonthlyPrice: &monthly, InsurancePrice: &insurance})
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.True(t, decimal.NewFromInt(100).Equal(created.TotalMonthly))

	_, err = uc.Create(ctx, dto.CreateProductRequest{Brand: "Motorola", Model: "G54"})
	require.NoError(t, err, "precios nulos son válidos")

	require.NoError(t, uc.SetActive(ctx, created.ID, false))
	store, err := uc.List(ctx, true, 20, 0)
	require.NoError(t, err)
	require.Len(t, store.Items, 1)
	assert.Equal(t, "G54", store.Items[0].Model)

	all, err := uc.List(ctx, false, 20, 0)
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	hidden, err := uc.GetByID(ctx, created.ID, true)
	require.NoError(t, err)
	assert.Nil(t, hidden)

	assert.ErrorIs(t, uc.SetActive(ctx, "no-existe", true), domain.ErrNotFound)

	negative := decimal.RequireFromString("-1")
	_, err = uc.Create(ctx, dto.CreateProductRequest{Brand: "X", Model: "Y", ResidualValue: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── User ────────────────────────────────────────────────────────────────────

func TestUserUseCase_Create(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	store.PutCompany(entity.Company{ID: "c1", Name: "Acme", CNPJ: "11222333000181"})
	uc := usecase.NewUserUseCase(store.Users(), store.Companies())

	resp, err := uc.Create(ctx, dto.CreateUserRequest{
		CompanyID: "c1", Name: " Maria Oliveira ", CPF: "123.456.789-09", BirthDate: "1990-05-20",
		Phone: "11 98765-4321",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Oliveira", resp.Name)
	assert.Equal(t, "12345678909", resp.CPF)
	assert.Equal(t, "1990-05-20", resp.BirthDate)
	assert.Equal(t, entity.RoleEmployee, resp.Role)
	assert.Equal(t, "+5511987654321", resp.Phone)

	_, err = uc.Create(ctx, dto.CreateUserRequest{CompanyID: "c1", Name: "Otra", CPF: "12345678909", BirthDate: "1991-01-01"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateUserRequest{CompanyID: "c1", Name: "X", CPF: "98765432100", BirthDate: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateUserRequest{CompanyID: "c2", Name: "X", CPF: "98765432100", BirthDate: "1991-01-01"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.ListByCompany(ctx, "c1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

// ── Order ───────────────────────────────────────────────────────────────────

func TestOrderUseCase_ContractDocument(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	docs := testutil.NewDocStore()
	require.NoError(t, docs.Put(ctx, "contracts/o1/aditivo_r2.pdf", []byte("%PDF-1.4")))
	store.PutOrder(entity.Order{ID: "o1", UserID: "u1", CompanyID: "c1", Status: entity.OrderStatusIMEILinked, ContractURL: "contracts/o1/aditivo_r2.pdf", SignedAt: time.Now()})

	svc := contract.NewDocumentService(&testutil.Generator{}, docs, contract.NamingRevisioned, logger.Nop())
	uc := usecase.NewOrderUseCase(store.Orders(), svc)

	file, err := uc.ContractDocument(ctx, usecase.Requester{UserID: "u1", Role: entity.RoleEmployee}, "o1")
	require.NoError(t, err)
	assert.Equal(t, "aditivo_r2.pdf", file.FileName)
	assert.Equal(t, []byte("%PDF-1.4"), file.Content)

	_, err = uc.ContractDocument(ctx, usecase.Requester{UserID: "u2", Role: entity.RoleEmployee}, "o1")
	assert.ErrorIs(t, err, domain.ErrNotFound, "un empleado no ve pedidos ajenos")

	_, err = uc.ContractDocument(ctx, usecase.Requester{UserID: "staff", Role: entity.RoleDispatch}, "o1")
	assert.NoError(t, err)

	_, err = uc.ContractDocument(ctx, usecase.Requester{UserID: "rh-a", CompanyID: "c1", Role: entity.RoleHR}, "o1")
	assert.NoError(t, err, "RH ve los aditivos de su empresa")
	_, err = uc.ContractDocument(ctx, usecase.Requester{UserID: "rh-b", CompanyID: "c2", Role: entity.RoleHR}, "o1")
	assert.ErrorIs(t, err, domain.ErrNotFound, "RH no ve aditivos de otra empresa")

	mine, err := uc.ListMine(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine.Items, 1)

	filtered, err := uc.List(ctx, entity.OrderStatusDispatched, "", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, filtered.Items)
}

// ── Lookup ──────────────────────────────────────────────────────────────────

func TestLookupUseCase(t *testing.T) {
	ctx := context.Background()
	lookups := &fakeLookups{}
	uc := usecase.NewLookupUseCase(lookups, lookups, lookups, nil)

	addr, err := uc.Address(ctx, "01001-000")
	require.NoError(t, err)
	assert.Equal(t, "01001000", addr.CEP)

	_, err = uc.Address(ctx, "00000000")
	assert.ErrorIs(t, err, domain.ErrLookupNotFound)

	calls := lookups.calls
	_, err = uc.Address(ctx, "123")
	assert.ErrorIs(t, err, domain.ErrLookupNotFound)
	_, err = uc.Company(ctx, "123")
	assert.ErrorIs(t, err, domain.ErrLookupNotFound)
	_, err = uc.Person(ctx, "123")
	assert.ErrorIs(t, err, domain.ErrLookupNotFound)
	assert.Equal(t, calls, lookups.calls, "un identificador mal formado no llega al proveedor")

	person, err := uc.Person(ctx, "123.456.789-09")
	require.NoError(t, err)
	assert.Equal(t, "12345678909", person.CPF)
}
