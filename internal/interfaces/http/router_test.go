package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/trek-api/internal/application/auth"
	"github.com/jhoicas/trek-api/internal/application/contract"
	"github.com/jhoicas/trek-api/internal/application/dispatch"
	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/application/notification"
	"github.com/jhoicas/trek-api/internal/application/ports"
	"github.com/jhoicas/trek-api/internal/application/reports"
	"github.com/jhoicas/trek-api/internal/application/session"
	"github.com/jhoicas/trek-api/internal/application/usecase"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/order"
	"github.com/jhoicas/trek-api/internal/infrastructure/brasilapi"
	"github.com/jhoicas/trek-api/internal/infrastructure/report"
	apphttp "github.com/jhoicas/trek-api/internal/interfaces/http"
	"github.com/jhoicas/trek-api/internal/testutil"
	"github.com/jhoicas/trek-api/pkg/logger"
)

const (
	apiCompanyID  = "5b0d7a3e-1c2f-4a8b-9e6d-000000000c01"
	apiEmployeeID = "5b0d7a3e-1c2f-4a8b-9e6d-000000000e01"
	apiShipperID  = "5b0d7a3e-1c2f-4a8b-9e6d-000000000d01"
	apiAdminID    = "5b0d7a3e-1c2f-4a8b-9e6d-000000000a01"
	apiProductID  = "5b0d7a3e-1c2f-4a8b-9e6d-000000000f01"
)

type apiFixture struct {
	app    *fiber.App
	store  *testutil.Store
	sender *testutil.Sender
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	log := logger.Nop()
	store := testutil.NewStore()
	docs := testutil.NewDocStore()
	sender := &testutil.Sender{}
	sessions := session.NewMemoryStore()

	store.PutCompany(entity.Company{ID: apiCompanyID, Name: "Acme Ltda", CNPJ: "11222333000181"})
	store.PutUser(entity.User{
		ID: apiEmployeeID, CompanyID: apiCompanyID, Name: "Maria Oliveira", CPF: "12345678909",
		BirthDate: time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC), Role: entity.RoleEmployee, Active: true,
	})
	store.PutUser(entity.User{
		ID: apiShipperID, CompanyID: apiCompanyID, Name: "Carlos Expedição", CPF: "98765432100",
		BirthDate: time.Date(1985, 1, 2, 0, 0, 0, 0, time.UTC), Role: entity.RoleDispatch, Active: true,
	})
	store.PutUser(entity.User{
		ID: apiAdminID, CompanyID: apiCompanyID, Name: "Ana Admin", CPF: "11144477735",
		BirthDate: time.Date(1979, 12, 31, 0, 0, 0, 0, time.UTC), Role: entity.RoleAdmin, Active: true,
	})
	monthly, insurance := decimal.RequireFromString("100"), decimal.RequireFromString("19.90")
	store.PutProduct(entity.Product{
		ID: apiProductID, Brand: "Samsung", Model: "Galaxy S23",
		MonthlyPrice: &monthly, InsurancePrice: &insurance, Active: true,
	})

	cep := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cep/v2/01001000" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"cep":"01001000","state":"SP","city":"São Paulo","neighborhood":"Sé","street":"Praça da Sé"}`))
	}))
	t.Cleanup(cep.Close)
	lookups := brasilapi.NewClient(cep.URL, log)

	dispatcher := notification.NewDispatcher(store.Outbox(), docs, sender, log, nil)
	publisher := notification.NewInlinePublisher(dispatcher, log)
	docSvc := contract.NewDocumentService(&testutil.Generator{}, docs, contract.NamingRevisioned, log)

	authUC := auth.NewAuthUseCase(store.Users(), sessions, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer})
	contractUC := contract.NewUseCase(contract.Deps{
		Users: store.Users(), Products: store.Products(), Companies: store.Companies(), Orders: store.Orders(),
		Tx: store, Docs: docSvc, Sessions: sessions, Guard: session.NewMemoryGuard(), Publisher: publisher, Log: log,
	}, contract.Config{TermMonths: 21})
	dispatchUC := dispatch.NewUseCase(dispatch.Deps{
		Orders: store.Orders(), Users: store.Users(), Products: store.Products(), Companies: store.Companies(),
		Tx: store, Docs: docSvc, Publisher: publisher, Log: log,
	}, order.NewPolicy(order.FlowStaged), 21)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     authUC,
		CompanyUC:  usecase.NewCompanyUseCase(store.Companies(), lookups),
		ProductUC:  usecase.NewProductUseCase(store.Products()),
		UserUC:     usecase.NewUserUseCase(store.Users(), store.Companies()),
		OrderUC:    usecase.NewOrderUseCase(store.Orders(), docSvc),
		LookupUC:   usecase.NewLookupUseCase(lookups, lookups, brasilapi.NewMockPersonLookup(), ports.NopRecorder{}),
		ContractUC: contractUC,
		DispatchUC: dispatchUC,
		PayrollUC:  reports.NewPayrollUseCase(store.Orders(), report.NewPayrollWriter()),
		RetryUC:    notification.NewRetryUseCase(store.Outbox(), publisher),
		JWTSecret:  testJWTSecret,
	})
	return &apiFixture{app: app, store: store, sender: sender}
}

func (f *apiFixture) call(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (f *apiFixture) login(t *testing.T, cpf, birth string) string {
	t.Helper()
	resp := f.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{CPF: cpf, BirthDate: birth})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decodeInto(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func signRequest() dto.SignContractRequest {
	return dto.SignContractRequest{
		ProductID: apiProductID, Email: "maria@example.com", Phone: "(11) 98765-4321",
		CEP: "01001-000", Street: "Praça da Sé", Number: "100", Neighborhood: "Sé", City: "São Paulo", State: "SP",
	}
}

func TestAPI_SignAndDispatchFlow(t *testing.T) {
	f := newAPI(t)
	employee := f.login(t, "123.456.789-09", "20/05/1990")

	var catalog dto.ProductListResponse
	resp := f.call(t, http.MethodGet, "/api/store/products", employee, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &catalog)
	require.Len(t, catalog.Items, 1)
	assert.Equal(t, "119.9", catalog.Items[0].TotalMonthly.String())

	// Sin aceite no hay firma.
	resp = f.call(t, http.MethodPost, "/api/contracts/sign", employee, signRequest())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = f.call(t, http.MethodPost, "/api/contracts/acceptance", employee, dto.AcceptanceRequest{ProductID: apiProductID, Accepted: true})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var signed dto.SignContractResponse
	resp = f.call(t, http.MethodPost, "/api/contracts/sign", employee, signRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeInto(t, resp, &signed)
	assert.Equal(t, entity.OrderStatusContractSigned, signed.Order.Status)
	assert.Nil(t, signed.Order.IMEI)
	assert.Contains(t, signed.WhatsAppLink, "https://wa.me/?text=")
	assert.Equal(t, 1, f.sender.Count("Seu Aditivo de Contrato - Trek"))

	// Reenvío del mismo formulario: mismo pedido, sin segundo aviso.
	var replay dto.SignContractResponse
	resp = f.call(t, http.MethodPost, "/api/contracts/sign", employee, signRequest())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &replay)
	assert.True(t, replay.Replayed)
	assert.Equal(t, signed.Order.ID, replay.Order.ID)
	assert.Len(t, f.store.AllOrders(), 1)
	assert.Equal(t, 1, f.sender.Count("Seu Aditivo de Contrato - Trek"))

	// el aceite consumido ya no figura como pendiente
	var me dto.MeResponse
	resp = f.call(t, http.MethodGet, "/api/auth/me", employee, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &me)
	assert.Nil(t, me.Acceptance)

	var mine dto.OrderListResponse
	resp = f.call(t, http.MethodGet, "/api/orders/mine", employee, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &mine)
	require.Len(t, mine.Items, 1)

	resp = f.call(t, http.MethodGet, "/api/orders/"+signed.Order.ID+"/contract", employee, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	// El empleado no entra a la fila de expedición.
	resp = f.call(t, http.MethodGet, "/api/dispatch/orders", employee, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	shipper := f.login(t, "98765432100", "1985-01-02")
	var pending dto.OrderListResponse
	resp = f.call(t, http.MethodGet, "/api/dispatch/orders", shipper, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &pending)
	require.Len(t, pending.Items, 1)

	// Expedir antes de vincular el IMEI no está permitido en el flujo staged.
	resp = f.call(t, http.MethodPost, "/api/dispatch/orders/"+signed.Order.ID+"/dispatch", shipper, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	var linked dto.DispatchResponse
	resp = f.call(t, http.MethodPost, "/api/dispatch/orders/"+signed.Order.ID+"/imei", shipper, dto.LinkIMEIRequest{IMEI: "35 209900 176148 1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &linked)
	assert.Equal(t, entity.OrderStatusIMEILinked, linked.Order.Status)
	require.NotNil(t, linked.Order.IMEI)
	assert.Equal(t, 1, f.sender.Count("Trek - Aparelho Preparado"))

	var shipped dto.DispatchResponse
	resp = f.call(t, http.MethodPost, "/api/dispatch/orders/"+signed.Order.ID+"/dispatch", shipper, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &shipped)
	assert.Equal(t, entity.OrderStatusDispatched, shipped.Order.Status)
	assert.NotNil(t, shipped.Order.DispatchedAt)
	assert.Equal(t, 1, f.sender.Count("Trek - Aparelho Expedido"))
}

func TestAPI_SignValidation(t *testing.T) {
	f := newAPI(t)
	employee := f.login(t, "12345678909", "1990-05-20")

	resp := f.call(t, http.MethodPost, "/api/contracts/sign", employee, dto.SignContractRequest{ProductID: "no-es-uuid"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "VALIDATION")
}

func TestAPI_SignMissingFieldsListsAll(t *testing.T) {
	f := newAPI(t)
	employee := f.login(t, "12345678909", "1990-05-20")
	resp := f.call(t, http.MethodPost, "/api/contracts/acceptance", employee, dto.AcceptanceRequest{ProductID: apiProductID, Accepted: true})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = f.call(t, http.MethodPost, "/api/contracts/sign", employee, dto.SignContractRequest{ProductID: apiProductID})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	for _, field := range []string{"email", "phone", "cep", "street", "number"} {
		assert.Contains(t, e.Message, field)
	}
	assert.Empty(t, f.store.AllOrders())
}

func TestAPI_LoginFailures(t *testing.T) {
	f := newAPI(t)

	resp := f.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{CPF: "12345678909", BirthDate: "1991-05-20"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = f.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{CPF: "123", BirthDate: "1990-05-20"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_LogoutClosesSession(t *testing.T) {
	f := newAPI(t)
	token := f.login(t, "12345678909", "1990-05-20")

	var me dto.MeResponse
	resp := f.call(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &me)
	assert.Equal(t, apiEmployeeID, me.User.ID)
	assert.Nil(t, me.Acceptance)

	resp = f.call(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = f.call(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_AdminCatalog(t *testing.T) {
	f := newAPI(t)
	admin := f.login(t, "11144477735", "1979-12-31")
	employee := f.login(t, "12345678909", "1990-05-20")

	resp := f.call(t, http.MethodGet, "/api/companies", employee, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	var created dto.ProductResponse
	resp = f.call(t, http.MethodPost, "/api/products", admin, map[string]interface{}{
		"brand": "Apple", "model": "iPhone 15", "monthly_price": "150.00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeInto(t, resp, &created)
	assert.Equal(t, "150", created.TotalMonthly.String())

	resp = f.call(t, http.MethodPatch, "/api/products/"+apiProductID+"/active", admin, map[string]bool{"active": false})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	var store dto.ProductListResponse
	resp = f.call(t, http.MethodGet, "/api/store/products", employee, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &store)
	require.Len(t, store.Items, 1)
	assert.Equal(t, "iPhone 15", store.Items[0].Model)

	resp = f.call(t, http.MethodGet, "/api/store/products/"+apiProductID, employee, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = f.call(t, http.MethodPatch, "/api/products/5b0d7a3e-1c2f-4a8b-9e6d-00000000ffff/active", admin, map[string]bool{"active": true})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_Lookups(t *testing.T) {
	f := newAPI(t)

	var addr dto.AddressLookupResponse
	resp := f.call(t, http.MethodGet, "/api/lookups/cep/01001-000", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &addr)
	assert.Equal(t, "Praça da Sé", addr.Street)
	assert.Equal(t, "SP", addr.State)

	resp = f.call(t, http.MethodGet, "/api/lookups/cep/99999999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	var person dto.PersonLookupResponse
	resp = f.call(t, http.MethodGet, "/api/lookups/cpf/12345678909", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &person)
	assert.NotEmpty(t, person.Name)

	resp = f.call(t, http.MethodGet, "/api/lookups/cpf/123", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_PayrollAndRetry(t *testing.T) {
	f := newAPI(t)
	admin := f.login(t, "11144477735", "1979-12-31")
	employee := f.login(t, "12345678909", "1990-05-20")

	resp := f.call(t, http.MethodGet, "/api/hr/reports/payroll", employee, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.call(t, http.MethodGet, "/api/hr/reports/payroll", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "descontos_")
	resp.Body.Close()

	var retried dto.RetryNotificationsResponse
	resp = f.call(t, http.MethodPost, "/api/notifications/retry", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &retried)
	assert.Equal(t, 0, retried.Published)
}

func TestAPI_MalformedIDIsNotFound(t *testing.T) {
	f := newAPI(t)
	admin := f.login(t, "11144477735", "1979-12-31")

	for _, tc := range []struct {
		method, path string
		body         interface{}
	}{
		{http.MethodGet, "/api/orders/abc/contract", nil},
		{http.MethodPost, "/api/dispatch/orders/abc/imei", dto.LinkIMEIRequest{IMEI: "352099001761481"}},
		{http.MethodPost, "/api/dispatch/orders/abc/dispatch", nil},
		{http.MethodGet, "/api/companies/abc", nil},
		{http.MethodGet, "/api/store/products/abc", nil},
		{http.MethodPatch, "/api/products/abc/active", map[string]bool{"active": true}},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp := f.call(t, tc.method, tc.path, admin, tc.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), "NOT_FOUND")
		})
	}
}

func TestAPI_ContractDownloadScopedByCompany(t *testing.T) {
	f := newAPI(t)
	const otherCompanyID = "5b0d7a3e-1c2f-4a8b-9e6d-000000000c02"
	f.store.PutUser(entity.User{
		ID: "5b0d7a3e-1c2f-4a8b-9e6d-000000000b01", CompanyID: apiCompanyID, Name: "Rita RH", CPF: "22233344405",
		BirthDate: time.Date(1988, 3, 4, 0, 0, 0, 0, time.UTC), Role: entity.RoleHR, Active: true,
	})
	f.store.PutUser(entity.User{
		ID: "5b0d7a3e-1c2f-4a8b-9e6d-000000000b02", CompanyID: otherCompanyID, Name: "Otto RH", CPF: "33344455506",
		BirthDate: time.Date(1992, 7, 8, 0, 0, 0, 0, time.UTC), Role: entity.RoleHR, Active: true,
	})

	employee := f.login(t, "12345678909", "1990-05-20")
	resp := f.call(t, http.MethodPost, "/api/contracts/acceptance", employee, dto.AcceptanceRequest{ProductID: apiProductID, Accepted: true})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	var signed dto.SignContractResponse
	resp = f.call(t, http.MethodPost, "/api/contracts/sign", employee, signRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeInto(t, resp, &signed)

	path := "/api/orders/" + signed.Order.ID + "/contract"
	sameCompany := f.login(t, "22233344405", "1988-03-04")
	resp = f.call(t, http.MethodGet, path, sameCompany, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	otherCompany := f.login(t, "33344455506", "1992-07-08")
	resp = f.call(t, http.MethodGet, path, otherCompany, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "RH de otra empresa no ve el aditivo")
	resp.Body.Close()
}
