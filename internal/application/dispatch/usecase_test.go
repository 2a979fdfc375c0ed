package dispatch_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/trek-api/internal/application/contract"
	"github.com/jhoicas/trek-api/internal/application/dispatch"
	"github.com/jhoicas/trek-api/internal/application/notification"
	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/order"
	"github.com/jhoicas/trek-api/internal/testutil"
	"github.com/jhoicas/trek-api/pkg/logger"
)

const (
	orderID = "0b7e4c1a-0000-4000-8000-0000000000o1"
	imei    = "356938035643809"

	subjectReady   = "Trek - Aparelho Preparado"
	subjectShipped = "Trek - Aparelho Expedido"
)

var signedAt = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

type fixture struct {
	store  *testutil.Store
	docs   *testutil.DocStore
	gen    *testutil.Generator
	sender *testutil.Sender
	uc     *dispatch.UseCase
}

func newFixture(t *testing.T, flow order.Flow) *fixture {
	t.Helper()
	f := &fixture{
		store:  testutil.NewStore(),
		docs:   testutil.NewDocStore(),
		gen:    &testutil.Generator{},
		sender: &testutil.Sender{},
	}
	monthly := decimal.RequireFromString("99.90")
	f.store.PutCompany(entity.Company{ID: "c1", Name: "Acme Ltda", CNPJ: "11222333000181"})
	f.store.PutUser(entity.User{ID: "u1", CompanyID: "c1", Name: "Maria Oliveira", CPF: "12345678909", Email: "perfil@example.com", Active: true})
	f.store.PutProduct(entity.Product{ID: "p1", Brand: "Apple", Model: "iPhone 15", MonthlyPrice: &monthly, Active: true})
	f.store.PutOrder(entity.Order{
		ID: orderID, UserID: "u1", ProductID: "p1", CompanyID: "c1",
		Status:           entity.OrderStatusContractSigned,
		SignedAt:         signedAt,
		DeliveryAddress:  entity.DeliveryAddress{Street: "Praça da Sé", Number: "100", CEP: "01001000", Full: "Praça da Sé, 100 -  - CEP 01001000"},
		ContractURL:      "contracts/" + orderID + "/aditivo_r1.pdf",
		ContractRevision: 1,
		ContactName:      "Maria Oliveira",
		ContactEmail:     "maria@example.com",
		ContactPhone:     "+5511987654321",
		AcceptanceID:     "acc-1",
		AcceptedAt:       signedAt.Add(-time.Minute),
		CreatedAt:        signedAt,
		UpdatedAt:        signedAt,
	})

	log := logger.Nop()
	dispatcher := notification.NewDispatcher(f.store.Outbox(), f.docs, f.sender, log, nil)
	f.uc = dispatch.NewUseCase(dispatch.Deps{
		Orders:    f.store.Orders(),
		Users:     f.store.Users(),
		Products:  f.store.Products(),
		Companies: f.store.Companies(),
		Tx:        f.store,
		Docs:      contract.NewDocumentService(f.gen, f.docs, contract.NamingRevisioned, log),
		Publisher: notification.NewInlinePublisher(dispatcher, log),
		Log:       log,
	}, order.NewPolicy(flow), 21)
	return f
}

func (f *fixture) order(t *testing.T) *entity.Order {
	t.Helper()
	o, err := f.store.Orders().GetByID(context.Background(), orderID)
	require.NoError(t, err)
	require.NotNil(t, o)
	return o
}

func TestLinkIMEI_Staged(t *testing.T) {
	f := newFixture(t, order.FlowStaged)

	resp, err := f.uc.LinkIMEI(context.Background(), orderID, " 3569 3803 5643 809 ")
	require.NoError(t, err)

	o := f.order(t)
	assert.Equal(t, entity.OrderStatusIMEILinked, o.Status)
	require.NotNil(t, o.IMEI)
	assert.Equal(t, imei, *o.IMEI)
	assert.Equal(t, 2, o.ContractRevision)
	assert.Equal(t, "contracts/"+orderID+"/aditivo_r2.pdf", o.ContractURL)
	assert.True(t, resp.ContractRegenerated)
	assert.Empty(t, resp.WhatsAppLink, "el link manual solo aparece al expedir")

	// la nueva revisión lleva el IMEI en lugar de la línea en blanco
	data := f.gen.Last()
	assert.Equal(t, imei, data.Device.IMEI)
	assert.Equal(t, signedAt, data.Terms.StartDate, "las fechas del contrato no cambian")
	assert.Equal(t, "99.90", data.Terms.MonthlyTotal)
	content, err := f.docs.Get(context.Background(), o.ContractURL)
	require.NoError(t, err)
	assert.Contains(t, string(content), "imei="+imei)

	assert.Equal(t, 1, f.sender.Count(subjectReady))
	assert.Equal(t, "maria@example.com", f.sender.Sent[0].To)
	assert.Contains(t, f.sender.Sent[0].Body, imei)
}

func TestLinkIMEI_EmptyIMEI(t *testing.T) {
	f := newFixture(t, order.FlowStaged)

	_, err := f.uc.LinkIMEI(context.Background(), orderID, "   ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	o := f.order(t)
	assert.Equal(t, entity.OrderStatusContractSigned, o.Status)
	assert.Nil(t, o.IMEI)
	assert.Empty(t, f.gen.Calls)
	assert.Empty(t, f.sender.Sent)
}

func TestLinkIMEI_WrongStatus(t *testing.T) {
	f := newFixture(t, order.FlowStaged)
	_, err := f.uc.LinkIMEI(context.Background(), orderID, imei)
	require.NoError(t, err)
	before := f.order(t)

	_, err = f.uc.LinkIMEI(context.Background(), orderID, "490154203237518")
	require.ErrorIs(t, err, domain.ErrConflict)

	after := f.order(t)
	assert.Equal(t, before, after, "el pedido queda sin cambios")
	assert.Equal(t, 1, f.sender.Count(subjectReady))
}

func TestMarkDispatched_Staged(t *testing.T) {
	f := newFixture(t, order.FlowStaged)

	_, err := f.uc.MarkDispatched(context.Background(), orderID, "")
	require.ErrorIs(t, err, domain.ErrConflict, "en staged primero se vincula el IMEI")

	_, err = f.uc.LinkIMEI(context.Background(), orderID, imei)
	require.NoError(t, err)

	resp, err := f.uc.MarkDispatched(context.Background(), orderID, "")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDispatched, resp.Order.Status)
	assert.NotNil(t, resp.Order.DispatchedAt)
	assert.False(t, resp.ContractRegenerated)
	assert.Equal(t, "https://wa.me/?text=Ol%C3%A1%20Maria%20Oliveira%2C%20seu%20aparelho%20%28IMEI%20356938035643809%29%20saiu%20para%20entrega%21", resp.WhatsAppLink)
	assert.Equal(t, 1, f.sender.Count(subjectShipped))
	assert.Equal(t, 2, f.order(t).ContractRevision, "expedir no regenera el aditivo")
}

func TestMarkDispatched_Twice(t *testing.T) {
	f := newFixture(t, order.FlowStaged)
	_, err := f.uc.LinkIMEI(context.Background(), orderID, imei)
	require.NoError(t, err)

	_, err = f.uc.MarkDispatched(context.Background(), orderID, "")
	require.NoError(t, err)
	_, err = f.uc.MarkDispatched(context.Background(), orderID, "")
	require.ErrorIs(t, err, domain.ErrConflict)

	assert.Equal(t, 1, f.sender.Count(subjectShipped))
	assert.Len(t, f.store.OutboxByKind(entity.NotificationDeviceShipped), 1)
}

func TestMarkDispatched_ConcurrentClicks(t *testing.T) {
	f := newFixture(t, order.FlowStaged)
	_, err := f.uc.LinkIMEI(context.Background(), orderID, imei)
	require.NoError(t, err)

	const clicks = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.uc.MarkDispatched(context.Background(), orderID, ""); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.sender.Count(subjectShipped))
}

func TestFused_DispatchWithIMEI(t *testing.T) {
	f := newFixture(t, order.FlowFused)

	_, err := f.uc.MarkDispatched(context.Background(), orderID, "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, entity.OrderStatusContractSigned, f.order(t).Status)

	resp, err := f.uc.MarkDispatched(context.Background(), orderID, imei)
	require.NoError(t, err)
	o := f.order(t)
	assert.Equal(t, entity.OrderStatusDispatched, o.Status)
	require.NotNil(t, o.IMEI)
	assert.Equal(t, imei, *o.IMEI)
	assert.True(t, resp.ContractRegenerated)
	assert.NotEmpty(t, resp.WhatsAppLink)

	assert.Equal(t, 1, f.sender.Count(subjectShipped))
	assert.Zero(t, f.sender.Count(subjectReady), "en fused sale un solo aviso")

	_, err = f.uc.LinkIMEI(context.Background(), orderID, imei)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestLinkIMEI_RegenerationFailureKeepsTransition(t *testing.T) {
	f := newFixture(t, order.FlowStaged)
	f.docs.FailAll = true

	resp, err := f.uc.LinkIMEI(context.Background(), orderID, imei)
	require.NoError(t, err)
	assert.False(t, resp.ContractRegenerated)

	o := f.order(t)
	assert.Equal(t, entity.OrderStatusIMEILinked, o.Status)
	assert.Equal(t, 1, o.ContractRevision)
	assert.Equal(t, 1, f.sender.Count(subjectReady))
}

func TestLinkIMEI_NotFound(t *testing.T) {
	f := newFixture(t, order.FlowStaged)
	_, err := f.uc.LinkIMEI(context.Background(), "no-existe", imei)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPending(t *testing.T) {
	f := newFixture(t, order.FlowStaged)
	f.store.PutOrder(entity.Order{ID: "o2", UserID: "u1", ProductID: "p1", CompanyID: "c1", Status: entity.OrderStatusDispatched, SignedAt: signedAt})
	f.store.PutOrder(entity.Order{ID: "o3", UserID: "u1", ProductID: "p1", CompanyID: "c1", Status: entity.OrderStatusIMEILinked, SignedAt: signedAt.Add(time.Hour)})

	resp, err := f.uc.ListPending(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "o3", resp.Items[0].ID)
	assert.Equal(t, "Maria Oliveira", resp.Items[1].UserName)
	assert.Equal(t, "iPhone 15", resp.Items[1].ProductModel)

	fused := newFixture(t, order.FlowFused)
	fused.store.PutOrder(entity.Order{ID: "o3", UserID: "u1", ProductID: "p1", Status: entity.OrderStatusIMEILinked})
	resp, err = fused.uc.ListPending(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, orderID, resp.Items[0].ID)
}
