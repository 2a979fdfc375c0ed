// Package dispatch implementa las acciones de expedición: vincular IMEI y marcar como expedido.
// Cada transición se aplica con compare-and-swap sobre el estado, así un doble clic no
// duplica ni el cambio ni el aviso.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/trek-api/internal/application/contract"
	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/application/notification"
	"github.com/jhoicas/trek-api/internal/application/ports"
	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/order"
	"github.com/jhoicas/trek-api/internal/domain/repository"
	"github.com/jhoicas/trek-api/pkg/logger"
	"github.com/jhoicas/trek-api/pkg/phone"
)

// Deps dependencias del caso de uso.
type Deps struct {
	Orders    repository.OrderRepository
	Users     repository.UserRepository
	Products  repository.ProductRepository
	Companies repository.CompanyRepository
	Tx        contract.OrderTxRunner
	Docs      *contract.DocumentService
	Publisher notification.Publisher
	Log       *logger.Logger
	Metrics   ports.Recorder
}

// UseCase casos de uso de expedición.
type UseCase struct {
	orders     repository.OrderRepository
	users      repository.UserRepository
	products   repository.ProductRepository
	companies  repository.CompanyRepository
	tx         contract.OrderTxRunner
	docs       *contract.DocumentService
	publisher  notification.Publisher
	policy     order.Policy
	termMonths int
	log        *logger.Logger
	metrics    ports.Recorder
	now        func() time.Time
}

// NewUseCase construye el caso de uso con la política de despacho configurada.
func NewUseCase(d Deps, policy order.Policy, termMonths int) *UseCase {
	if d.Metrics == nil {
		d.Metrics = ports.NopRecorder{}
	}
	return &UseCase{
		orders:     d.Orders,
		users:      d.Users,
		products:   d.Products,
		companies:  d.Companies,
		tx:         d.Tx,
		docs:       d.Docs,
		publisher:  d.Publisher,
		policy:     policy,
		termMonths: termMonths,
		log:        d.Log,
		metrics:    d.Metrics,
		now:        time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *UseCase) SetClock(now func() time.Time) { uc.now = now }

// ListPending cola de expedición según el flujo configurado.
func (uc *UseCase) ListPending(ctx context.Context, limit, offset int) (*dto.OrderListResponse, error) {
	list, err := uc.orders.ListDetails(ctx, repository.OrderFilter{
		Statuses: uc.policy.PendingStatuses(),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, d := range list {
		items = append(items, contract.ToOrderDetailResponse(d))
	}
	return &dto.OrderListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// LinkIMEI vincula el IMEI a un pedido en contract_signed. En el flujo fused además lo expide.
func (uc *UseCase) LinkIMEI(ctx context.Context, orderID, imei string) (*dto.DispatchResponse, error) {
	return uc.apply(ctx, order.ActionLinkIMEI, orderID, imei)
}

// MarkDispatched marca el pedido como expedido. En el flujo fused el IMEI llega en la misma acción.
func (uc *UseCase) MarkDispatched(ctx context.Context, orderID, imei string) (*dto.DispatchResponse, error) {
	return uc.apply(ctx, order.ActionDispatch, orderID, imei)
}

func (uc *UseCase) apply(ctx context.Context, action order.Action, orderID, rawIMEI string) (*dto.DispatchResponse, error) {
	imei := order.NormalizeIMEI(rawIMEI)
	detail, err := uc.orders.GetDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, domain.ErrNotFound
	}
	tr, err := uc.policy.Next(action, detail.Status, imei)
	if err != nil {
		return nil, err
	}

	change := repository.StatusChange{OrderID: detail.ID, FromStatus: tr.From, ToStatus: tr.To}
	effectiveIMEI := ""
	if detail.HasIMEI() {
		effectiveIMEI = *detail.IMEI
	}
	if tr.RequiresIMEI {
		// el IMEI, una vez vinculado, no se reemplaza
		if effectiveIMEI == "" {
			change.IMEI = imei
			effectiveIMEI = imei
		}
	}

	now := uc.now()
	msg := notification.ForTransition(detail.ID, recipientOf(detail), tr.To, effectiveIMEI, now)
	err = uc.tx.RunOrder(ctx, func(orderRepo repository.OrderRepository, outboxRepo repository.OutboxRepository) error {
		applied, err := orderRepo.TransitionStatus(ctx, change)
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("%w: el pedido cambió de estado", domain.ErrConflict)
		}
		return outboxRepo.Insert(ctx, msg)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.OrderTransition(tr.To)
	uc.log.Info().Str("order_id", detail.ID).Str("from", tr.From).Str("to", tr.To).Str("imei", effectiveIMEI).Msg("transición de pedido")

	regenerated := false
	if change.IMEI != "" {
		regenerated = uc.regenerate(ctx, detail, effectiveIMEI)
	}
	if err := uc.publisher.Publish(ctx, msg.ID); err != nil {
		uc.log.Warn().Err(err).Str("order_id", detail.ID).Str("outbox_id", msg.ID).Msg("no se pudo publicar el aviso")
	}

	updated, err := uc.orders.GetByID(ctx, detail.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}
	resp := &dto.DispatchResponse{Order: contract.ToOrderResponse(updated), ContractRegenerated: regenerated}
	resp.Order.UserName = detail.UserName
	resp.Order.ProductBrand = detail.ProductBrand
	resp.Order.ProductModel = detail.ProductModel
	if tr.To == entity.OrderStatusDispatched {
		text := fmt.Sprintf("Olá %s, seu aparelho (IMEI %s) saiu para entrega!", displayName(detail), effectiveIMEI)
		resp.WhatsAppLink = phone.WhatsAppLink("", text)
	}
	return resp, nil
}

// regenerate emite una nueva revisión del aditivo con el IMEI. La transición ya está confirmada:
// un fallo aquí se registra y el pedido conserva la revisión anterior.
func (uc *UseCase) regenerate(ctx context.Context, detail *entity.OrderDetail, imei string) bool {
	fail := func(err error, msg string) bool {
		uc.log.Error().Err(err).Str("order_id", detail.ID).Msg(msg)
		return false
	}
	user, err := uc.users.GetByID(ctx, detail.UserID)
	if err != nil || user == nil {
		return fail(err, "no se pudo regenerar el aditivo: usuario")
	}
	product, err := uc.products.GetByID(ctx, detail.ProductID)
	if err != nil || product == nil {
		return fail(err, "no se pudo regenerar el aditivo: producto")
	}
	company, err := uc.companies.GetByID(ctx, detail.CompanyID)
	if err != nil {
		return fail(err, "no se pudo regenerar el aditivo: empresa")
	}
	revision := detail.ContractRevision + 1
	data, _, _ := contract.BuildData(contract.BuildInput{
		OrderID:    detail.ID,
		Revision:   revision,
		User:       user,
		Product:    product,
		Company:    company,
		Name:       detail.ContactName,
		Address:    detail.DeliveryAddress.Full,
		Phone:      detail.ContactPhone,
		Email:      detail.ContactEmail,
		IMEI:       imei,
		StartDate:  detail.SignedAt,
		AcceptedAt: detail.AcceptedAt,
		TermMonths: uc.termMonths,
	})
	key, err := uc.docs.Issue(ctx, data)
	if err != nil {
		return fail(err, "no se pudo regenerar el aditivo")
	}
	if err := uc.orders.SetContract(ctx, detail.ID, key, revision); err != nil {
		return fail(err, "no se pudo registrar la nueva revisión del aditivo: "+key)
	}
	return true
}

// recipientOf usa el e-mail informado en la firma y, si falta, el del perfil.
func recipientOf(d *entity.OrderDetail) string {
	if d.ContactEmail != "" {
		return d.ContactEmail
	}
	return d.UserEmail
}

func displayName(d *entity.OrderDetail) string {
	if d.ContactName != "" {
		return d.ContactName
	}
	return d.UserName
}
