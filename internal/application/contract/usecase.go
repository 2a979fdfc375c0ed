// Package contract orquesta el aceite y la firma del aditivo: valida el formulario, calcula
// los valores, genera el documento y crea el pedido junto con su aviso de confirmación.
package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/application/notification"
	"github.com/jhoicas/trek-api/internal/application/ports"
	"github.com/jhoicas/trek-api/internal/application/session"
	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/order"
	"github.com/jhoicas/trek-api/internal/domain/repository"
	"github.com/jhoicas/trek-api/pkg/brdoc"
	"github.com/jhoicas/trek-api/pkg/logger"
	"github.com/jhoicas/trek-api/pkg/phone"
)

// submissionTTL tiempo máximo que una firma retiene la guardia de envío.
const submissionTTL = 2 * time.Minute

// Config parámetros del contrato.
type Config struct {
	TermMonths int
}

// UseCase casos de uso de aceite y firma.
type UseCase struct {
	users     repository.UserRepository
	products  repository.ProductRepository
	companies repository.CompanyRepository
	orders    repository.OrderRepository
	tx        OrderTxRunner
	docs      *DocumentService
	sessions  session.Store
	guard     session.Guard
	publisher notification.Publisher
	cfg       Config
	log       *logger.Logger
	metrics   ports.Recorder
	now       func() time.Time
}

// Deps dependencias del caso de uso.
type Deps struct {
	Users     repository.UserRepository
	Products  repository.ProductRepository
	Companies repository.CompanyRepository
	Orders    repository.OrderRepository
	Tx        OrderTxRunner
	Docs      *DocumentService
	Sessions  session.Store
	Guard     session.Guard
	Publisher notification.Publisher
	Log       *logger.Logger
	Metrics   ports.Recorder
}

// NewUseCase construye el caso de uso de contrato.
func NewUseCase(d Deps, cfg Config) *UseCase {
	if d.Metrics == nil {
		d.Metrics = ports.NopRecorder{}
	}
	return &UseCase{
		users:     d.Users,
		products:  d.Products,
		companies: d.Companies,
		orders:    d.Orders,
		tx:        d.Tx,
		docs:      d.Docs,
		sessions:  d.Sessions,
		guard:     d.Guard,
		publisher: d.Publisher,
		cfg:       cfg,
		log:       d.Log,
		metrics:   d.Metrics,
		now:       time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *UseCase) SetClock(now func() time.Time) { uc.now = now }

// RecordAcceptance registra en la sesión el aceite explícito del Contrato-Mãe para un producto.
// Reemplaza cualquier aceite anterior de la sesión.
func (uc *UseCase) RecordAcceptance(ctx context.Context, sessionID string, in dto.AcceptanceRequest, ip string) (*dto.AcceptanceResponse, error) {
	if !in.Accepted {
		return nil, fmt.Errorf("%w: el aceite debe ser explícito", domain.ErrInvalidInput)
	}
	sess, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, domain.ErrNotFound
	}
	acc := &session.Acceptance{
		ID:         uuid.New().String(),
		ProductID:  product.ID,
		AcceptedAt: uc.now(),
		IP:         ip,
	}
	sess.Acceptance = acc
	if err := uc.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return &dto.AcceptanceResponse{ID: acc.ID, ProductID: acc.ProductID, AcceptedAt: acc.AcceptedAt}, nil
}

// Sign firma el aditivo. Con todos los campos válidos crea exactamente un pedido en
// contract_signed sin IMEI, con su documento guardado y un aviso de confirmación en el outbox.
//
// Un segundo envío del mismo aceite mientras el primero está en curso devuelve ErrConflict; uno
// posterior devuelve el pedido ya creado (Replayed) sin volver a notificar.
func (uc *UseCase) Sign(ctx context.Context, sess *session.Session, in dto.SignContractRequest) (*dto.SignContractResponse, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	acc, ok := sess.AcceptanceFor(in.ProductID)
	if !ok {
		return nil, domain.ErrNoAcceptance
	}

	fields := order.SignatureFields{
		Email:  strings.TrimSpace(in.Email),
		Phone:  strings.TrimSpace(in.Phone),
		CEP:    strings.TrimSpace(in.CEP),
		Street: strings.TrimSpace(in.Street),
		Number: strings.TrimSpace(in.Number),
	}
	if err := order.ValidateSignature(fields); err != nil {
		return nil, err
	}
	cep, ok := brdoc.CEP(fields.CEP)
	if !ok {
		return nil, fmt.Errorf("%w: CEP debe tener %d dígitos", domain.ErrInvalidInput, brdoc.CEPLength)
	}

	guardKey := "sign:" + acc.ID
	acquired, err := uc.guard.Acquire(ctx, guardKey, submissionTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("%w: firma en curso", domain.ErrConflict)
	}
	defer func() {
		if err := uc.guard.Release(context.WithoutCancel(ctx), guardKey); err != nil {
			uc.log.Warn().Err(err).Str("key", guardKey).Msg("no se pudo liberar la guardia de envío")
		}
	}()

	if existing, err := uc.orders.GetByAcceptanceID(ctx, acc.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return uc.replayed(ctx, existing)
	}

	user, product, company, err := uc.load(ctx, sess.UserID, in.ProductID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	address := entity.DeliveryAddress{
		Street:       fields.Street,
		Number:       fields.Number,
		Complement:   strings.TrimSpace(in.Complement),
		Neighborhood: strings.TrimSpace(in.Neighborhood),
		CEP:          cep,
		City:         strings.TrimSpace(in.City),
		State:        strings.ToUpper(strings.TrimSpace(in.State)),
	}
	address.Full = address.ComposeFull()
	contactPhone := phone.NormalizeE164(fields.Phone)

	orderID := uuid.New().String()
	data, total, residual := BuildData(BuildInput{
		OrderID:    orderID,
		Revision:   1,
		User:       user,
		Product:    product,
		Company:    company,
		Name:       in.Name,
		Address:    address.Full,
		Phone:      contactPhone,
		Email:      fields.Email,
		StartDate:  now,
		AcceptedAt: acc.AcceptedAt,
		TermMonths: uc.cfg.TermMonths,
	})

	key, err := uc.docs.Issue(ctx, data)
	if err != nil {
		return nil, err
	}

	o := &entity.Order{
		ID:               orderID,
		UserID:           user.ID,
		ProductID:        product.ID,
		CompanyID:        user.CompanyID,
		Status:           entity.OrderStatusContractSigned,
		SignedAt:         now,
		DeliveryAddress:  address,
		ContractURL:      key,
		ContractRevision: 1,
		ContactName:      data.Subscriber.Name,
		ContactEmail:     fields.Email,
		ContactPhone:     contactPhone,
		AcceptanceID:     acc.ID,
		AcceptedAt:       acc.AcceptedAt,
		AcceptanceIP:     acc.IP,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	msg := notification.ContractSigned(o.ID, fields.Email, data.Subscriber.Name, product.Brand, product.Model, key, now)

	err = uc.tx.RunOrder(ctx, func(orderRepo repository.OrderRepository, outboxRepo repository.OutboxRepository) error {
		if err := orderRepo.Create(ctx, o); err != nil {
			return err
		}
		return outboxRepo.Insert(ctx, msg)
	})
	if errors.Is(err, domain.ErrDuplicate) {
		// otro proceso creó el pedido con este aceite entre la consulta y el insert
		existing, getErr := uc.orders.GetByAcceptanceID(ctx, acc.ID)
		if getErr != nil {
			return nil, getErr
		}
		if existing != nil {
			return uc.replayed(ctx, existing)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("crear pedido: %w", err)
	}
	uc.metrics.OrderSigned()
	uc.log.Info().Str("order_id", o.ID).Str("user_id", user.ID).Str("product_id", product.ID).Str("contract", key).Msg("contrato firmado")

	// Actualización de contacto: best-effort, el pedido ya está confirmado.
	if err := uc.users.UpdateContact(ctx, user.ID, fields.Email, contactPhone); err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Str("order_id", o.ID).Msg("no se pudo actualizar el contacto del usuario")
	}
	if err := uc.publisher.Publish(ctx, msg.ID); err != nil {
		uc.log.Warn().Err(err).Str("order_id", o.ID).Str("outbox_id", msg.ID).Msg("no se pudo publicar la confirmación")
	}

	acc.OrderID = o.ID
	if err := uc.sessions.Save(ctx, sess); err != nil {
		uc.log.Warn().Err(err).Str("session_id", sess.ID).Msg("no se pudo marcar el aceite como consumido")
	}

	text := fmt.Sprintf("Olá, assinei o contrato do %s %s! Segue meu contato.", product.Brand, product.Model)
	return &dto.SignContractResponse{
		Order:        ToOrderResponse(o),
		TotalMonthly: total,
		Residual:     residual,
		WhatsAppLink: phone.WhatsAppLink("", text),
	}, nil
}

// load obtiene usuario, producto y empresa en paralelo.
func (uc *UseCase) load(ctx context.Context, userID, productID string) (*entity.User, *entity.Product, *entity.Company, error) {
	var (
		user    *entity.User
		product *entity.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := uc.users.GetByID(gctx, userID)
		user = u
		return err
	})
	g.Go(func() error {
		p, err := uc.products.GetByID(gctx, productID)
		product = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	if user == nil {
		return nil, nil, nil, domain.ErrUserNotFound
	}
	if !user.Active {
		return nil, nil, nil, domain.ErrUserInactive
	}
	if product == nil || !product.Active {
		return nil, nil, nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	var company *entity.Company
	if user.CompanyID != "" {
		c, err := uc.companies.GetByID(ctx, user.CompanyID)
		if err != nil {
			return nil, nil, nil, err
		}
		company = c
	}
	return user, product, company, nil
}

func (uc *UseCase) replayed(ctx context.Context, o *entity.Order) (*dto.SignContractResponse, error) {
	product, err := uc.products.GetByID(ctx, o.ProductID)
	if err != nil {
		return nil, err
	}
	resp := &dto.SignContractResponse{Order: ToOrderResponse(o), Replayed: true}
	if product != nil {
		resp.TotalMonthly, resp.Residual = totals(product)
		text := fmt.Sprintf("Olá, assinei o contrato do %s %s! Segue meu contato.", product.Brand, product.Model)
		resp.WhatsAppLink = phone.WhatsAppLink("", text)
	}
	return resp, nil
}
