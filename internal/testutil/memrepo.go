// Package testutil reúne repositorios en memoria y dobles de prueba compartidos por los tests
// de la capa de aplicación y de HTTP.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/repository"
)

// ============================================================================
// MEMORY STORE
// ============================================================================

// Store base en memoria con inyección de errores. Es seguro para uso concurrente.
type Store struct {
	txMu      sync.Mutex // serializa las transacciones
	mu        sync.Mutex
	companies map[string]entity.Company
	products  map[string]entity.Product
	users     map[string]entity.User
	orders    map[string]entity.Order
	outbox    map[string]entity.OutboxMessage

	// Inyección de errores
	CreateOrderErr   error
	InsertOutboxErr  error
	UpdateContactErr error
	TxErr            error
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		companies: make(map[string]entity.Company),
		products:  make(map[string]entity.Product),
		users:     make(map[string]entity.User),
		orders:    make(map[string]entity.Order),
		outbox:    make(map[string]entity.OutboxMessage),
	}
}

// Repositorios sobre el store.
func (s *Store) Companies() repository.CompanyRepository { return companyRepo{s} }
func (s *Store) Products() repository.ProductRepository  { return productRepo{s} }
func (s *Store) Users() repository.UserRepository        { return userRepo{s} }
func (s *Store) Orders() repository.OrderRepository      { return orderRepo{s} }
func (s *Store) Outbox() repository.OutboxRepository     { return outboxRepo{s} }

// RunOrder ejecuta fn como una transacción: si fn falla se restauran pedidos y outbox.
func (s *Store) RunOrder(ctx context.Context, fn func(repository.OrderRepository, repository.OutboxRepository) error) error {
	if s.TxErr != nil {
		return s.TxErr
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	orders := make(map[string]entity.Order, len(s.orders))
	for k, v := range s.orders {
		orders[k] = v
	}
	outbox := make(map[string]entity.OutboxMessage, len(s.outbox))
	for k, v := range s.outbox {
		outbox[k] = v
	}
	s.mu.Unlock()

	if err := fn(orderRepo{s}, outboxRepo{s}); err != nil {
		s.mu.Lock()
		s.orders = orders
		s.outbox = outbox
		s.mu.Unlock()
		return err
	}
	return nil
}

// Helpers de siembra y lectura para los tests.

func (s *Store) PutCompany(c entity.Company) { s.mu.Lock(); s.companies[c.ID] = c; s.mu.Unlock() }
func (s *Store) PutProduct(p entity.Product) { s.mu.Lock(); s.products[p.ID] = p; s.mu.Unlock() }
func (s *Store) PutUser(u entity.User)       { s.mu.Lock(); s.users[u.ID] = u; s.mu.Unlock() }
func (s *Store) PutOrder(o entity.Order)     { s.mu.Lock(); s.orders[o.ID] = o; s.mu.Unlock() }

// AllOrders devuelve los pedidos ordenados por fecha de creación.
func (s *Store) AllOrders() []entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// OutboxByKind devuelve las entradas del outbox de un tipo.
func (s *Store) OutboxByKind(kind string) []entity.OutboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.OutboxMessage
	for _, m := range s.outbox {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// User devuelve el usuario guardado.
func (s *Store) User(id string) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

// ── Company ─────────────────────────────────────────────────────────────────

type companyRepo struct{ s *Store }

func (r companyRepo) Create(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.companies {
		if existing.CNPJ == c.CNPJ {
			return domain.ErrDuplicate
		}
	}
	r.s.companies[c.ID] = *c
	return nil
}

func (r companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r companyRepo) GetByCNPJ(_ context.Context, cnpj string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.companies {
		if c.CNPJ == cnpj {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r companyRepo) List(_ context.Context, limit, offset int) ([]*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Company, 0, len(r.s.companies))
	for _, c := range r.s.companies {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// ── Product ─────────────────────────────────────────────────────────────────

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = *p
	return nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r productRepo) List(_ context.Context, onlyActive bool, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if onlyActive && !p.Active {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName() < out[j].DisplayName() })
	return page(out, limit, offset), nil
}

func (r productRepo) SetActive(_ context.Context, id string, active bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return false, nil
	}
	p.Active = active
	p.UpdatedAt = time.Now()
	r.s.products[id] = p
	return true, nil
}

// ── User ────────────────────────────────────────────────────────────────────

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.CPF == u.CPF {
			return domain.ErrDuplicate
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) FindByCPFAndBirthDate(_ context.Context, cpf string, birthDate time.Time) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.CPF == cpf && sameDay(u.BirthDate, birthDate) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) UpdateContact(_ context.Context, id, email, phone string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UpdateContactErr != nil {
		return r.s.UpdateContactErr
	}
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Email = email
	u.Phone = phone
	r.s.users[id] = u
	return nil
}

func (r userRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.users {
		if companyID != "" && u.CompanyID != companyID {
			continue
		}
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// ── Order ───────────────────────────────────────────────────────────────────

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.CreateOrderErr != nil {
		return r.s.CreateOrderErr
	}
	for _, existing := range r.s.orders {
		if o.AcceptanceID != "" && existing.AcceptanceID == o.AcceptanceID {
			return domain.ErrDuplicate
		}
	}
	r.s.orders[o.ID] = *o
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r orderRepo) GetByAcceptanceID(_ context.Context, acceptanceID string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.AcceptanceID == acceptanceID {
			o := o
			return &o, nil
		}
	}
	return nil, nil
}

func (r orderRepo) GetDetail(_ context.Context, id string) (*entity.OrderDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return r.detail(o), nil
}

// detail arma el join; requiere el lock tomado.
func (r orderRepo) detail(o entity.Order) *entity.OrderDetail {
	d := &entity.OrderDetail{Order: o}
	if u, ok := r.s.users[o.UserID]; ok {
		d.UserName, d.UserCPF, d.UserEmail = u.Name, u.CPF, u.Email
	}
	if c, ok := r.s.companies[o.CompanyID]; ok {
		d.CompanyName = c.Name
	}
	if p, ok := r.s.products[o.ProductID]; ok {
		d.ProductBrand, d.ProductModel = p.Brand, p.Model
		d.ProductMonthly, d.ProductInsurance = p.MonthlyPrice, p.InsurancePrice
	}
	return d
}

func (r orderRepo) ListDetails(_ context.Context, f repository.OrderFilter) ([]*entity.OrderDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.OrderDetail
	for _, o := range r.s.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.CompanyID != "" && o.CompanyID != f.CompanyID {
			continue
		}
		if len(f.Statuses) > 0 && !contains(f.Statuses, o.Status) {
			continue
		}
		out = append(out, r.detail(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignedAt.After(out[j].SignedAt) })
	return page(out, f.Limit, f.Offset), nil
}

func (r orderRepo) TransitionStatus(_ context.Context, c repository.StatusChange) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[c.OrderID]
	if !ok || o.Status != c.FromStatus {
		return false, nil
	}
	now := time.Now()
	o.Status = c.ToStatus
	if c.IMEI != "" {
		imei := c.IMEI
		o.IMEI = &imei
	}
	if c.ToStatus == entity.OrderStatusDispatched {
		o.DispatchedAt = &now
	}
	o.UpdatedAt = now
	r.s.orders[o.ID] = o
	return true, nil
}

func (r orderRepo) SetContract(_ context.Context, orderID, contractURL string, revision int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.ContractURL = contractURL
	o.ContractRevision = revision
	r.s.orders[orderID] = o
	return nil
}

// ── Outbox ──────────────────────────────────────────────────────────────────

type outboxRepo struct{ s *Store }

func (r outboxRepo) Insert(_ context.Context, m *entity.OutboxMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.InsertOutboxErr != nil {
		return r.s.InsertOutboxErr
	}
	r.s.outbox[m.ID] = *m
	return nil
}

func (r outboxRepo) GetByID(_ context.Context, id string) (*entity.OutboxMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.outbox[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r outboxRepo) mark(id, status, lastError string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.outbox[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.Status = status
	if status != entity.OutboxStatusEnqueued {
		m.Attempts++
	}
	m.LastError = lastError
	m.UpdatedAt = time.Now()
	r.s.outbox[id] = m
	return nil
}

func (r outboxRepo) MarkEnqueued(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.outbox[id]
	if !ok || (m.Status != entity.OutboxStatusPending && m.Status != entity.OutboxStatusFailed) {
		return false, nil
	}
	m.Status = entity.OutboxStatusEnqueued
	m.UpdatedAt = time.Now()
	r.s.outbox[id] = m
	return true, nil
}

func (r outboxRepo) MarkSucceeded(_ context.Context, id string) error {
	return r.mark(id, entity.OutboxStatusSucceeded, "")
}

func (r outboxRepo) MarkFailed(_ context.Context, id, lastError string) error {
	return r.mark(id, entity.OutboxStatusFailed, lastError)
}

func (r outboxRepo) ListPending(_ context.Context, limit int) ([]*entity.OutboxMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.OutboxMessage
	for _, m := range r.s.outbox {
		if m.Status == entity.OutboxStatusPending || m.Status == entity.OutboxStatusFailed {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, limit, 0), nil
}

// ── helpers ─────────────────────────────────────────────────────────────────

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ErrInjected error genérico para simular fallos de infraestructura.
var ErrInjected = errors.New("fallo simulado")
