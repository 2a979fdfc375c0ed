// Package session define la sesión explícita del usuario: se crea en el login, viaja en cada
// operación del pedido y se destruye en el logout.
package session

import (
	"context"
	"sync"
	"time"
)

// Acceptance aceite explícito del contrato para un producto. Tras la firma queda en la sesión
// con OrderID cargado: un reenvío del mismo formulario vuelve a encontrar el pedido.
type Acceptance struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	AcceptedAt time.Time `json:"accepted_at"`
	IP         string    `json:"ip"`
	OrderID    string    `json:"order_id,omitempty"`
}

// Consumed indica si el aceite ya produjo un pedido.
func (a *Acceptance) Consumed() bool { return a != nil && a.OrderID != "" }

// Session estado de un login. El ID viaja como jti del JWT.
type Session struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	CompanyID  string      `json:"company_id"`
	Role       string      `json:"role"`
	CreatedAt  time.Time   `json:"created_at"`
	ExpiresAt  time.Time   `json:"expires_at"`
	Acceptance *Acceptance `json:"acceptance,omitempty"`
}

// AcceptanceFor devuelve el aceite del producto indicado, consumido o no.
func (s *Session) AcceptanceFor(productID string) (*Acceptance, bool) {
	if s == nil || s.Acceptance == nil || s.Acceptance.ProductID != productID {
		return nil, false
	}
	return s.Acceptance, true
}

// Store persistencia de sesiones. Get devuelve (nil, nil) si no existe o expiró.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Guard evita procesar dos veces el mismo envío mientras el primero está en curso.
// Acquire devuelve false si la clave ya está tomada.
type Guard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// ── Implementaciones en memoria (sin Redis) ─────────────────────────────────

// MemoryStore sesiones en memoria del proceso. Expiran por ExpiresAt.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore construye el store en memoria.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session), now: time.Now}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	if s.Acceptance != nil {
		acc := *s.Acceptance
		cp.Acceptance = &acc
	}
	m.sessions[s.ID] = cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	if !s.ExpiresAt.IsZero() && m.now().After(s.ExpiresAt) {
		delete(m.sessions, id)
		return nil, nil
	}
	if s.Acceptance != nil {
		acc := *s.Acceptance
		s.Acceptance = &acc
	}
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// MemoryGuard guardia de envíos en memoria.
type MemoryGuard struct {
	mu   sync.Mutex
	keys map[string]time.Time
	now  func() time.Time
}

// NewMemoryGuard construye la guardia en memoria.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{keys: make(map[string]time.Time), now: time.Now}
}

var _ Guard = (*MemoryGuard)(nil)

func (g *MemoryGuard) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if exp, ok := g.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.keys[key] = now.Add(ttl)
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}
