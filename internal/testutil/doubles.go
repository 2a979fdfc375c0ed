package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/trek-api/internal/application/contract"
	"github.com/jhoicas/trek-api/internal/application/notification"
)

// ============================================================================
// DOCUMENTOS
// ============================================================================

// Generator registra cada paquete recibido y devuelve un PDF mínimo.
type Generator struct {
	mu    sync.Mutex
	Calls []contract.Data
	Err   error
}

func (g *Generator) Generate(_ context.Context, d contract.Data) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	g.Calls = append(g.Calls, d)
	return []byte(fmt.Sprintf("%%PDF-1.4 %s r%d imei=%s", d.OrderID, d.Revision, d.Device.IMEI)), nil
}

// Last último paquete generado.
func (g *Generator) Last() contract.Data {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.Calls) == 0 {
		return contract.Data{}
	}
	return g.Calls[len(g.Calls)-1]
}

// DocStore almacén de documentos en memoria. FailKeys simula claves no escribibles.
type DocStore struct {
	mu       sync.Mutex
	Files    map[string][]byte
	FailKeys map[string]bool
	FailAll  bool
}

// NewDocStore construye el almacén vacío.
func NewDocStore() *DocStore {
	return &DocStore{Files: make(map[string][]byte), FailKeys: make(map[string]bool)}
}

func (s *DocStore) Put(_ context.Context, key string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll || s.FailKeys[key] {
		return fmt.Errorf("escribir %s: %w", key, ErrInjected)
	}
	s.Files[key] = append([]byte(nil), content...)
	return nil
}

func (s *DocStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Files[key]
	if !ok {
		return nil, fmt.Errorf("leer %s: no existe", key)
	}
	return b, nil
}

// Exists informa si la clave fue escrita.
func (s *DocStore) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Files[key]
	return ok
}

// ============================================================================
// NOTIFICACIONES
// ============================================================================

// Sender registra los mensajes enviados.
type Sender struct {
	mu   sync.Mutex
	Sent []notification.Message
	Err  error
}

func (s *Sender) Send(_ context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, msg)
	return nil
}

// Count cantidad de mensajes enviados con el asunto indicado.
func (s *Sender) Count(subject string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.Sent {
		if m.Subject == subject {
			n++
		}
	}
	return n
}

// Publisher registra los ids publicados y opcionalmente los entrega.
type Publisher struct {
	mu        sync.Mutex
	Published []string
	Err       error
	Deliver   func(ctx context.Context, id string) error
}

func (p *Publisher) Publish(ctx context.Context, ids ...string) error {
	p.mu.Lock()
	p.Published = append(p.Published, ids...)
	deliver, err := p.Deliver, p.Err
	p.mu.Unlock()
	if err != nil {
		return err
	}
	if deliver != nil {
		for _, id := range ids {
			_ = deliver(ctx, id)
		}
	}
	return nil
}

var (
	_ contract.Generator     = (*Generator)(nil)
	_ contract.Store         = (*DocStore)(nil)
	_ notification.Sender    = (*Sender)(nil)
	_ notification.Publisher = (*Publisher)(nil)
)
