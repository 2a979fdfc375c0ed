package contract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/entity"
	"github.com/jhoicas/trek-api/internal/domain/pricing"
	"github.com/jhoicas/trek-api/pkg/docname"
	"github.com/jhoicas/trek-api/pkg/logger"
)

// FallbackKey nombre genérico usado una sola vez si la clave principal no se puede escribir.
const FallbackKey = "aditivo_temp.pdf"

// IMEIPlaceholder línea en blanco del aditivo mientras no hay IMEI vinculado.
const IMEIPlaceholder = "___________________________________"

// Subscriber sección 1 del aditivo.
type Subscriber struct {
	Name    string
	CPF     string
	Address string
	Phone   string
	Email   string
}

// Device sección 2 del aditivo. IMEI vacío se imprime como IMEIPlaceholder.
type Device struct {
	Brand       string
	Model       string
	Description string
	IMEI        string
}

// Terms sección 3. Los valores monetarios viajan como texto: el generador los formatea
// como "R$ 0.00" y, si no son numéricos, los imprime tal cual.
type Terms struct {
	StartDate    time.Time
	EndDate      time.Time
	Months       int
	MonthlyTotal string
	Residual     string
}

// Issuer empresa contratante impresa en el encabezado.
type Issuer struct {
	Name    string
	CNPJ    string
	Address string
	LogoURL string
}

// Data paquete completo para renderizar un aditivo.
type Data struct {
	OrderID    string
	Revision   int
	Subscriber Subscriber
	Device     Device
	Terms      Terms
	Company    Issuer
	AcceptedAt time.Time
}

// BuildInput datos de origen para armar el paquete del aditivo.
type BuildInput struct {
	OrderID    string
	Revision   int
	User       *entity.User
	Product    *entity.Product
	Company    *entity.Company
	Name       string // nombre informado en la firma; vacío = el del perfil
	Address    string
	Phone      string
	Email      string
	IMEI       string
	StartDate  time.Time
	AcceptedAt time.Time
	TermMonths int
}

// BuildData arma el paquete del aditivo calculando los valores con pricing.CalculateTotals.
// Devuelve también los totales para que el caller los exponga.
func BuildData(in BuildInput) (Data, decimal.Decimal, decimal.Decimal) {
	total, residual := pricing.CalculateTotals(*in.Product)
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = in.User.Name
	}
	start := in.StartDate
	return Data{
		OrderID:  in.OrderID,
		Revision: in.Revision,
		Subscriber: Subscriber{
			Name:    name,
			CPF:     in.User.CPF,
			Address: in.Address,
			Phone:   in.Phone,
			Email:   in.Email,
		},
		Device: Device{
			Brand:       in.Product.Brand,
			Model:       in.Product.Model,
			Description: in.Product.Description,
			IMEI:        in.IMEI,
		},
		Terms: Terms{
			StartDate:    start,
			EndDate:      start.AddDate(0, in.TermMonths, 0),
			Months:       in.TermMonths,
			MonthlyTotal: total.StringFixed(2),
			Residual:     residual.StringFixed(2),
		},
		Company:    issuerFrom(in.Company),
		AcceptedAt: in.AcceptedAt,
	}, total, residual
}

// issuerFrom usa una empresa genérica cuando el usuario no tiene empresa cargada.
func issuerFrom(c *entity.Company) Issuer {
	if c == nil {
		return Issuer{Name: "Trek", CNPJ: "00.000.000/0001-00"}
	}
	return Issuer{Name: c.Name, CNPJ: c.CNPJ, Address: c.Address, LogoURL: c.LogoURL}
}

// Naming esquema de claves de documentos.
type Naming string

const (
	// NamingRevisioned contracts/{order_id}/aditivo_r{rev}.pdf: cada regeneración es un archivo nuevo.
	NamingRevisioned Naming = "revisioned"
	// NamingLegacy aditivo_{cpf}_{modelo}.pdf: regenerar sobrescribe el archivo anterior.
	NamingLegacy Naming = "legacy"
)

// ParseNaming convierte el valor de configuración; vacío = revisioned.
func ParseNaming(s string) (Naming, error) {
	switch Naming(strings.ToLower(strings.TrimSpace(s))) {
	case "", NamingRevisioned:
		return NamingRevisioned, nil
	case NamingLegacy:
		return NamingLegacy, nil
	}
	return "", fmt.Errorf("%w: DOCUMENT_NAMING desconocido %q", domain.ErrInvalidInput, s)
}

// Key clave del documento para el paquete dado.
func (n Naming) Key(d Data) string {
	if n == NamingLegacy {
		return "aditivo_" + docname.Sanitize(d.Subscriber.CPF) + "_" + docname.Sanitize(d.Device.Model) + ".pdf"
	}
	return fmt.Sprintf("contracts/%s/aditivo_r%d.pdf", d.OrderID, d.Revision)
}

// DocumentService genera y guarda aditivos.
type DocumentService struct {
	gen    Generator
	store  Store
	naming Naming
	log    *logger.Logger
}

// NewDocumentService construye el servicio de documentos.
func NewDocumentService(gen Generator, store Store, naming Naming, log *logger.Logger) *DocumentService {
	return &DocumentService{gen: gen, store: store, naming: naming, log: log}
}

// Issue renderiza y guarda el aditivo. Si la clave principal falla reintenta una sola vez con
// FallbackKey; si eso también falla devuelve el error. Retorna la clave efectivamente escrita.
func (s *DocumentService) Issue(ctx context.Context, d Data) (string, error) {
	content, err := s.gen.Generate(ctx, d)
	if err != nil {
		return "", fmt.Errorf("generar aditivo: %w", err)
	}
	key := s.naming.Key(d)
	if err := s.store.Put(ctx, key, content); err != nil {
		s.log.Warn().Err(err).Str("order_id", d.OrderID).Str("key", key).Msg("no se pudo guardar el aditivo, usando nombre genérico")
		if err2 := s.store.Put(ctx, FallbackKey, content); err2 != nil {
			return "", fmt.Errorf("guardar aditivo: %w", err2)
		}
		return FallbackKey, nil
	}
	return key, nil
}

// Open devuelve el contenido de un documento guardado.
func (s *DocumentService) Open(ctx context.Context, key string) ([]byte, error) {
	return s.store.Get(ctx, key)
}
