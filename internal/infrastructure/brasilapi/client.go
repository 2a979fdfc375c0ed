// Package brasilapi consulta CEP y CNPJ en BrasilAPI (https://brasilapi.com.br).
//
// Cualquier fallo (status distinto de 200, timeout, error de red, JSON inválido) se reporta
// como domain.ErrLookupNotFound: la consulta es una ayuda de autocompletado y nunca bloquea.
package brasilapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/application/ports"
	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/pkg/logger"
)

const (
	// DefaultBaseURL endpoint público.
	DefaultBaseURL = "https://brasilapi.com.br"

	cepTimeout  = 5 * time.Second
	cnpjTimeout = 10 * time.Second
)

var (
	_ ports.AddressLookup = (*Client)(nil)
	_ ports.CompanyLookup = (*Client)(nil)
)

// Client adaptador HTTP de BrasilAPI. Usa net/http con un timeout por tipo de consulta.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient construye el cliente; baseURL vacío usa DefaultBaseURL.
func NewClient(baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        log,
	}
}

type cepV2 struct {
	CEP          string `json:"cep"`
	State        string `json:"state"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
}

// LookupAddress GET /api/cep/v2/{cep}.
func (c *Client) LookupAddress(ctx context.Context, cep string) (*dto.AddressLookupResponse, error) {
	if len(cep) != 8 {
		return nil, domain.ErrLookupNotFound
	}
	var body cepV2
	if err := c.get(ctx, cepTimeout, "/api/cep/v2/"+cep, &body); err != nil {
		c.log.Debug().Err(err).Str("cep", cep).Msg("consulta de CEP sin resultado")
		return nil, domain.ErrLookupNotFound
	}
	return &dto.AddressLookupResponse{
		CEP:          cep,
		Street:       body.Street,
		Neighborhood: body.Neighborhood,
		City:         body.City,
		State:        body.State,
	}, nil
}

type cnpjV1 struct {
	CNPJ         string `json:"cnpj"`
	RazaoSocial  string `json:"razao_social"`
	NomeFantasia string `json:"nome_fantasia"`
	Logradouro   string `json:"logradouro"`
	Numero       string `json:"numero"`
	Complemento  string `json:"complemento"`
	Bairro       string `json:"bairro"`
	Municipio    string `json:"municipio"`
	UF           string `json:"uf"`
	CEP          string `json:"cep"`
}

// LookupCompany GET /api/cnpj/v1/{cnpj}. Nombre = razão social, o nombre fantasía si falta.
func (c *Client) LookupCompany(ctx context.Context, cnpj string) (*dto.CompanyLookupResponse, error) {
	if len(cnpj) != 14 {
		return nil, domain.ErrLookupNotFound
	}
	var body cnpjV1
	if err := c.get(ctx, cnpjTimeout, "/api/cnpj/v1/"+cnpj, &body); err != nil {
		c.log.Debug().Err(err).Str("cnpj", cnpj).Msg("consulta de CNPJ sin resultado")
		return nil, domain.ErrLookupNotFound
	}
	name := body.RazaoSocial
	if name == "" {
		name = body.NomeFantasia
	}
	return &dto.CompanyLookupResponse{CNPJ: cnpj, Name: name, Address: composeAddress(body)}, nil
}

// composeAddress "Logradouro, Número, Complemento, Bairro, Município, UF, CEP: 00000000"
// omitiendo las partes vacías.
func composeAddress(b cnpjV1) string {
	parts := make([]string, 0, 7)
	for _, p := range []string{b.Logradouro, b.Numero, b.Complemento, b.Bairro, b.Municipio, b.UF} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, "CEP: "+b.CEP)
	return strings.Join(parts, ", ")
}

func (c *Client) get(ctx context.Context, timeout time.Duration, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("brasilapi: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("brasilapi: decode: %w", err)
	}
	return nil
}
