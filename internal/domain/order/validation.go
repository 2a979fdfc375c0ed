package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/trek-api/internal/domain"
)

// SignatureFields campos obligatorios del formulario de firma.
// El nombre no se exige: si viene vacío se usa el del perfil.
type SignatureFields struct {
	Email  string
	Phone  string
	CEP    string
	Street string
	Number string
}

// ValidateSignature exige todos los campos obligatorios. El error agrupa un mensaje por campo
// faltante y envuelve domain.ErrInvalidInput.
func ValidateSignature(f SignatureFields) error {
	required := []struct {
		name  string
		value string
	}{
		{"email", f.Email},
		{"phone", f.Phone},
		{"cep", f.CEP},
		{"street", f.Street},
		{"number", f.Number},
	}
	var errs []error
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("campo requerido: %s", r.name))
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{domain.ErrInvalidInput}, errs...)...)
	}
	return nil
}
