// Package docname arma nombres de archivo seguros para los aditivos generados.
package docname

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sanitize quita acentos y reemplaza espacios y barras para usar el texto en una clave de archivo.
// Ej: "Galaxy S23 Ultra/5G" -> "Galaxy_S23_Ultra-5G", "Ação" -> "Acao".
func Sanitize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.TrimSpace(folded)
	r := strings.NewReplacer(" ", "_", "/", "-", "\\", "-")
	return r.Replace(folded)
}
