// Package brdoc normaliza identificadores brasileños (CPF, CNPJ, CEP).
// No valida dígitos verificadores: se usan como claves opacas.
package brdoc

import (
	"strings"
	"time"
)

const (
	CPFLength  = 11
	CNPJLength = 14
	CEPLength  = 8
)

// Digits elimina todo lo que no sea dígito ("123.456.789-09" -> "12345678909").
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CPF normaliza y devuelve ok=false si no tiene 11 dígitos.
func CPF(s string) (string, bool) { return withLength(s, CPFLength) }

// CNPJ normaliza y devuelve ok=false si no tiene 14 dígitos.
func CNPJ(s string) (string, bool) { return withLength(s, CNPJLength) }

// CEP normaliza y devuelve ok=false si no tiene 8 dígitos.
func CEP(s string) (string, bool) { return withLength(s, CEPLength) }

func withLength(s string, n int) (string, bool) {
	d := Digits(s)
	return d, len(d) == n
}

// dateLayouts formatos aceptados para fechas de nacimiento: ISO y el usual en Brasil.
var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// ParseDate interpreta una fecha YYYY-MM-DD o DD/MM/YYYY (UTC, sin hora).
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
