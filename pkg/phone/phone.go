// Package phone normaliza celulares y arma los links de WhatsApp usados por despacho.
package phone

import (
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BR"

// NormalizeE164 formatea el número a E.164 (+5511999999999). Si no se puede parsear
// devuelve el input sin espacios en los extremos.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// WhatsAppLink arma un link wa.me con el texto pre-cargado. Si el número es válido se usa
// como destinatario; si no, el operador elige el contacto en WhatsApp.
func WhatsAppLink(recipient, text string) string {
	target := ""
	if e164 := NormalizeE164(recipient); strings.HasPrefix(e164, "+") {
		target = strings.TrimPrefix(e164, "+")
	}
	// wa.me espera %20 y no '+' para los espacios.
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/" + target + "?text=" + escaped
}
