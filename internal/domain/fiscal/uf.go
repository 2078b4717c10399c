package fiscal

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var validUFs = map[string]struct{}{
	"AC": {}, "AL": {}, "AM": {}, "AP": {}, "BA": {}, "CE": {}, "DF": {}, "ES": {}, "GO": {},
	"MA": {}, "MG": {}, "MS": {}, "MT": {}, "PA": {}, "PB": {}, "PE": {}, "PI": {}, "PR": {},
	"RJ": {}, "RN": {}, "RO": {}, "RR": {}, "RS": {}, "SC": {}, "SE": {}, "SP": {}, "TO": {},
}

// NormalizeUF deja la sigla de la UF en mayúsculas y sin espacios.
func NormalizeUF(uf string) string {
	// Caser no es seguro entre goroutines; se crea uno por llamada.
	return cases.Upper(language.BrazilianPortuguese).String(strings.TrimSpace(uf))
}

// IsValidUF indica si la sigla (ya normalizada) es una de las 27 unidades federativas.
func IsValidUF(uf string) bool {
	_, ok := validUFs[uf]
	return ok
}
