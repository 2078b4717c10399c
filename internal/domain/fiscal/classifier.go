package fiscal

import (
	"strings"

	"github.com/jhoicas/Cotizador-api/internal/domain"
	"github.com/jhoicas/Cotizador-api/internal/domain/entity"
)

// CSTAlreadyCollected CST 60: ICMS cobrado anteriormente por sustitución tributaria.
const CSTAlreadyCollected = "60"

// CSTs (y CSOSN 201/202/203) que implican sustitución tributaria.
var stCSTs = map[string]struct{}{
	"10": {}, "30": {}, "60": {}, "70": {}, "201": {}, "202": {}, "203": {},
}

// Señal que activó el ST (solo para trazas).
const (
	STSignalNone        = ""
	STSignalProfile     = "perfil_producto"
	STSignalRule        = "regla_uf"
	STSignalCST         = "cst"
	STSignalAlwaysST    = "lista_st"
	STSignalAlreadyPaid = "cst_60"
)

// ProductSet conjunto de códigos de producto (lista de productos siempre con ST).
type ProductSet map[string]struct{}

// NewProductSet construye el conjunto ignorando espacios y códigos vacíos.
func NewProductSet(codes []string) ProductSet {
	set := make(ProductSet, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}

// Contains indica si el código pertenece al conjunto.
func (s ProductSet) Contains(code string) bool {
	_, ok := s[strings.TrimSpace(code)]
	return ok
}

// STClassification resultado del clasificador de aplicabilidad de ST.
type STClassification struct {
	HasST     bool
	CSTCode   string
	Treatment entity.TaxTreatment
	Signal    string
}

// NormalizeCST quita espacios y ceros a la izquierda ("060" -> "60", "00" -> "0").
func NormalizeCST(cst string) string {
	cst = strings.TrimSpace(cst)
	if cst == "" {
		return ""
	}
	trimmed := strings.TrimLeft(cst, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// ClassifyST decide si la línea está sujeta a ICMS-ST. Todas las señales se combinan con OR
// y después el CST 60 (ya recaudado) fuerza la no aplicabilidad.
func ClassifyST(profile *entity.ProductFiscalProfile, rule *entity.ICMSClassRule, alwaysST ProductSet) (STClassification, error) {
	if profile == nil {
		return STClassification{}, &domain.CalculationError{Kind: domain.ErrMissingFiscalProfile}
	}
	if rule == nil {
		return STClassification{}, &domain.CalculationError{Kind: domain.ErrMissingJurisdictionRule, ProductCode: profile.ProductCode}
	}

	cst := NormalizeCST(rule.CST)
	out := STClassification{CSTCode: cst, Treatment: entity.TreatmentNoST}

	switch {
	case profile.HasSTFlag():
		out.HasST, out.Signal = true, STSignalProfile
	case rule.HasSTFlag():
		out.HasST, out.Signal = true, STSignalRule
	case isSTCST(cst):
		out.HasST, out.Signal = true, STSignalCST
	case alwaysST.Contains(profile.ProductCode):
		out.HasST, out.Signal = true, STSignalAlwaysST
	}

	if cst == CSTAlreadyCollected {
		out.HasST = false
		out.Signal = STSignalAlreadyPaid
		out.Treatment = entity.TreatmentSTAlreadyCollected
		return out, nil
	}
	if out.HasST {
		out.Treatment = entity.TreatmentSTStandard
	}
	return out, nil
}

func isSTCST(cst string) bool {
	_, ok := stCSTs[cst]
	return ok
}
