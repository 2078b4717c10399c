package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput = errors.New("entrada inválida")

	// Datos fiscales de referencia ausentes: el motor nunca sustituye una alícuota por defecto.
	ErrMissingFiscalProfile    = errors.New("perfil fiscal del producto no encontrado")
	ErrMissingJurisdictionRule = errors.New("regla ICMS no configurada para la UF destino")
	ErrMissingClassification   = errors.New("clasificación NCM no configurada para la UF destino")
)

// CalculationError error de cálculo de una línea. Kind es uno de los sentinelas de arriba
// (errors.Is funciona contra él); Hint es el texto de corrección que se muestra al usuario.
type CalculationError struct {
	Kind        error
	ProductCode string
	Key         string // clave de búsqueda que falló (regla/UF, NCM/UF) o campo inválido
	Hint        string
}

func (e *CalculationError) Error() string {
	msg := e.Kind.Error()
	if e.ProductCode != "" {
		msg = fmt.Sprintf("%s (producto %s)", msg, e.ProductCode)
	}
	if e.Key != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Key)
	}
	return msg
}

// Unwrap expone el sentinela para errors.Is.
func (e *CalculationError) Unwrap() error {
	return e.Kind
}

// NewInvalidInput construye un error de validación para el campo indicado.
func NewInvalidInput(productCode, field, hint string) *CalculationError {
	return &CalculationError{Kind: ErrInvalidInput, ProductCode: productCode, Key: field, Hint: hint}
}

// IsMissingReferenceData indica si err corresponde a datos fiscales no configurados.
func IsMissingReferenceData(err error) bool {
	return errors.Is(err, ErrMissingFiscalProfile) ||
		errors.Is(err, ErrMissingJurisdictionRule) ||
		errors.Is(err, ErrMissingClassification)
}
