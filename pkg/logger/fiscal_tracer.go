package logger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// FiscalTracer adapta el Logger al puerto de trazas del motor fiscal.
// Cada paso se registra en nivel debug; con nivel info o superior no cuesta nada.
type FiscalTracer struct {
	l *Logger
}

// NewFiscalTracer construye el adaptador.
func NewFiscalTracer(l *Logger) *FiscalTracer {
	return &FiscalTracer{l: l}
}

// Step registra un paso del pipeline con sus valores a 4 decimales.
func (t *FiscalTracer) Step(productCode, step string, values map[string]decimal.Decimal) {
	ev := t.l.Debug()
	if ev == nil {
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ev = ev.Str("product_code", productCode).Str("step", step)
	for _, k := range keys {
		ev = ev.Str(k, values[k].StringFixed(4))
	}
	ev.Msg("cálculo fiscal")
}
