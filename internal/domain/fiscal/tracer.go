package fiscal

import "github.com/shopspring/decimal"

// Tracer puerto de trazas del motor. Recibe cada paso del pipeline con sus valores;
// se inyecta en el Calculator en lugar de un flag global de depuración.
type Tracer interface {
	Step(productCode, step string, values map[string]decimal.Decimal)
}

// NopTracer descarta todas las trazas.
type NopTracer struct{}

// Step no hace nada.
func (NopTracer) Step(string, string, map[string]decimal.Decimal) {}
