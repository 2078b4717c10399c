package fiscal

import "github.com/shopspring/decimal"

// Precisión de redondeo: intermedios a 4 decimales, montos reportados a 2.
const (
	IntermediatePlaces int32 = 4
	ReportPlaces       int32 = 2
)

var hundred = decimal.NewFromInt(100)

// Round es la única política de redondeo del motor (mitad lejos de cero).
func Round(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// money lleva un producto/cociente a monto reportable: primero al intermedio, luego a 2 decimales.
// Todo monto que alimenta una fórmula posterior pasa por aquí antes.
func money(d decimal.Decimal) decimal.Decimal {
	return Round(Round(d, IntermediatePlaces), ReportPlaces)
}

// percentOf devuelve base × rate / 100 ya redondeado como monto.
func percentOf(base, rate decimal.Decimal) decimal.Decimal {
	return money(base.Mul(rate).Div(hundred))
}

// applyMargin devuelve base × (1 + pct/100) ya redondeado como monto.
func applyMargin(base, pct decimal.Decimal) decimal.Decimal {
	return money(base.Mul(hundred.Add(pct)).Div(hundred))
}

// reduceBy devuelve base × (1 − pct/100) ya redondeado como monto.
func reduceBy(base, pct decimal.Decimal) decimal.Decimal {
	return money(base.Mul(hundred.Sub(pct)).Div(hundred))
}
