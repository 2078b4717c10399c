package fiscal

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cotizador-api/internal/domain/entity"
)

// RecomputeTotals suma los campos ya redondeados de cada línea. No aplica reglas fiscales;
// el total ST incluye el FCP-ST.
func RecomputeTotals(items []entity.LineItemTaxResult) entity.QuotationTotals {
	t := entity.QuotationTotals{
		ItemCount:      len(items),
		GrossAmount:    decimal.Zero,
		DiscountAmount: decimal.Zero,
		NetAmount:      decimal.Zero,
		ICMSValue:      decimal.Zero,
		IPIValue:       decimal.Zero,
		STValue:        decimal.Zero,
		FCPSTValue:     decimal.Zero,
		TotalTax:       decimal.Zero,
		TotalWithTax:   decimal.Zero,
	}
	for i := range items {
		it := &items[i]
		t.GrossAmount = t.GrossAmount.Add(it.GrossAmount)
		t.DiscountAmount = t.DiscountAmount.Add(it.DiscountAmount)
		t.NetAmount = t.NetAmount.Add(it.NetAmount)
		t.ICMSValue = t.ICMSValue.Add(it.ICMSValue)
		t.IPIValue = t.IPIValue.Add(it.IPIValue)
		t.STValue = t.STValue.Add(it.STValue).Add(it.FCPSTValue)
		t.FCPSTValue = t.FCPSTValue.Add(it.FCPSTValue)
		t.TotalTax = t.TotalTax.Add(it.TotalTax)
		t.TotalWithTax = t.TotalWithTax.Add(it.TotalWithTax)
	}
	return t
}
