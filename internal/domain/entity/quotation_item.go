package entity

import "github.com/shopspring/decimal"

// LineItemInput datos de una línea de cotización que entran al motor fiscal.
// Se genera una vez por edición de la línea; el resultado se recalcula completo.
type LineItemInput struct {
	ProductCode         string
	Quantity            decimal.Decimal // > 0
	UnitPrice           decimal.Decimal // >= 0
	DiscountPercent     decimal.Decimal // 0..100
	DestinationUF       string
	ClientIsContributor bool
	IsImported          bool // se combina (OR) con el origen del perfil fiscal
}

// LineItemTaxResult línea de cotización completamente tributada.
// Todos los montos van redondeados a 2 decimales.
type LineItemTaxResult struct {
	ProductCode    string
	GrossAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	NetAmount      decimal.Decimal
	ICMSBase       decimal.Decimal
	ICMSRate       decimal.Decimal
	ICMSValue      decimal.Decimal
	IPIRate        decimal.Decimal
	IPIValue       decimal.Decimal
	HasST          bool
	STBase         decimal.Decimal
	STValueGross   decimal.Decimal
	STValue        decimal.Decimal
	FCPSTValue     decimal.Decimal
	TotalTax       decimal.Decimal
	TotalWithTax   decimal.Decimal
	CSTCode        string
	Treatment      TaxTreatment
}

// QuotationTotals totales de la cotización (suma de campos ya redondeados por línea).
// STValue incluye el FCP-ST.
type QuotationTotals struct {
	ItemCount      int
	GrossAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	NetAmount      decimal.Decimal
	ICMSValue      decimal.Decimal
	IPIValue       decimal.Decimal
	STValue        decimal.Decimal
	FCPSTValue     decimal.Decimal
	TotalTax       decimal.Decimal
	TotalWithTax   decimal.Decimal
}
