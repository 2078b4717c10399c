package entity

import "github.com/shopspring/decimal"

// ICMSClassRule parámetros ICMS para una clase de cliente (contribuyente o consumidor final).
type ICMSClassRule struct {
	CST           string
	ICMSRate      decimal.Decimal // %
	BaseReduction decimal.Decimal // % de reducción de la base de cálculo
	HasST         string          // 'S' / 'N'
}

// HasSTFlag indica si la regla de la UF marca la operación como sujeta a ST.
func (r ICMSClassRule) HasSTFlag() bool {
	return IsFlagSet(r.HasST)
}

// ICMSJurisdictionRule regla ICMS por (código de regla, UF destino).
// Contribuyentes y no contribuyentes tributan distinto, por eso hay dos variantes.
type ICMSJurisdictionRule struct {
	ICMSRuleCode   string
	DestinationUF  string
	Contributor    ICMSClassRule
	NonContributor ICMSClassRule
}

// ForClient devuelve la variante que corresponde a la clase del cliente.
func (r *ICMSJurisdictionRule) ForClient(isContributor bool) ICMSClassRule {
	if isContributor {
		return r.Contributor
	}
	return r.NonContributor
}
