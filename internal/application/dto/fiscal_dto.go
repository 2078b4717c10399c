package dto

import "github.com/shopspring/decimal"

// LineItemRequest body de una línea de cotización para el motor fiscal.
// ClientIsContributor es opcional: si va vacío se infiere de IE + CNPJ del cliente.
type LineItemRequest struct {
	ProductCode             string          `json:"product_code"`
	Quantity                decimal.Decimal `json:"quantity"`
	UnitPrice               decimal.Decimal `json:"unit_price"`
	DiscountPercent         decimal.Decimal `json:"discount_percent"`
	DestinationUF           string          `json:"destination_uf"`
	ClientIsContributor     *bool           `json:"client_is_contributor,omitempty"`
	ClientStateRegistration string          `json:"client_state_registration,omitempty"` // IE
	ClientTaxID             string          `json:"client_tax_id,omitempty"`             // CNPJ o CPF
	IsImported              bool            `json:"is_imported,omitempty"`
}

// LineItemTaxResponse línea tributada (montos a 2 decimales).
type LineItemTaxResponse struct {
	ProductCode    string          `json:"product_code"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	ICMSBase       decimal.Decimal `json:"icms_base"`
	ICMSRate       decimal.Decimal `json:"icms_rate"`
	ICMSValue      decimal.Decimal `json:"icms_value"`
	IPIRate        decimal.Decimal `json:"ipi_rate"`
	IPIValue       decimal.Decimal `json:"ipi_value"`
	HasST          bool            `json:"has_st"`
	STBase         decimal.Decimal `json:"st_base"`
	STValueGross   decimal.Decimal `json:"st_value_gross"`
	STValue        decimal.Decimal `json:"st_value"`
	FCPSTValue     decimal.Decimal `json:"fcp_st_value"`
	TotalTax       decimal.Decimal `json:"total_tax"`
	TotalWithTax   decimal.Decimal `json:"total_with_tax"`
	CSTCode        string          `json:"cst_code"`
	Treatment      string          `json:"treatment"`
	ClientClass    string          `json:"client_class,omitempty"` // CONTRIBUTOR | NON_CONTRIBUTOR
}

// PriceQuotationRequest body para POST /api/fiscal/quotations/price.
type PriceQuotationRequest struct {
	QuotationID string            `json:"quotation_id,omitempty"`
	Items       []LineItemRequest `json:"items"`
}

// ItemError error de cálculo de una línea con la pista de corrección para el usuario.
type ItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// PricedItem resultado por línea: Result o Error, nunca ambos.
type PricedItem struct {
	Index  int                  `json:"index"`
	Result *LineItemTaxResponse `json:"result,omitempty"`
	Error  *ItemError           `json:"error,omitempty"`
}

// PriceQuotationResponse líneas tributadas y totales.
// Totals solo se informa si todas las líneas se calcularon (Complete = true).
type PriceQuotationResponse struct {
	SessionID   string                   `json:"session_id"`
	QuotationID string                   `json:"quotation_id,omitempty"`
	Items       []PricedItem             `json:"items"`
	Totals      *QuotationTotalsResponse `json:"totals,omitempty"`
	Complete    bool                     `json:"complete"`
}

// RecomputeTotalsRequest body para POST /api/fiscal/quotations/totals.
type RecomputeTotalsRequest struct {
	Items []LineItemTaxResponse `json:"items"`
}

// QuotationTotalsResponse totales de la cotización. STValue incluye FCP-ST.
type QuotationTotalsResponse struct {
	ItemCount      int             `json:"item_count"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	ICMSValue      decimal.Decimal `json:"icms_value"`
	IPIValue       decimal.Decimal `json:"ipi_value"`
	STValue        decimal.Decimal `json:"st_value"`
	FCPSTValue     decimal.Decimal `json:"fcp_st_value"`
	TotalTax       decimal.Decimal `json:"total_tax"`
	TotalWithTax   decimal.Decimal `json:"total_with_tax"`
}
