package entity

import "github.com/shopspring/decimal"

// Valores de los indicadores S/N que llegan del espejo del ERP.
const (
	FlagYes = "S"
	FlagNo  = "N"
)

// ProductFiscalProfile perfil fiscal de un producto (espejo del ERP, solo lectura).
// OriginCode 0 = nacional; cualquier otro valor es una variante importada.
type ProductFiscalProfile struct {
	ProductCode          string
	ICMSRuleCode         string
	IPIRate              decimal.Decimal // %
	OriginCode           int
	NCMCode              string
	HasST                string // 'S' / 'N'
	ReductionOwnICMSOnly bool   // la reducción de base aplica solo al ICMS propio, no a la base ST
}

// HasSTFlag indica si el ERP marcó el producto como sujeto a ST.
func (p *ProductFiscalProfile) HasSTFlag() bool {
	return IsFlagSet(p.HasST)
}

// IsImportedOrigin indica si el código de origen corresponde a una variante importada.
func (p *ProductFiscalProfile) IsImportedOrigin() bool {
	return p.OriginCode != 0
}

// IsFlagSet interpreta un indicador S/N del ERP (acepta minúsculas y espacios).
func IsFlagSet(flag string) bool {
	for _, r := range flag {
		switch r {
		case ' ', '\t':
			continue
		case 'S', 's':
			return true
		default:
			return false
		}
	}
	return false
}
