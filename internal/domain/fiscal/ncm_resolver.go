package fiscal

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cotizador-api/internal/domain/entity"
)

// NCMRates valores que alimentan la base de sustitución tributaria.
type NCMRates struct {
	MVA          decimal.Decimal
	InternalRate decimal.Decimal
	FCPSTRate    decimal.Decimal
}

// ResolveNCM elige MVA y alícuota interna. Para importados se usan los overrides del registro
// cuando existen y son > 0; la alícuota interna cae en la alícuota ICMS de la clase del cliente
// cuando no hay un valor positivo aplicable.
func ResolveNCM(ncm *entity.NCMClassification, isImported bool, classICMSRate decimal.Decimal) NCMRates {
	out := NCMRates{
		MVA:          ncm.MVA,
		InternalRate: classICMSRate,
		FCPSTRate:    ncm.FCPSTRate,
	}
	if isImported {
		if positive(ncm.ImportedMVA) {
			out.MVA = *ncm.ImportedMVA
		}
		if positive(ncm.ImportedInternalRate) {
			out.InternalRate = *ncm.ImportedInternalRate
		}
		return out
	}
	if ncm.InternalRate.IsPositive() {
		out.InternalRate = ncm.InternalRate
	}
	return out
}

func positive(d *decimal.Decimal) bool {
	return d != nil && d.IsPositive()
}
