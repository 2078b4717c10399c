package entity

import "github.com/shopspring/decimal"

// NCMClassification perfil de sustitución tributaria por (NCM, UF destino).
// ImportedMVA e ImportedInternalRate son opcionales (nil = sin override para importados).
type NCMClassification struct {
	NCMCode              string
	DestinationUF        string
	MVA                  decimal.Decimal // margen de valor agregado (MVA/IVA), %
	InternalRate         decimal.Decimal // alícuota interna de la UF destino, %
	FCPSTRate            decimal.Decimal // fondo de combate a la pobreza, %
	ImportedMVA          *decimal.Decimal
	ImportedInternalRate *decimal.Decimal
}
