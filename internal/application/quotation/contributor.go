package quotation

import (
	"strings"

	"github.com/jhoicas/Cotizador-api/pkg/fiscalid"
)

// Clase del cliente para el ICMS.
const (
	ClassContributor    = "CONTRIBUTOR"
	ClassNonContributor = "NON_CONTRIBUTOR"
)

// IsContributor decide la clase del cliente. El flag explícito siempre gana; sin flag,
// se considera contribuyente quien tiene inscripción estatal (IE distinta de "ISENTO")
// y un CNPJ válido. Es una heurística: un cliente mal registrado en el ERP puede quedar mal clasificado.
func IsContributor(explicit *bool, stateRegistration, taxID string) bool {
	if explicit != nil {
		return *explicit
	}
	ie := strings.ToUpper(strings.TrimSpace(stateRegistration))
	if ie == "" || ie == "ISENTO" || len(fiscalid.Digits(ie)) == 0 {
		return false
	}
	return fiscalid.ValidateCNPJ(taxID) == nil
}

func classOf(isContributor bool) string {
	if isContributor {
		return ClassContributor
	}
	return ClassNonContributor
}
