package entity

// TaxTreatment rama fiscal que se aplicó a una línea.
type TaxTreatment int

const (
	// TreatmentNoST línea sin sustitución tributaria: solo ICMS propio e IPI.
	TreatmentNoST TaxTreatment = iota
	// TreatmentSTStandard ICMS-ST y FCP-ST calculados sobre base con MVA.
	TreatmentSTStandard
	// TreatmentSTAlreadyCollected CST 60: el ST ya fue retenido antes en la cadena.
	TreatmentSTAlreadyCollected
	// TreatmentJurisdictionOverride la UF destino fuerza alícuota fija y anula el ST.
	TreatmentJurisdictionOverride
)

var treatmentNames = map[TaxTreatment]string{
	TreatmentNoST:                 "NO_ST",
	TreatmentSTStandard:           "ST_STANDARD",
	TreatmentSTAlreadyCollected:   "ST_ALREADY_COLLECTED",
	TreatmentJurisdictionOverride: "JURISDICTION_OVERRIDE",
}

// String devuelve el código estable usado en logs y respuestas JSON.
func (t TaxTreatment) String() string {
	if s, ok := treatmentNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// MarshalText permite serializar el tratamiento como texto en JSON.
func (t TaxTreatment) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
