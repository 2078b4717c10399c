package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Cotizador-api/internal/domain/entity"
	"github.com/jhoicas/Cotizador-api/internal/domain/fiscal"
)

// Columnas del export del ERP (separador ';', ISO-8859-1, primera fila = cabecera):
// ncm;uf;mva;aliquota_interna;fcp_st;mva_importado;aliquota_importado
const ncmColumns = 7

// parseNCMExport lee el export de clasificaciones NCM/UF. Los decimales pueden venir con coma.
// Columnas de importado vacías = sin override.
func parseNCMExport(r io.Reader, latin1 bool) ([]entity.NCMClassification, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = ncmColumns

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("export vacío")
		}
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}

	var out []entity.NCMClassification
	seen := make(map[string]int)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leer fila: %w", err)
		}
		line, _ := cr.FieldPos(0)
		c, err := parseNCMRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		key := c.NCMCode + "/" + c.DestinationUF
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("línea %d: %s duplicado (ya en línea %d)", line, key, prev)
		}
		seen[key] = line
		out = append(out, c)
	}
	return out, nil
}

func parseNCMRecord(rec []string) (entity.NCMClassification, error) {
	ncm := strings.TrimSpace(strings.ReplaceAll(rec[0], ".", ""))
	if ncm == "" {
		return entity.NCMClassification{}, fmt.Errorf("NCM vacío")
	}
	uf := fiscal.NormalizeUF(rec[1])
	if !fiscal.IsValidUF(uf) {
		return entity.NCMClassification{}, fmt.Errorf("UF inválida %q", rec[1])
	}
	c := entity.NCMClassification{NCMCode: ncm, DestinationUF: uf}
	fields := []struct {
		name string
		dst  *decimal.Decimal
		raw  string
	}{
		{"mva", &c.MVA, rec[2]},
		{"aliquota_interna", &c.InternalRate, rec[3]},
		{"fcp_st", &c.FCPSTRate, rec[4]},
	}
	for _, f := range fields {
		d, err := parseRate(f.raw)
		if err != nil {
			return entity.NCMClassification{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = d
	}
	var err error
	if c.ImportedMVA, err = parseOptionalRate(rec[5]); err != nil {
		return entity.NCMClassification{}, fmt.Errorf("mva_importado: %w", err)
	}
	if c.ImportedInternalRate, err = parseOptionalRate(rec[6]); err != nil {
		return entity.NCMClassification{}, fmt.Errorf("aliquota_importado: %w", err)
	}
	return c, nil
}

func parseRate(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("número inválido %q", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("valor negativo %q", raw)
	}
	return d, nil
}

func parseOptionalRate(raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := parseRate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// writeSQL genera el script de upsert equivalente a aplicar las filas con -apply.
func writeSQL(w io.Writer, rows []entity.NCMClassification) error {
	if _, err := fmt.Fprintf(w, "-- Clasificaciones NCM/UF para ICMS-ST (%d filas)\n-- Generado por cmd/seed_fiscal\n\n", len(rows)); err != nil {
		return err
	}
	for _, c := range rows {
		_, err := fmt.Fprintf(w,
			"INSERT INTO erp_ncm_st_classifications (ncm_code, destination_uf, mva, internal_rate, fcp_st_rate, imported_mva, imported_internal_rate)\n"+
				"VALUES ('%s', '%s', %s, %s, %s, %s, %s)\n"+
				"ON CONFLICT (ncm_code, destination_uf) DO UPDATE SET mva = EXCLUDED.mva, internal_rate = EXCLUDED.internal_rate, "+
				"fcp_st_rate = EXCLUDED.fcp_st_rate, imported_mva = EXCLUDED.imported_mva, imported_internal_rate = EXCLUDED.imported_internal_rate;\n",
			escapeSQL(c.NCMCode), c.DestinationUF, c.MVA.String(), c.InternalRate.String(), c.FCPSTRate.String(),
			sqlOptional(c.ImportedMVA), sqlOptional(c.ImportedInternalRate),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func sqlOptional(d *decimal.Decimal) string {
	if d == nil {
		return "NULL"
	}
	return d.String()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
