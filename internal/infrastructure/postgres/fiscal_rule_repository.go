package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cotizador-api/internal/domain/entity"
	"github.com/jhoicas/Cotizador-api/internal/domain/repository"
)

var _ repository.FiscalRuleRepository = (*FiscalRuleRepo)(nil)

// FiscalRuleRepo implementación de FiscalRuleRepository sobre las tablas espejo del ERP.
// Solo lectura: la sincronización de las tablas ocurre fuera de este servicio.
type FiscalRuleRepo struct {
	q Querier
}

// NewFiscalRuleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFiscalRuleRepository(q Querier) *FiscalRuleRepo {
	return &FiscalRuleRepo{q: q}
}

// GetProductFiscalProfile obtiene el perfil fiscal por código de producto.
func (r *FiscalRuleRepo) GetProductFiscalProfile(ctx context.Context, productCode string) (*entity.ProductFiscalProfile, error) {
	query := `
		SELECT product_code, icms_rule_code, ipi_rate, origin_code, ncm_code, has_st, reduction_own_icms_only
		FROM erp_product_fiscal_profiles WHERE product_code = $1`
	var p entity.ProductFiscalProfile
	err := r.q.QueryRow(ctx, query, productCode).Scan(
		&p.ProductCode, &p.ICMSRuleCode, &p.IPIRate, &p.OriginCode, &p.NCMCode, &p.HasST, &p.ReductionOwnICMSOnly,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product fiscal profile: %w", err)
	}
	return &p, nil
}

// GetICMSJurisdictionRule obtiene la regla ICMS por (regla, UF destino) con ambas clases de cliente.
func (r *FiscalRuleRepo) GetICMSJurisdictionRule(ctx context.Context, icmsRuleCode, destinationUF string) (*entity.ICMSJurisdictionRule, error) {
	query := `
		SELECT icms_rule_code, destination_uf,
		       contributor_cst, contributor_icms_rate, contributor_base_reduction, contributor_has_st,
		       non_contributor_cst, non_contributor_icms_rate, non_contributor_base_reduction, non_contributor_has_st
		FROM erp_icms_jurisdiction_rules WHERE icms_rule_code = $1 AND destination_uf = $2`
	var rule entity.ICMSJurisdictionRule
	err := r.q.QueryRow(ctx, query, icmsRuleCode, destinationUF).Scan(
		&rule.ICMSRuleCode, &rule.DestinationUF,
		&rule.Contributor.CST, &rule.Contributor.ICMSRate, &rule.Contributor.BaseReduction, &rule.Contributor.HasST,
		&rule.NonContributor.CST, &rule.NonContributor.ICMSRate, &rule.NonContributor.BaseReduction, &rule.NonContributor.HasST,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get icms jurisdiction rule: %w", err)
	}
	return &rule, nil
}

// GetNCMClassification obtiene el perfil de ST por (NCM, UF destino). Los overrides de importados son NULL si no aplican.
func (r *FiscalRuleRepo) GetNCMClassification(ctx context.Context, ncmCode, destinationUF string) (*entity.NCMClassification, error) {
	query := `
		SELECT ncm_code, destination_uf, mva, internal_rate, fcp_st_rate, imported_mva, imported_internal_rate
		FROM erp_ncm_st_classifications WHERE ncm_code = $1 AND destination_uf = $2`
	var (
		c                            entity.NCMClassification
		importedMVA, importedInternal decimal.NullDecimal
	)
	err := r.q.QueryRow(ctx, query, ncmCode, destinationUF).Scan(
		&c.NCMCode, &c.DestinationUF, &c.MVA, &c.InternalRate, &c.FCPSTRate, &importedMVA, &importedInternal,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ncm classification: %w", err)
	}
	c.ImportedMVA = nullableDecimal(importedMVA)
	c.ImportedInternalRate = nullableDecimal(importedInternal)
	return &c, nil
}

func nullableDecimal(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	v := n.Decimal
	return &v
}

// SaveNCMClassification inserta o actualiza el perfil de ST de un par NCM/UF.
// Solo lo usa la carga inicial (cmd/seed_fiscal); en producción las tablas las sincroniza el ERP.
func (r *FiscalRuleRepo) SaveNCMClassification(ctx context.Context, c *entity.NCMClassification) error {
	query := `
		INSERT INTO erp_ncm_st_classifications
			(ncm_code, destination_uf, mva, internal_rate, fcp_st_rate, imported_mva, imported_internal_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ncm_code, destination_uf) DO UPDATE SET
			mva = EXCLUDED.mva,
			internal_rate = EXCLUDED.internal_rate,
			fcp_st_rate = EXCLUDED.fcp_st_rate,
			imported_mva = EXCLUDED.imported_mva,
			imported_internal_rate = EXCLUDED.imported_internal_rate`
	_, err := r.q.Exec(ctx, query,
		c.NCMCode, c.DestinationUF, c.MVA, c.InternalRate, c.FCPSTRate,
		toNullDecimal(c.ImportedMVA), toNullDecimal(c.ImportedInternalRate),
	)
	if err != nil {
		return fmt.Errorf("save ncm classification %s/%s: %w", c.NCMCode, c.DestinationUF, err)
	}
	return nil
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
