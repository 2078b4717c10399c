package repository

import (
	"context"

	"github.com/jhoicas/Cotizador-api/internal/domain/entity"
)

// FiscalRuleRepository puerto de solo lectura sobre los datos fiscales espejados del ERP.
// Las implementaciones devuelven (nil, nil) cuando el registro no existe y un error solo
// ante fallas de transporte; los reintentos son responsabilidad del llamador.
type FiscalRuleRepository interface {
	GetProductFiscalProfile(ctx context.Context, productCode string) (*entity.ProductFiscalProfile, error)
	GetICMSJurisdictionRule(ctx context.Context, icmsRuleCode, destinationUF string) (*entity.ICMSJurisdictionRule, error)
	GetNCMClassification(ctx context.Context, ncmCode, destinationUF string) (*entity.NCMClassification, error)
}
