package fiscal

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cotizador-api/internal/domain"
	"github.com/jhoicas/Cotizador-api/internal/domain/entity"
	"github.com/jhoicas/Cotizador-api/internal/domain/repository"
)

// Policy datos de negocio configurables del motor.
type Policy struct {
	// AlwaysSTProducts productos que siempre llevan ST (lista de excepciones del negocio).
	AlwaysSTProducts []string
	// JurisdictionOverrides UF destino -> alícuota ICMS forzada; anula el ST en esa UF.
	JurisdictionOverrides map[string]decimal.Decimal
}

// DefaultPolicy política observada en producción: GO con ICMS fijo de 7 % y sin ST.
func DefaultPolicy() Policy {
	return Policy{
		JurisdictionOverrides: map[string]decimal.Decimal{"GO": decimal.NewFromInt(7)},
	}
}

// Calculator motor de cálculo fiscal por línea de cotización (servicio de dominio).
// No guarda estado mutable: se puede usar desde varias goroutines a la vez.
type Calculator struct {
	repo      repository.FiscalRuleRepository
	alwaysST  ProductSet
	overrides map[string]decimal.Decimal
	tracer    Tracer
}

// NewCalculator construye el motor. tracer puede ser nil.
func NewCalculator(repo repository.FiscalRuleRepository, policy Policy, tracer Tracer) *Calculator {
	if tracer == nil {
		tracer = NopTracer{}
	}
	overrides := make(map[string]decimal.Decimal, len(policy.JurisdictionOverrides))
	for uf, rate := range policy.JurisdictionOverrides {
		overrides[NormalizeUF(uf)] = rate
	}
	return &Calculator{
		repo:      repo,
		alwaysST:  NewProductSet(policy.AlwaysSTProducts),
		overrides: overrides,
		tracer:    tracer,
	}
}

// ValidateInput rechaza entradas inválidas antes de cualquier consulta.
func ValidateInput(in entity.LineItemInput) error {
	code := strings.TrimSpace(in.ProductCode)
	if code == "" {
		return domain.NewInvalidInput("", "product_code", "informe el código del producto")
	}
	if !in.Quantity.IsPositive() {
		return domain.NewInvalidInput(code, "quantity", "la cantidad debe ser mayor que cero")
	}
	if in.UnitPrice.IsNegative() {
		return domain.NewInvalidInput(code, "unit_price", "el precio unitario no puede ser negativo")
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
		return domain.NewInvalidInput(code, "discount_percent", "el descuento debe estar entre 0 y 100")
	}
	if !IsValidUF(NormalizeUF(in.DestinationUF)) {
		return domain.NewInvalidInput(code, "destination_uf", "UF destino inválida")
	}
	return nil
}

// CalculateLineItem calcula ICMS, IPI, ICMS-ST y FCP-ST de una línea.
// Consulta el perfil fiscal y la regla ICMS siempre; la clasificación NCM solo si aplica ST.
func (c *Calculator) CalculateLineItem(ctx context.Context, in entity.LineItemInput) (*entity.LineItemTaxResult, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(in.ProductCode)
	uf := NormalizeUF(in.DestinationUF)

	profile, err := c.repo.GetProductFiscalProfile(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("consultar perfil fiscal %s: %w", code, err)
	}
	if profile == nil {
		return nil, &domain.CalculationError{
			Kind:        domain.ErrMissingFiscalProfile,
			ProductCode: code,
			Key:         code,
			Hint:        "sincronice el perfil fiscal del producto desde el ERP",
		}
	}

	rule, err := c.repo.GetICMSJurisdictionRule(ctx, profile.ICMSRuleCode, uf)
	if err != nil {
		return nil, fmt.Errorf("consultar regla ICMS %s/%s: %w", profile.ICMSRuleCode, uf, err)
	}
	if rule == nil {
		return nil, &domain.CalculationError{
			Kind:        domain.ErrMissingJurisdictionRule,
			ProductCode: code,
			Key:         profile.ICMSRuleCode + "/" + uf,
			Hint:        "regla ICMS no configurada para esta regla/UF",
		}
	}
	classRule := rule.ForClient(in.ClientIsContributor)

	cls, err := ClassifyST(profile, &classRule, c.alwaysST)
	if err != nil {
		return nil, err
	}
	overrideRate, overridden := c.overrides[uf]
	if overridden {
		cls.HasST = false
		cls.Treatment = entity.TreatmentJurisdictionOverride
	}

	var rates NCMRates
	if cls.Treatment == entity.TreatmentSTStandard {
		ncm, err := c.repo.GetNCMClassification(ctx, profile.NCMCode, uf)
		if err != nil {
			return nil, fmt.Errorf("consultar clasificación NCM %s/%s: %w", profile.NCMCode, uf, err)
		}
		if ncm == nil {
			return nil, &domain.CalculationError{
				Kind:        domain.ErrMissingClassification,
				ProductCode: code,
				Key:         profile.NCMCode + "/" + uf,
				Hint:        "clasificación tributaria no configurada para este par NCM/UF",
			}
		}
		imported := in.IsImported || profile.IsImportedOrigin()
		rates = ResolveNCM(ncm, imported, classRule.ICMSRate)
	}

	res := c.price(line{
		input:        in,
		productCode:  code,
		profile:      profile,
		rule:         classRule,
		cls:          cls,
		rates:        rates,
		overrideRate: overrideRate,
	})
	return &res, nil
}

// line agrupa las entradas ya resueltas de una línea.
type line struct {
	input        entity.LineItemInput
	productCode  string
	profile      *entity.ProductFiscalProfile
	rule         entity.ICMSClassRule
	cls          STClassification
	rates        NCMRates
	overrideRate decimal.Decimal
}

// price ejecuta el pipeline fijo de cálculo sobre datos ya resueltos.
func (c *Calculator) price(l line) entity.LineItemTaxResult {
	in := l.input
	res := entity.LineItemTaxResult{
		ProductCode:  l.productCode,
		CSTCode:      l.cls.CSTCode,
		Treatment:    l.cls.Treatment,
		IPIRate:      l.profile.IPIRate,
		ICMSRate:     l.rule.ICMSRate,
		STBase:       decimal.Zero,
		STValueGross: decimal.Zero,
		STValue:      decimal.Zero,
		FCPSTValue:   decimal.Zero,
	}

	res.GrossAmount = money(in.Quantity.Mul(in.UnitPrice))
	res.DiscountAmount = percentOf(res.GrossAmount, in.DiscountPercent)
	res.NetAmount = res.GrossAmount.Sub(res.DiscountAmount)
	res.IPIValue = percentOf(res.NetAmount, res.IPIRate)

	res.ICMSBase = res.NetAmount
	if l.rule.BaseReduction.IsPositive() {
		res.ICMSBase = reduceBy(res.NetAmount, l.rule.BaseReduction)
	}
	res.ICMSValue = percentOf(res.ICMSBase, res.ICMSRate)
	c.tracer.Step(l.productCode, "icms", map[string]decimal.Decimal{
		"gross":     res.GrossAmount,
		"discount":  res.DiscountAmount,
		"net":       res.NetAmount,
		"ipi":       res.IPIValue,
		"icms_base": res.ICMSBase,
		"icms_rate": res.ICMSRate,
		"icms":      res.ICMSValue,
	})

	switch l.cls.Treatment {
	case entity.TreatmentNoST, entity.TreatmentSTAlreadyCollected:
		// solo ICMS propio e IPI
	case entity.TreatmentSTStandard:
		res.HasST = true
		stBaseInput := res.ICMSBase
		if l.profile.ReductionOwnICMSOnly {
			stBaseInput = res.NetAmount
		}
		res.STBase = applyMargin(stBaseInput.Add(res.IPIValue), l.rates.MVA)
		res.STValueGross = percentOf(res.STBase, l.rates.InternalRate)
		res.STValue = decimal.Max(decimal.Zero, res.STValueGross.Sub(res.ICMSValue))
		if l.rates.FCPSTRate.IsPositive() {
			res.FCPSTValue = percentOf(res.STBase, l.rates.FCPSTRate)
		}
		c.tracer.Step(l.productCode, "st", map[string]decimal.Decimal{
			"st_base_input": stBaseInput,
			"mva":           l.rates.MVA,
			"internal_rate": l.rates.InternalRate,
			"st_base":       res.STBase,
			"st_gross":      res.STValueGross,
			"st":            res.STValue,
			"fcp_st_rate":   l.rates.FCPSTRate,
			"fcp_st":        res.FCPSTValue,
		})
	case entity.TreatmentJurisdictionOverride:
		res.ICMSRate = l.overrideRate
		res.ICMSValue = percentOf(res.ICMSBase, res.ICMSRate)
		c.tracer.Step(l.productCode, "jurisdiction_override", map[string]decimal.Decimal{
			"icms_rate": res.ICMSRate,
			"icms":      res.ICMSValue,
		})
	default:
		panic(fmt.Sprintf("fiscal: tratamiento no soportado %d", l.cls.Treatment))
	}

	res.TotalTax = res.ICMSValue.Add(res.IPIValue).Add(res.STValue).Add(res.FCPSTValue)
	res.TotalWithTax = res.NetAmount.Add(res.IPIValue).Add(res.STValue).Add(res.FCPSTValue)
	c.tracer.Step(l.productCode, "totals", map[string]decimal.Decimal{
		"total_tax":      res.TotalTax,
		"total_with_tax": res.TotalWithTax,
	})
	return res
}
