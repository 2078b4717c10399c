package quotation

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Cotizador-api/internal/application/dto"
	"github.com/jhoicas/Cotizador-api/internal/domain"
	"github.com/jhoicas/Cotizador-api/internal/domain/entity"
	"github.com/jhoicas/Cotizador-api/internal/domain/fiscal"
	"github.com/jhoicas/Cotizador-api/internal/domain/repository"
	"github.com/jhoicas/Cotizador-api/pkg/logger"
)

// maxParallelLines límite de líneas calculadas a la vez dentro de una cotización.
const maxParallelLines = 8

// Códigos de error de línea expuestos al frontend.
const (
	CodeValidation              = "VALIDATION"
	CodeMissingFiscalProfile    = "MISSING_FISCAL_PROFILE"
	CodeMissingJurisdictionRule = "MISSING_JURISDICTION_RULE"
	CodeMissingClassification   = "MISSING_CLASSIFICATION"
	CodeUpstream                = "UPSTREAM_ERROR"
)

// ErrorCode traduce un error del motor a un código estable para el cliente.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return CodeValidation
	case errors.Is(err, domain.ErrMissingFiscalProfile):
		return CodeMissingFiscalProfile
	case errors.Is(err, domain.ErrMissingJurisdictionRule):
		return CodeMissingJurisdictionRule
	case errors.Is(err, domain.ErrMissingClassification):
		return CodeMissingClassification
	default:
		return CodeUpstream
	}
}

// IsLineError indica si err es un error propio de la línea (validación o datos faltantes),
// a diferencia de una falla de transporte hacia la fuente de reglas.
func IsLineError(err error) bool {
	var ce *domain.CalculationError
	return errors.As(err, &ce)
}

// PricingUseCase orquesta el cálculo fiscal de líneas y cotizaciones completas.
type PricingUseCase struct {
	repo   repository.FiscalRuleRepository
	policy fiscal.Policy
	tracer fiscal.Tracer
	log    *logger.Logger
}

// NewPricingUseCase construye el caso de uso. tracer y log pueden ser nil.
func NewPricingUseCase(repo repository.FiscalRuleRepository, policy fiscal.Policy, tracer fiscal.Tracer, log *logger.Logger) *PricingUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PricingUseCase{repo: repo, policy: policy, tracer: tracer, log: log}
}

// CalculateLine calcula una sola línea (edición de una línea en el editor de cotizaciones).
func (uc *PricingUseCase) CalculateLine(ctx context.Context, req dto.LineItemRequest) (*dto.LineItemTaxResponse, error) {
	calc := fiscal.NewCalculator(uc.repo, uc.policy, uc.tracer)
	in := toLineItemInput(req)
	res, err := calc.CalculateLineItem(ctx, in)
	if err != nil {
		return nil, err
	}
	out := toLineItemResponse(res, in.ClientIsContributor)
	return &out, nil
}

// PriceQuotation calcula todas las líneas de una cotización en paralelo dentro de una sesión.
// Las consultas se memorizan por sesión; los errores de línea se informan por ítem y
// un error de transporte aborta la cotización completa.
func (uc *PricingUseCase) PriceQuotation(ctx context.Context, req dto.PriceQuotationRequest) (*dto.PriceQuotationResponse, error) {
	if len(req.Items) == 0 {
		return nil, domain.NewInvalidInput("", "items", "la cotización no tiene líneas")
	}
	sessionID := uuid.NewString()
	calc := fiscal.NewCalculator(newSessionRepository(uc.repo), uc.policy, uc.tracer)

	items := make([]dto.PricedItem, len(req.Items))
	results := make([]entity.LineItemTaxResult, len(req.Items))
	failed := make([]bool, len(req.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLines)
	for i, it := range req.Items {
		g.Go(func() error {
			in := toLineItemInput(it)
			res, err := calc.CalculateLineItem(gctx, in)
			items[i].Index = i
			if err != nil {
				if !IsLineError(err) {
					return err
				}
				failed[i] = true
				items[i].Error = toItemError(err)
				return nil
			}
			results[i] = *res
			out := toLineItemResponse(res, in.ClientIsContributor)
			items[i].Result = &out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.log.Error().Err(err).Str("session_id", sessionID).Str("quotation_id", req.QuotationID).Msg("cotización abortada")
		return nil, err
	}

	resp := &dto.PriceQuotationResponse{
		SessionID:   sessionID,
		QuotationID: req.QuotationID,
		Items:       items,
		Complete:    true,
	}
	for _, f := range failed {
		if f {
			resp.Complete = false
			break
		}
	}
	if resp.Complete {
		totals := toTotalsResponse(fiscal.RecomputeTotals(results))
		resp.Totals = &totals
	}
	uc.log.Info().
		Str("session_id", sessionID).
		Str("quotation_id", req.QuotationID).
		Int("items", len(items)).
		Bool("complete", resp.Complete).
		Msg("cotización calculada")
	return resp, nil
}

// RecomputeTotals suma líneas ya calculadas (sin consultar reglas).
func (uc *PricingUseCase) RecomputeTotals(req dto.RecomputeTotalsRequest) dto.QuotationTotalsResponse {
	items := make([]entity.LineItemTaxResult, len(req.Items))
	for i, it := range req.Items {
		items[i] = fromLineItemResponse(it)
	}
	return toTotalsResponse(fiscal.RecomputeTotals(items))
}

func toItemError(err error) *dto.ItemError {
	e := &dto.ItemError{Code: ErrorCode(err), Message: err.Error()}
	var ce *domain.CalculationError
	if errors.As(err, &ce) {
		e.Hint = ce.Hint
	}
	return e
}

func toLineItemInput(req dto.LineItemRequest) entity.LineItemInput {
	return entity.LineItemInput{
		ProductCode:         strings.TrimSpace(req.ProductCode),
		Quantity:            req.Quantity,
		UnitPrice:           req.UnitPrice,
		DiscountPercent:     req.DiscountPercent,
		DestinationUF:       req.DestinationUF,
		ClientIsContributor: IsContributor(req.ClientIsContributor, req.ClientStateRegistration, req.ClientTaxID),
		IsImported:          req.IsImported,
	}
}

func toLineItemResponse(r *entity.LineItemTaxResult, isContributor bool) dto.LineItemTaxResponse {
	return dto.LineItemTaxResponse{
		ProductCode:    r.ProductCode,
		GrossAmount:    r.GrossAmount,
		DiscountAmount: r.DiscountAmount,
		NetAmount:      r.NetAmount,
		ICMSBase:       r.ICMSBase,
		ICMSRate:       r.ICMSRate,
		ICMSValue:      r.ICMSValue,
		IPIRate:        r.IPIRate,
		IPIValue:       r.IPIValue,
		HasST:          r.HasST,
		STBase:         r.STBase,
		STValueGross:   r.STValueGross,
		STValue:        r.STValue,
		FCPSTValue:     r.FCPSTValue,
		TotalTax:       r.TotalTax,
		TotalWithTax:   r.TotalWithTax,
		CSTCode:        r.CSTCode,
		Treatment:      r.Treatment.String(),
		ClientClass:    classOf(isContributor),
	}
}

func fromLineItemResponse(r dto.LineItemTaxResponse) entity.LineItemTaxResult {
	return entity.LineItemTaxResult{
		ProductCode:    r.ProductCode,
		GrossAmount:    r.GrossAmount,
		DiscountAmount: r.DiscountAmount,
		NetAmount:      r.NetAmount,
		ICMSBase:       r.ICMSBase,
		ICMSRate:       r.ICMSRate,
		ICMSValue:      r.ICMSValue,
		IPIRate:        r.IPIRate,
		IPIValue:       r.IPIValue,
		HasST:          r.HasST,
		STBase:         r.STBase,
		STValueGross:   r.STValueGross,
		STValue:        r.STValue,
		FCPSTValue:     r.FCPSTValue,
		TotalTax:       r.TotalTax,
		TotalWithTax:   r.TotalWithTax,
		CSTCode:        r.CSTCode,
	}
}

func toTotalsResponse(t entity.QuotationTotals) dto.QuotationTotalsResponse {
	return dto.QuotationTotalsResponse{
		ItemCount:      t.ItemCount,
		GrossAmount:    t.GrossAmount,
		DiscountAmount: t.DiscountAmount,
		NetAmount:      t.NetAmount,
		ICMSValue:      t.ICMSValue,
		IPIValue:       t.IPIValue,
		STValue:        t.STValue,
		FCPSTValue:     t.FCPSTValue,
		TotalTax:       t.TotalTax,
		TotalWithTax:   t.TotalWithTax,
	}
}
