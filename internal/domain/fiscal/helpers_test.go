package fiscal_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Cotizador-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorio en memoria para los tests del motor
// ──────────────────────────────────────────────────────────────────────────────

type memRepo struct {
	mu       sync.Mutex
	profiles map[string]*entity.ProductFiscalProfile
	rules    map[string]*entity.ICMSJurisdictionRule
	ncms     map[string]*entity.NCMClassification
	err      error
	calls    map[string]int
}

func newMemRepo() *memRepo {
	return &memRepo{
		profiles: map[string]*entity.ProductFiscalProfile{},
		rules:    map[string]*entity.ICMSJurisdictionRule{},
		ncms:     map[string]*entity.NCMClassification{},
		calls:    map[string]int{},
	}
}

func (r *memRepo) count(op string) {
	r.mu.Lock()
	r.calls[op]++
	r.mu.Unlock()
}

func (r *memRepo) callsTo(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *memRepo) totalCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

func (r *memRepo) GetProductFiscalProfile(_ context.Context, code string) (*entity.ProductFiscalProfile, error) {
	r.count("profile")
	if r.err != nil {
		return nil, r.err
	}
	return r.profiles[code], nil
}

func (r *memRepo) GetICMSJurisdictionRule(_ context.Context, ruleCode, uf string) (*entity.ICMSJurisdictionRule, error) {
	r.count("rule")
	if r.err != nil {
		return nil, r.err
	}
	return r.rules[ruleCode+"/"+uf], nil
}

func (r *memRepo) GetNCMClassification(_ context.Context, ncm, uf string) (*entity.NCMClassification, error) {
	r.count("ncm")
	if r.err != nil {
		return nil, r.err
	}
	return r.ncms[ncm+"/"+uf], nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Datos base: escenario 1 (bruto 1000,00; IPI 5 %; ICMS 12 %; MVA 40 %; interna 18 %; FCP 2 %)
// ──────────────────────────────────────────────────────────────────────────────

const (
	testProduct = "P-1000"
	testRule    = "R12"
	testNCM     = "84145910"
	testUF      = "SP"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func baseProfile() *entity.ProductFiscalProfile {
	return &entity.ProductFiscalProfile{
		ProductCode:  testProduct,
		ICMSRuleCode: testRule,
		IPIRate:      d("5"),
		OriginCode:   0,
		NCMCode:      testNCM,
		HasST:        entity.FlagNo,
	}
}

func baseRule(uf string) *entity.ICMSJurisdictionRule {
	return &entity.ICMSJurisdictionRule{
		ICMSRuleCode:  testRule,
		DestinationUF: uf,
		Contributor: entity.ICMSClassRule{
			CST:           "10",
			ICMSRate:      d("12"),
			BaseReduction: decimal.Zero,
			HasST:         entity.FlagNo,
		},
		NonContributor: entity.ICMSClassRule{
			CST:           "00",
			ICMSRate:      d("18"),
			BaseReduction: decimal.Zero,
			HasST:         entity.FlagNo,
		},
	}
}

func baseNCM(uf string) *entity.NCMClassification {
	return &entity.NCMClassification{
		NCMCode:       testNCM,
		DestinationUF: uf,
		MVA:           d("40"),
		InternalRate:  d("18"),
		FCPSTRate:     d("2"),
	}
}

// seededRepo repositorio con el escenario 1 cargado para SP.
func seededRepo() *memRepo {
	r := newMemRepo()
	r.profiles[testProduct] = baseProfile()
	r.rules[testRule+"/"+testUF] = baseRule(testUF)
	r.ncms[testNCM+"/"+testUF] = baseNCM(testUF)
	return r
}

func baseInput() entity.LineItemInput {
	return entity.LineItemInput{
		ProductCode:         testProduct,
		Quantity:            d("10"),
		UnitPrice:           d("100"),
		DiscountPercent:     decimal.Zero,
		DestinationUF:       testUF,
		ClientIsContributor: true,
	}
}

// assertMoney compara un monto con su representación esperada a 2 decimales
// y verifica que no tenga más de 2 decimales.
func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), "campo %s", field)
	assert.True(t, got.Equal(got.Round(2)), "campo %s debe estar redondeado a 2 decimales: %s", field, got)
}

type recordedStep struct {
	product string
	step    string
}

type recordingTracer struct {
	mu    sync.Mutex
	steps []recordedStep
}

func (t *recordingTracer) Step(product, step string, _ map[string]decimal.Decimal) {
	t.mu.Lock()
	t.steps = append(t.steps, recordedStep{product: product, step: step})
	t.mu.Unlock()
}

func (t *recordingTracer) names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.steps))
	for _, s := range t.steps {
		out = append(out, s.step)
	}
	return out
}
