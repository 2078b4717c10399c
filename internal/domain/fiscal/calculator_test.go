package fiscal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizador-api/internal/domain"
	"github.com/jhoicas/Cotizador-api/internal/domain/entity"
	"github.com/jhoicas/Cotizador-api/internal/domain/fiscal"
)

func newCalc(repo *memRepo) *fiscal.Calculator {
	return fiscal.NewCalculator(repo, fiscal.DefaultPolicy(), nil)
}

// ── Escenarios de referencia ──────────────────────────────────────────────────

// Escenario 1: ST estándar sin reducción.
func TestCalculateLineItem_Escenario1_STBase(t *testing.T) {
	calc := newCalc(seededRepo())

	res, err := calc.CalculateLineItem(context.Background(), baseInput())
	require.NoError(t, err)

	assertMoney(t, "1000.00", res.GrossAmount, "gross")
	assertMoney(t, "0.00", res.DiscountAmount, "discount")
	assertMoney(t, "1000.00", res.NetAmount, "net")
	assertMoney(t, "50.00", res.IPIValue, "ipi")
	assertMoney(t, "1000.00", res.ICMSBase, "icms_base")
	assertMoney(t, "120.00", res.ICMSValue, "icms")
	assertMoney(t, "1470.00", res.STBase, "st_base")
	assertMoney(t, "264.60", res.STValueGross, "st_gross")
	assertMoney(t, "144.60", res.STValue, "st")
	assertMoney(t, "29.40", res.FCPSTValue, "fcp_st")
	assertMoney(t, "344.00", res.TotalTax, "total_tax")
	assertMoney(t, "1224.00", res.TotalWithTax, "total_with_tax")
	assert.True(t, res.HasST)
	assert.Equal(t, "10", res.CSTCode)
	assert.Equal(t, entity.TreatmentSTStandard, res.Treatment)
}

// Escenario 2: reducción del 20 % solo sobre el ICMS propio; la base ST no se reduce.
func TestCalculateLineItem_Escenario2_ReduccionSoloICMSPropio(t *testing.T) {
	repo := seededRepo()
	repo.profiles[testProduct].ReductionOwnICMSOnly = true
	rule := repo.rules[testRule+"/"+testUF]
	rule.Contributor.BaseReduction = d("20")

	res, err := newCalc(repo).CalculateLineItem(context.Background(), baseInput())
	require.NoError(t, err)

	assertMoney(t, "800.00", res.ICMSBase, "icms_base")
	assertMoney(t, "96.00", res.ICMSValue, "icms")
	assertMoney(t, "1470.00", res.STBase, "st_base")
	assertMoney(t, "264.60", res.STValueGross, "st_gross")
	assertMoney(t, "168.60", res.STValue, "st")
	assertMoney(t, "29.40", res.FCPSTValue, "fcp_st")
}

// Con la reducción aplicando también a la base ST, la base parte del ICMS reducido.
func TestCalculateLineItem_ReduccionTambienEnBaseST(t *testing.T) {
	repo := seededRepo()
	repo.rules[testRule+"/"+testUF].Contributor.BaseReduction = d("20")

	res, err := newCalc(repo).CalculateLineItem(context.Background(), baseInput())
	require.NoError(t, err)

	assertMoney(t, "800.00", res.ICMSBase, "icms_base")
	assertMoney(t, "1190.00", res.STBase, "st_base") // (800 + 50) × 1,40
	assertMoney(t, "214.20", res.STValueGross, "st_gross")
	assertMoney(t, "118.20", res.STValue, "st")
	assertMoney(t, "23.80", res.FCPSTValue, "fcp_st")
}

// Escenario 3: sin ST, misma UF, consumidor final.
func TestCalculateLineItem_Escenario3_SinST(t *testing.T) {
	repo := seededRepo()
	repo.profiles[testProduct].IPIRate = decimal.Zero
	in := baseInput()
	in.ClientIsContributor = false

	res, err := newCalc(repo).CalculateLineItem(context.Background(), in)
	require.NoError(t, err)

	assert.False(t, res.HasST)
	assert.Equal(t, entity.TreatmentNoST, res.Treatment)
	assertMoney(t, "180.00", res.ICMSValue, "icms")
	assertMoney(t, "0.00", res.STValue, "st")
	assertMoney(t, "0.00", res.FCPSTValue, "fcp_st")
	assertMoney(t, "0.00", res.STBase, "st_base")
	assertMoney(t, "180.00", res.TotalTax, "total_tax")
	assertMoney(t, "1000.00", res.TotalWithTax, "total_with_tax")
	assert.Zero(t, repo.callsTo("ncm"), "sin ST no se consulta la clasificación NCM")
}

// Escenario 4: CST 60 anula el ST aunque el perfil venga marcado con 'S'.
func TestCalculateLineItem_Escenario4_CST60(t *testing.T) {
	repo := seededRepo()
	repo.profiles[testProduct].HasST = entity.FlagYes
	repo.rules[testRule+"/"+testUF].Contributor.CST = "060"

	res, err := newCalc(repo).CalculateLineItem(context.Background(), baseInput())
	require.NoError(t, err)

	assert.False(t, res.HasST)
	assert.Equal(t, "60", res.CSTCode)
	assert.Equal(t, entity.TreatmentSTAlreadyCollected, res.Treatment)
	assertMoney(t, "0.00", res.STValue, "st")
	assertMoney(t, "0.00", res.FCPSTValue, "fcp_st")
	assertMoney(t, "0.00", res.STBase, "st_base")
	assertMoney(t, "120.00", res.ICMSValue, "icms")
	assertMoney(t, "170.00", res.TotalTax, "total_tax")
	assert.Zero(t, repo.callsTo("ncm"))
}

// ── Override por UF ───────────────────────────────────────────────────────────

func TestCalculateLineItem_GOFuerzaICMS7SinST(t *testing.T) {
	repo := seededRepo()
	repo.profiles[testProduct].HasST = entity.FlagYes
	repo.rules[testRule+"/GO"] = baseRule("GO")

	in := baseInput()
	in.DestinationUF = "go"

	res, err := newCalc(repo).CalculateLineItem(context.Background(), in)
	require.NoError(t, err)

	assert.False(t, res.HasST)
	assert.Equal(t, entity.TreatmentJurisdictionOverride, res.Treatment)
	assert.True(t, res.ICMSRate.Equal(d("7")), "icms_rate = %s", res.ICMSRate)
	assertMoney(t, "70.00", res.ICMSValue, "icms")
	assertMoney(t, "0.00", res.STValue, "st")
	assertMoney(t, "0.00", res.FCPSTValue, "fcp_st")
	assertMoney(t, "120.00", res.TotalTax, "total_tax")
	assert.Zero(t, repo.callsTo("ncm"), "el override no necesita la clasificación NCM")
}

func TestCalculateLineItem_GOConReduccionUsaBaseReducida(t *testing.T) {
	repo := seededRepo()
	rule := baseRule("GO")
	rule.Contributor.BaseReduction = d("10")
	repo.rules[testRule+"/GO"] = rule

	in := baseInput()
	in.DestinationUF = "GO"

	res, err := newCalc(repo).CalculateLineItem(context.Background(), in)
	require.NoError(t, err)
	assertMoney(t, "900.00", res.ICMSBase, "icms_base")
	assertMoney(t, "63.00", res.ICMSValue, "icms")
}

func TestCalculateLineItem_OverridesConfigurables(t *testing.T) {
	repo := seededRepo()
	policy := fiscal.Policy{JurisdictionOverrides: map[string]decimal.Decimal{"sp": d("4")}}
	calc := fiscal.NewCalculator(repo, policy, nil)

	res, err := calc.CalculateLineItem(context.Background(), baseInput())
	require.NoError(t, err)
	assert.Equal(t, entity.TreatmentJurisdictionOverride, res.Treatment)
	assertMoney(t, "40.00", res.ICMSValue, "icms")

	// Sin overrides, GO sigue el flujo normal.
	repo.rules[testRule+"/GO"] = baseRule("GO")
	repo.ncms[testNCM+"/GO"] = baseNCM("GO")
	in := baseInput()
	in.DestinationUF = "GO"
	res, err = fiscal.NewCalculator(repo, fiscal.Policy{}, nil).CalculateLineItem(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, entity.TreatmentSTStandard, res.Treatment)
	assertMoney(t, "144.60", res.STValue, "st")
}

// ── ST: piso en cero, importados, lista de excepción ─────────────────────────

func TestCalculateLineItem_STNegativoSePisaEnCero(t *testing.T) {
	repo := seededRepo()
	repo.ncms[testNCM+"/"+testUF].InternalRate = d("5")

	res, err := newCalc(repo).CalculateLineItem(context.Background(), baseInput())
	require.NoError(t, err)
	assertMoney(t, "73.50", res.STValueGross, "st_gross")
	assertMoney(t, "0.00", res.STValue, "st")
	assertMoney(t, "29.40", res.FCPSTValue, "fcp_st")
	assertMoney(t, "199.40", res.TotalTax, "total_tax")
}

func TestCalculateLineItem_ImportadoUsaOverridesNCM(t *testing.T) {
	repo := seededRepo()
	repo.profiles[testProduct].OriginCode = 1
	ncm := repo.ncms[testNCM+"/"+testUF]
	ncm.ImportedMVA = dp("60")
	ncm.ImportedInternalRate = dp("20")

	res, err := newCalc(repo).CalculateLineItem(context.Background(), baseInput())
	require.NoError(t, err)
	assertMoney(t, "1680.00", res.STBase, "st_base")
	assertMoney(t, "336.00", res.STValueGross, "st_gross")
	assertMoney(t, "216.00", res.STValue, "st")
	assertMoney(t, "33.60", res.FCPSTValue, "fcp_st")
}

func TestCalculateLineItem_ImportadoPorInputSinOverridesCaeEnAlicuotaICMS(t *testing.T) {
	repo := seededRepo()
	in := baseInput()
	in.IsImported = true

	res, err := newCalc(repo).CalculateLineItem(context.Background(), in)
	require.NoError(t, err)
	assertMoney(t, "1470.00", res.STBase, "st_base")
	assertMoney(t, "176.40", res.STValueGross, "st_gross") // 1470 × 12 %
	assertMoney(t, "56.40", res.STValue, "st")
}

func TestCalculateLineItem_ListaSiempreST(t *testing.T) {
	repo := seededRepo()
	repo.rules[testRule+"/"+testUF].Contributor.CST = "00"
	policy := fiscal.DefaultPolicy()

	res, err := fiscal.NewCalculator(repo, policy, nil).CalculateLineItem(context.Background(), baseInput())
	require.NoError(t, err)
	assert.False(t, res.HasST)

	policy.AlwaysSTProducts = []string{" " + testProduct + " "}
	res, err = fiscal.NewCalculator(repo, policy, nil).CalculateLineItem(context.Background(), baseInput())
	require.NoError(t, err)
	assert.True(t, res.HasST)
	assertMoney(t, "144.60", res.STValue, "st")
}

// ── Descuento y redondeo ──────────────────────────────────────────────────────

func TestCalculateLineItem_DescuentoYRedondeo(t *testing.T) {
	repo := seededRepo()
	repo.profiles[testProduct].IPIRate = d("6.5")
	rule := repo.rules[testRule+"/"+testUF]
	rule.Contributor.ICMSRate = d("17")
	ncm := repo.ncms[testNCM+"/"+testUF]
	ncm.MVA = d("37.43")

	in := baseInput()
	in.Quantity = d("3")
	in.UnitPrice = d("33.333")
	in.DiscountPercent = d("7.5")

	res, err := newCalc(repo).CalculateLineItem(context.Background(), in)
	require.NoError(t, err)

	assertMoney(t, "100.00", res.GrossAmount, "gross")      // 99,999
	assertMoney(t, "7.50", res.DiscountAmount, "discount")  // 7,5
	assertMoney(t, "92.50", res.NetAmount, "net")
	assertMoney(t, "6.01", res.IPIValue, "ipi")             // 6,0125
	assertMoney(t, "15.73", res.ICMSValue, "icms")          // 15,725
	assertMoney(t, "135.38", res.STBase, "st_base")         // 98,51 × 1,3743 = 135,382293
	assertMoney(t, "24.37", res.STValueGross, "st_gross")   // 24,3684
	assertMoney(t, "8.64", res.STValue, "st")
	assertMoney(t, "2.71", res.FCPSTValue, "fcp_st")        // 2,7076

	// Invariantes sobre los campos ya redondeados.
	assert.True(t, res.NetAmount.Equal(res.GrossAmount.Sub(res.DiscountAmount)))
	assert.True(t, res.TotalTax.Equal(res.ICMSValue.Add(res.IPIValue).Add(res.STValue).Add(res.FCPSTValue)))
	assert.True(t, res.TotalWithTax.Equal(res.NetAmount.Add(res.IPIValue).Add(res.STValue).Add(res.FCPSTValue)))
}

// Recalcular la base ST desde net e IPI ya redondeados reproduce el mismo valor.
func TestCalculateLineItem_EstabilidadDeRedondeo(t *testing.T) {
	cases := []struct {
		qty, price, discount, ipi, mva string
	}{
		{"1", "0.01", "0", "5", "40"},
		{"7", "13.37", "3.33", "9.75", "71.78"},
		{"2.5", "1999.99", "12.5", "15", "33.33"},
		{"1000", "0.333", "0.5", "0", "45.11"},
		{"3", "33.333", "7.5", "6.5", "37.43"},
	}
	for _, tc := range cases {
		t.Run(tc.qty+"x"+tc.price, func(t *testing.T) {
			repo := seededRepo()
			repo.profiles[testProduct].IPIRate = d(tc.ipi)
			repo.ncms[testNCM+"/"+testUF].MVA = d(tc.mva)
			in := baseInput()
			in.Quantity = d(tc.qty)
			in.UnitPrice = d(tc.price)
			in.DiscountPercent = d(tc.discount)

			res, err := newCalc(repo).CalculateLineItem(context.Background(), in)
			require.NoError(t, err)

			hundred := decimal.NewFromInt(100)
			rederived := res.NetAmount.Add(res.IPIValue).
				Mul(hundred.Add(d(tc.mva))).Div(hundred).
				Round(fiscal.IntermediatePlaces).Round(fiscal.ReportPlaces)
			assert.Equal(t, res.STBase.StringFixed(2), rederived.StringFixed(2))

			wantDiscount := res.GrossAmount.Mul(in.DiscountPercent).Div(hundred).Round(4).Round(2)
			assert.True(t, res.DiscountAmount.Equal(wantDiscount))
			assert.True(t, res.NetAmount.Equal(res.GrossAmount.Sub(res.DiscountAmount)))
		})
	}
}

// Propiedades: ST y FCP-ST nunca negativos; CST 60 y GO anulan el ST.
func TestCalculateLineItem_Propiedades(t *testing.T) {
	internals := []string{"0", "4", "7", "12", "17", "18", "25"}
	msts := []string{"0", "20", "40", "100"}
	csts := []string{"00", "10", "20", "30", "60", "70", "201"}
	ufs := []string{"SP", "GO"}

	for _, uf := range ufs {
		for _, cst := range csts {
			for _, internal := range internals {
				for _, mva := range msts {
					repo := seededRepo()
					repo.rules[testRule+"/GO"] = baseRule("GO")
					repo.ncms[testNCM+"/GO"] = baseNCM("GO")
					repo.rules[testRule+"/"+uf].Contributor.CST = cst
					repo.ncms[testNCM+"/"+uf].InternalRate = d(internal)
					repo.ncms[testNCM+"/"+uf].MVA = d(mva)
					in := baseInput()
					in.DestinationUF = uf

					res, err := newCalc(repo).CalculateLineItem(context.Background(), in)
					require.NoError(t, err)

					assert.False(t, res.STValue.IsNegative(), "st negativo uf=%s cst=%s", uf, cst)
					assert.False(t, res.FCPSTValue.IsNegative(), "fcp negativo uf=%s cst=%s", uf, cst)
					if cst == "60" || uf == "GO" {
						assert.True(t, res.STValue.IsZero())
						assert.True(t, res.FCPSTValue.IsZero())
						assert.False(t, res.HasST)
					}
					if uf == "GO" {
						assert.True(t, res.ICMSRate.Equal(d("7")))
					}
				}
			}
		}
	}
}

func TestCalculateLineItem_Idempotente(t *testing.T) {
	calc := newCalc(seededRepo())
	in := baseInput()
	in.DiscountPercent = d("3.7")

	r1, err := calc.CalculateLineItem(context.Background(), in)
	require.NoError(t, err)
	r2, err := calc.CalculateLineItem(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, r1, r2, "mismas entradas deben producir resultados idénticos")
}

func TestCalculateLineItem_PrecioCeroPermitido(t *testing.T) {
	in := baseInput()
	in.UnitPrice = decimal.Zero
	res, err := newCalc(seededRepo()).CalculateLineItem(context.Background(), in)
	require.NoError(t, err)
	assertMoney(t, "0.00", res.TotalWithTax, "total_with_tax")
}

// ── Errores ───────────────────────────────────────────────────────────────────

func TestCalculateLineItem_EntradaInvalidaSinConsultas(t *testing.T) {
	cases := map[string]func(*entity.LineItemInput){
		"sin producto":        func(in *entity.LineItemInput) { in.ProductCode = "  " },
		"cantidad cero":       func(in *entity.LineItemInput) { in.Quantity = decimal.Zero },
		"cantidad negativa":   func(in *entity.LineItemInput) { in.Quantity = d("-1") },
		"precio negativo":     func(in *entity.LineItemInput) { in.UnitPrice = d("-0.01") },
		"descuento negativo":  func(in *entity.LineItemInput) { in.DiscountPercent = d("-1") },
		"descuento sobre 100": func(in *entity.LineItemInput) { in.DiscountPercent = d("100.01") },
		"uf inválida":         func(in *entity.LineItemInput) { in.DestinationUF = "XX" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			repo := seededRepo()
			in := baseInput()
			mutate(&in)

			_, err := newCalc(repo).CalculateLineItem(context.Background(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			var calcErr *domain.CalculationError
			require.ErrorAs(t, err, &calcErr)
			assert.NotEmpty(t, calcErr.Hint)
			assert.Zero(t, repo.totalCalls(), "la validación ocurre antes de cualquier consulta")
		})
	}
}

func TestCalculateLineItem_Descuento100Permitido(t *testing.T) {
	in := baseInput()
	in.DiscountPercent = d("100")
	res, err := newCalc(seededRepo()).CalculateLineItem(context.Background(), in)
	require.NoError(t, err)
	assertMoney(t, "0.00", res.NetAmount, "net")
}

func TestCalculateLineItem_DatosFaltantes(t *testing.T) {
	t.Run("perfil", func(t *testing.T) {
		repo := seededRepo()
		delete(repo.profiles, testProduct)
		_, err := newCalc(repo).CalculateLineItem(context.Background(), baseInput())
		assert.ErrorIs(t, err, domain.ErrMissingFiscalProfile)
		assert.True(t, domain.IsMissingReferenceData(err))
	})
	t.Run("regla", func(t *testing.T) {
		repo := seededRepo()
		delete(repo.rules, testRule+"/"+testUF)
		_, err := newCalc(repo).CalculateLineItem(context.Background(), baseInput())
		assert.ErrorIs(t, err, domain.ErrMissingJurisdictionRule)
		var calcErr *domain.CalculationError
		require.ErrorAs(t, err, &calcErr)
		assert.Equal(t, testRule+"/"+testUF, calcErr.Key)
	})
	t.Run("ncm con ST", func(t *testing.T) {
		repo := seededRepo()
		delete(repo.ncms, testNCM+"/"+testUF)
		_, err := newCalc(repo).CalculateLineItem(context.Background(), baseInput())
		assert.ErrorIs(t, err, domain.ErrMissingClassification)
		var calcErr *domain.CalculationError
		require.ErrorAs(t, err, &calcErr)
		assert.Contains(t, calcErr.Hint, "NCM/UF")
	})
	t.Run("ncm sin ST no es requerido", func(t *testing.T) {
		repo := seededRepo()
		delete(repo.ncms, testNCM+"/"+testUF)
		in := baseInput()
		in.ClientIsContributor = false
		_, err := newCalc(repo).CalculateLineItem(context.Background(), in)
		assert.NoError(t, err)
	})
}

func TestCalculateLineItem_FallaDeTransporteSePropaga(t *testing.T) {
	repo := seededRepo()
	boom := errors.New("conexión rechazada")
	repo.err = boom

	_, err := newCalc(repo).CalculateLineItem(context.Background(), baseInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, domain.IsMissingReferenceData(err))
	assert.Equal(t, 1, repo.callsTo("profile"), "el motor no reintenta")
}

func TestCalculateLineItem_TracerRecibePasos(t *testing.T) {
	tracer := &recordingTracer{}
	calc := fiscal.NewCalculator(seededRepo(), fiscal.DefaultPolicy(), tracer)

	_, err := calc.CalculateLineItem(context.Background(), baseInput())
	require.NoError(t, err)
	assert.Equal(t, []string{"icms", "st", "totals"}, tracer.names())
}
