package quotation

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cotizador-api/internal/application/dto"
	"github.com/jhoicas/Cotizador-api/internal/domain/entity"
)

type fakeRepo struct {
	mu       sync.Mutex
	profiles map[string]*entity.ProductFiscalProfile
	rules    map[string]*entity.ICMSJurisdictionRule
	ncms     map[string]*entity.NCMClassification
	failOn   map[string]error // producto -> error de transporte al consultar su perfil
	calls    map[string]int
}

func newFakeRepo() *fakeRepo {
	r := &fakeRepo{
		profiles: map[string]*entity.ProductFiscalProfile{},
		rules:    map[string]*entity.ICMSJurisdictionRule{},
		ncms:     map[string]*entity.NCMClassification{},
		failOn:   map[string]error{},
		calls:    map[string]int{},
	}
	r.profiles["P-1000"] = &entity.ProductFiscalProfile{
		ProductCode: "P-1000", ICMSRuleCode: "R12", IPIRate: decimal.NewFromInt(10),
		NCMCode: "84145910", HasST: entity.FlagNo,
	}
	r.profiles["P-2000"] = &entity.ProductFiscalProfile{
		ProductCode: "P-2000", ICMSRuleCode: "R12", IPIRate: decimal.Zero,
		NCMCode: "99999999", HasST: entity.FlagNo,
	}
	r.rules["R12/SP"] = &entity.ICMSJurisdictionRule{
		ICMSRuleCode: "R12", DestinationUF: "SP",
		Contributor:    entity.ICMSClassRule{CST: "10", ICMSRate: decimal.NewFromInt(12), HasST: entity.FlagYes},
		NonContributor: entity.ICMSClassRule{CST: "00", ICMSRate: decimal.NewFromInt(18), HasST: entity.FlagNo},
	}
	r.ncms["84145910/SP"] = &entity.NCMClassification{
		NCMCode: "84145910", DestinationUF: "SP",
		MVA: decimal.NewFromInt(40), InternalRate: decimal.NewFromInt(18), FCPSTRate: decimal.NewFromInt(2),
	}
	return r
}

func (r *fakeRepo) count(key string) {
	r.mu.Lock()
	r.calls[key]++
	r.mu.Unlock()
}

func (r *fakeRepo) callsTo(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[key]
}

func (r *fakeRepo) GetProductFiscalProfile(_ context.Context, code string) (*entity.ProductFiscalProfile, error) {
	r.count("profile")
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failOn[code]; err != nil {
		return nil, err
	}
	return r.profiles[code], nil
}

func (r *fakeRepo) GetICMSJurisdictionRule(_ context.Context, ruleCode, uf string) (*entity.ICMSJurisdictionRule, error) {
	r.count("rule")
	return r.rules[ruleCode+"/"+uf], nil
}

func (r *fakeRepo) GetNCMClassification(_ context.Context, ncm, uf string) (*entity.NCMClassification, error) {
	r.count("ncm")
	return r.ncms[ncm+"/"+uf], nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func boolPtr(b bool) *bool { return &b }

func lineReq(code string) dto.LineItemRequest {
	return dto.LineItemRequest{
		ProductCode:         code,
		Quantity:            d("10"),
		UnitPrice:           d("100"),
		DiscountPercent:     decimal.Zero,
		DestinationUF:       "SP",
		ClientIsContributor: boolPtr(true),
	}
}
