package quotation

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/Cotizador-api/internal/domain/entity"
	"github.com/jhoicas/Cotizador-api/internal/domain/repository"
)

// sessionRepository memoiza las consultas durante un único cálculo de cotización.
// Líneas en paralelo que piden la misma clave comparten una sola consulta (singleflight).
// Los errores de transporte no se memorizan.
type sessionRepository struct {
	next  repository.FiscalRuleRepository
	group singleflight.Group
	mu    sync.Mutex
	memo  map[string]any
}

var _ repository.FiscalRuleRepository = (*sessionRepository)(nil)

func newSessionRepository(next repository.FiscalRuleRepository) *sessionRepository {
	return &sessionRepository{next: next, memo: make(map[string]any)}
}

func (s *sessionRepository) GetProductFiscalProfile(ctx context.Context, productCode string) (*entity.ProductFiscalProfile, error) {
	v, err := s.load("profile|"+productCode, func() (any, error) {
		return s.next.GetProductFiscalProfile(ctx, productCode)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.ProductFiscalProfile), nil
}

func (s *sessionRepository) GetICMSJurisdictionRule(ctx context.Context, icmsRuleCode, destinationUF string) (*entity.ICMSJurisdictionRule, error) {
	v, err := s.load("rule|"+icmsRuleCode+"|"+destinationUF, func() (any, error) {
		return s.next.GetICMSJurisdictionRule(ctx, icmsRuleCode, destinationUF)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.ICMSJurisdictionRule), nil
}

func (s *sessionRepository) GetNCMClassification(ctx context.Context, ncmCode, destinationUF string) (*entity.NCMClassification, error) {
	v, err := s.load("ncm|"+ncmCode+"|"+destinationUF, func() (any, error) {
		return s.next.GetNCMClassification(ctx, ncmCode, destinationUF)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.NCMClassification), nil
}

func (s *sessionRepository) load(key string, fn func() (any, error)) (any, error) {
	s.mu.Lock()
	if v, ok := s.memo[key]; ok {
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do(key, func() (any, error) {
		v, err := fn()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.memo[key] = v
		s.mu.Unlock()
		return v, nil
	})
	return v, err
}
