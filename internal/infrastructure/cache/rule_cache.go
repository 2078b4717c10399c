package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Cotizador-api/internal/domain/entity"
	"github.com/jhoicas/Cotizador-api/internal/domain/repository"
	"github.com/jhoicas/Cotizador-api/pkg/logger"
)

// DefaultTTL datos fiscales del ERP cambian poco.
const DefaultTTL = 30 * time.Minute

const keyPrefix = "cotizador:fiscal:"

// CachedRuleRepository decora un FiscalRuleRepository con caché en Store.
// Solo se guardan registros encontrados: un "no encontrado" siempre vuelve a la fuente,
// así una regla recién configurada en el ERP aplica de inmediato.
// Si el Store falla se consulta la fuente y se registra una advertencia.
type CachedRuleRepository struct {
	next  repository.FiscalRuleRepository
	store Store
	ttl   time.Duration
	log   *logger.Logger
}

var _ repository.FiscalRuleRepository = (*CachedRuleRepository)(nil)

// NewCachedRuleRepository construye el decorador. ttl <= 0 usa DefaultTTL; log puede ser nil.
func NewCachedRuleRepository(next repository.FiscalRuleRepository, store Store, ttl time.Duration, log *logger.Logger) *CachedRuleRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CachedRuleRepository{next: next, store: store, ttl: ttl, log: log}
}

func profileKey(productCode string) string {
	return fmt.Sprintf("%sprofile:%s", keyPrefix, productCode)
}

func ruleKey(ruleCode, uf string) string {
	return fmt.Sprintf("%srule:%s:%s", keyPrefix, ruleCode, uf)
}

func ncmKey(ncmCode, uf string) string {
	return fmt.Sprintf("%sncm:%s:%s", keyPrefix, ncmCode, uf)
}

// GetProductFiscalProfile consulta caché y luego la fuente.
func (c *CachedRuleRepository) GetProductFiscalProfile(ctx context.Context, productCode string) (*entity.ProductFiscalProfile, error) {
	return cached(ctx, c, profileKey(productCode), func() (*entity.ProductFiscalProfile, error) {
		return c.next.GetProductFiscalProfile(ctx, productCode)
	})
}

// GetICMSJurisdictionRule consulta caché y luego la fuente.
func (c *CachedRuleRepository) GetICMSJurisdictionRule(ctx context.Context, icmsRuleCode, destinationUF string) (*entity.ICMSJurisdictionRule, error) {
	return cached(ctx, c, ruleKey(icmsRuleCode, destinationUF), func() (*entity.ICMSJurisdictionRule, error) {
		return c.next.GetICMSJurisdictionRule(ctx, icmsRuleCode, destinationUF)
	})
}

// GetNCMClassification consulta caché y luego la fuente.
func (c *CachedRuleRepository) GetNCMClassification(ctx context.Context, ncmCode, destinationUF string) (*entity.NCMClassification, error) {
	return cached(ctx, c, ncmKey(ncmCode, destinationUF), func() (*entity.NCMClassification, error) {
		return c.next.GetNCMClassification(ctx, ncmCode, destinationUF)
	})
}

// InvalidateProduct borra el perfil fiscal de un producto (p. ej. tras una sincronización del ERP).
func (c *CachedRuleRepository) InvalidateProduct(ctx context.Context, productCode string) error {
	return c.store.Delete(ctx, profileKey(productCode))
}

func cached[T any](ctx context.Context, c *CachedRuleRepository, key string, load func() (*T, error)) (*T, error) {
	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			return &v, nil
		}
		c.log.Warn().Str("key", key).Msg("caché fiscal: valor corrupto, se descarta")
		_ = c.store.Delete(ctx, key)
	case errors.Is(err, ErrMiss):
	default:
		c.log.Warn().Err(err).Str("key", key).Msg("caché fiscal no disponible")
	}

	v, err := load()
	if err != nil || v == nil {
		return v, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("caché fiscal: no se pudo guardar")
	}
	return v, nil
}
