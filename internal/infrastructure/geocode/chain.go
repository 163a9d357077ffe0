package geocode

import (
	"context"

	"go.uber.org/zap"

	"github.com/fernetbarato/fernet-barato/api/internal/metrics"
	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
)

// Source pairs a Locator with the name used in metrics.
type Source struct {
	Name    string
	Locator Locator
}

// Chain asks each source in turn and returns the first hit. A failing source
// is logged and skipped.
type Chain struct {
	sources []Source
	logger  *zap.Logger
}

// NewChain creates a Chain over sources, skipping nil locators.
func NewChain(logger *zap.Logger, sources ...Source) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	kept := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.Locator != nil {
			kept = append(kept, s)
		}
	}
	return &Chain{sources: kept, logger: logger}
}

func (c *Chain) Locate(ctx context.Context, store domain.Store) (domain.Coordinates, bool, error) {
	var lastErr error
	for _, s := range c.sources {
		coords, ok, err := s.Locator.Locate(ctx, store)
		switch {
		case err != nil:
			metrics.GeocodeLookups.WithLabelValues(s.Name, metrics.OutcomeError).Inc()
			c.logger.Debug("geocode source failed",
				zap.String("source", s.Name),
				zap.String("store", store.Name),
				zap.Error(err),
			)
			lastErr = err
		case ok:
			metrics.GeocodeLookups.WithLabelValues(s.Name, metrics.OutcomeHit).Inc()
			return coords, true, nil
		default:
			metrics.GeocodeLookups.WithLabelValues(s.Name, metrics.OutcomeMiss).Inc()
		}
		if ctx.Err() != nil {
			return domain.Coordinates{}, false, ctx.Err()
		}
	}
	return domain.Coordinates{}, false, lastErr
}
