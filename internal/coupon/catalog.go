package coupon

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"storefront/internal/model"
)

// builtinCodes are always recognised and cannot be overridden by files.
var builtinCodes = map[string]int{
	"ZANE10": 10,
}

// PromoCatalog implements Catalog over the built-in codes plus any loaded
// files. Codes are matched exactly after trimming surrounding whitespace.
type PromoCatalog struct {
	mu    sync.RWMutex
	codes map[string]int

	paths  []string
	loader Loader
	logger zerolog.Logger
}

// NewCatalog builds a catalog and loads every file in paths through loader.
// A nil loader or an empty path list yields the built-in codes only.
func NewCatalog(ctx context.Context, paths []string, loader Loader, logger zerolog.Logger) (*PromoCatalog, error) {
	c := &PromoCatalog{
		paths:  paths,
		loader: loader,
		logger: logger.With().Str("component", "promo-catalog").Logger(),
	}

	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads every configured file. On failure the previous codes stay
// in effect.
func (c *PromoCatalog) Reload(ctx context.Context) error {
	sets := make([]CodeSet, len(c.paths))

	if c.loader != nil && len(c.paths) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		for i, path := range c.paths {
			g.Go(func() error {
				set, err := c.loader.Load(gctx, path)
				if err != nil {
					return fmt.Errorf("failed to load promo codes from %s: %w", path, err)
				}
				sets[i] = set
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			c.logger.Error().Err(err).Msg("promo code reload failed")
			return err
		}
	}

	codes := make(map[string]int, len(builtinCodes))
	for _, set := range sets {
		if set == nil {
			continue
		}
		set.Codes(func(code string, percent int) {
			codes[code] = percent
		})
	}
	for code, percent := range builtinCodes {
		codes[code] = percent
	}

	c.mu.Lock()
	c.codes = codes
	c.mu.Unlock()

	c.logger.Info().
		Int("file_count", len(c.paths)).
		Int("total_codes", len(codes)).
		Msg("promo codes loaded")

	return nil
}

func (c *PromoCatalog) Lookup(_ context.Context, code string) (Promotion, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Promotion{}, model.ErrInvalidPromoCode
	}

	c.mu.RLock()
	percent, ok := c.codes[code]
	c.mu.RUnlock()

	if !ok {
		c.logger.Debug().Str("promo_code", code).Msg("unknown promo code")
		return Promotion{}, model.ErrInvalidPromoCode
	}

	return Promotion{Code: code, Percent: percent}, nil
}

func (c *PromoCatalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.codes)
}
