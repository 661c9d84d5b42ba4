// Package collector loads transaction batches from the configured sources.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aforti1/clarity-cash/internal/logger"
	"github.com/aforti1/clarity-cash/internal/model"

	"github.com/rs/zerolog"
)

// Collector fetches from Primary and, if that fails, from Fallback.
type Collector struct {
	Primary  Source
	Fallback Source
	Log      zerolog.Logger
}

// NewCollector creates a new Collector. fallback may be nil.
func NewCollector(primary, fallback Source, log zerolog.Logger) *Collector {
	return &Collector{Primary: primary, Fallback: fallback, Log: log}
}

// Collect returns the batch for w in chronological order together with
// the name of the source that supplied it.
func (c *Collector) Collect(ctx context.Context, w model.Window) ([]model.Transaction, string, error) {
	if c.Primary == nil {
		return nil, "", errors.New("no transaction source configured")
	}
	log := logger.FromContext(ctx, c.Log)

	src := c.Primary
	txns, err := src.Fetch(ctx, w)
	if err != nil {
		if c.Fallback == nil || ctx.Err() != nil {
			return nil, "", fmt.Errorf("%s source: %w", src.Name(), err)
		}
		log.Warn().Err(err).
			Str("source", src.Name()).
			Str("fallback", c.Fallback.Name()).
			Msg("primary source failed, using fallback")
		src = c.Fallback
		txns, err = src.Fetch(ctx, w)
		if err != nil {
			return nil, "", fmt.Errorf("%s fallback source: %w", src.Name(), err)
		}
	}

	// Ensure chronological order
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })

	log.Debug().
		Str("source", src.Name()).
		Int("transactions", len(txns)).
		Str("window_start", w.Start.String()).
		Str("window_end", w.End.String()).
		Msg("batch collected")
	return txns, src.Name(), nil
}
