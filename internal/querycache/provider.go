package querycache

import (
	"context"
	"fmt"

	friendlyerrors "github.com/wumbolauncher/wumbo/internal/errors"
)

// ErrEndOfResults is returned for a position the finished cycle never reached.
var ErrEndOfResults = fmt.Errorf("position past end of results: %w", friendlyerrors.ErrCallerMisuse)

// Provider serves rows by position, blocking until the loader gets there.
type Provider struct {
	cache *Cache
}

func NewProvider(c *Cache) *Provider { return &Provider{cache: c} }

// Get returns the row at pos, waiting while the cache is shorter than pos+1
// and the cycle is still running. It returns ctx.Err() if ctx ends first and
// the cycle's error if the cycle failed.
func (p *Provider) Get(ctx context.Context, pos int) (Row, error) {
	if pos < 0 {
		return Row{}, fmt.Errorf("position %d: %w", pos, friendlyerrors.ErrCallerMisuse)
	}
	for {
		v := p.cache.view(pos)
		if v.found {
			return v.row, nil
		}
		if v.complete {
			if v.err != nil {
				return Row{}, v.err
			}
			return Row{}, fmt.Errorf("position %d: %w", pos, ErrEndOfResults)
		}
		select {
		case <-v.changed:
		case <-ctx.Done():
			return Row{}, ctx.Err()
		}
	}
}

// Size is the number of rows currently available.
func (p *Provider) Size() int { return p.cache.Size() }
