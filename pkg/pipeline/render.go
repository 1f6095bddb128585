package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/itemshuffle/pkg/cache"
	"github.com/matzehuels/itemshuffle/pkg/errors"
	"github.com/matzehuels/itemshuffle/pkg/render/nodelink"
	"github.com/matzehuels/itemshuffle/pkg/spoiler"
)

// Render produces one output format for a generated result. Artifacts are
// cached by world and placement.
func (r *Runner) Render(ctx context.Context, res *Result, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	key := r.Keyer.ArtifactKey(res.fillHash(), cache.ArtifactKeyOpts{Format: format})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		return data, nil
	}

	data, err := RenderResult(ctx, res, format)
	if err != nil {
		return nil, err
	}
	_ = r.Cache.Set(ctx, key, data, cache.DefaultTTL)
	return data, nil
}

// RenderResult produces one output format without caching.
func RenderResult(ctx context.Context, res *Result, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatText:
		log := res.Spoiler()
		spoiler.SortBySphere(log.Entries)
		if err := spoiler.WriteText(&buf, log); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := spoiler.WriteJSON(&buf, res.Spoiler()); err != nil {
			return nil, err
		}
	case FormatDOT, FormatSVG:
		dot := nodelink.ToDOT(res.Graph, nodelink.Options{
			Detailed:     true,
			Requirements: res.Logic.Slots,
			Placements:   res.Placements,
		})
		if format == FormatDOT {
			return []byte(dot), nil
		}
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
		return svg, nil
	default:
		return nil, ValidateFormat(format)
	}
	return buf.Bytes(), nil
}

// RenderWorld draws a prepared world without placements.
func RenderWorld(ctx context.Context, p *Prepared, format string) ([]byte, error) {
	dot := nodelink.ToDOT(p.Graph, nodelink.Options{Detailed: true, Requirements: p.Logic.Slots})
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
		return svg, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid graph format: %q (must be one of: dot, svg)", format)
}

// fillHash identifies a placement together with every input that shaped
// it.
func (r *Result) fillHash() string {
	data, _ := json.Marshal(r.Filling)
	return cache.Hash(fmt.Appendf(data, ":%s", r.key))
}
