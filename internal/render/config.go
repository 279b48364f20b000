// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pdiddy/fontdown/pkg/types"
)

// ErrInvalidConfig is returned by New when the configuration fails validation.
var ErrInvalidConfig = errors.New("invalid render config")

func validateConfig(cfg types.RenderConfig) error {
	err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Precision, validation.Min(0), validation.Max(10)),
		validation.Field(&cfg.MinFontSize, validation.By(nonNegative)),
		validation.Field(&cfg.HeadingBands, validation.By(disjointBands)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func nonNegative(value any) error {
	v, _ := value.(float64)
	if v < 0 {
		return validation.NewError("render.threshold_negative", "must be zero or positive")
	}
	return nil
}

// disjointBands rejects non-positive ranks and ranks claimed by two levels.
func disjointBands(value any) error {
	bands, ok := value.(types.HeadingBands)
	if !ok {
		return validation.NewError("render.bands_type", "must be heading bands")
	}
	owner := make(map[int]int)
	for i, band := range bands.Levels() {
		level := i + 1
		for _, rank := range band {
			if rank < 1 {
				return validation.NewError("render.band_rank_invalid",
					fmt.Sprintf("h%d lists rank %d; ranks start at 1", level, rank))
			}
			if prev, dup := owner[rank]; dup && prev != level {
				return validation.NewError("render.bands_overlap",
					fmt.Sprintf("rank %d is listed in both h%d and h%d", rank, prev, level))
			}
			owner[rank] = level
		}
	}
	return nil
}
