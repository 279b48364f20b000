// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fontrank collects the distinct font profiles of a document and
// assigns each rounded font size a dense rank, largest first.
package fontrank

import (
	"math"
	"sort"

	"github.com/pdiddy/fontdown/pkg/types"
)

// Round rounds v to precision decimal digits, halves away from zero.
func Round(v float64, precision int) float64 {
	if precision < 0 {
		precision = 0
	}
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale
}

// KeyFor returns the rank lookup key of a span.
func KeyFor(s types.Span, precision int) types.FontKey {
	return types.FontKey{Size: Round(s.FontSize, precision), IsBold: s.IsBold}
}

type profileKey struct {
	name string
	size float64
	bold bool
}

// CollectProfiles returns one FontProfile per distinct (font name, raw size,
// boldness) in doc, in order of first occurrence, with span counts.
func CollectProfiles(doc types.Document) []types.FontProfile {
	index := make(map[profileKey]int)
	var profiles []types.FontProfile
	for _, line := range doc {
		for _, s := range line.Spans {
			k := profileKey{name: s.FontName, size: s.FontSize, bold: s.IsBold}
			if i, ok := index[k]; ok {
				profiles[i].Count++
				continue
			}
			index[k] = len(profiles)
			profiles = append(profiles, types.FontProfile{
				FontName: s.FontName,
				FontSize: s.FontSize,
				IsBold:   s.IsBold,
				Count:    1,
			})
		}
	}
	return profiles
}

type rounded struct {
	size float64
	bold bool
}

// AssignRanks ranks the rounded font sizes of profiles in descending order.
// Ranks start at 1 and have no gaps. Every boldness variant of a rounded
// size shares that size's rank; boldness never splits a rank. Sizes above
// cfg.MaxFontSize are left out of the result entirely.
func AssignRanks(profiles []types.FontProfile, cfg types.RankConfig) types.FontRank {
	kept := make([]rounded, 0, len(profiles))
	for _, p := range profiles {
		size := Round(p.FontSize, cfg.Precision)
		if size > cfg.MaxFontSize {
			continue
		}
		kept = append(kept, rounded{size: size, bold: p.IsBold})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].size > kept[j].size
	})

	ranks := make(types.FontRank, len(kept))
	rank := 0
	last := math.NaN()
	for _, r := range kept {
		if r.size != last {
			rank++
			last = r.size
		}
		key := types.FontKey{Size: r.size, IsBold: r.bold}
		if _, ok := ranks[key]; !ok {
			ranks[key] = rank
		}
	}
	return ranks
}

// Table lists profiles with their rounded size and rank, largest size first.
// Profiles excluded from ranking are listed last with Rank 0.
func Table(profiles []types.FontProfile, ranks types.FontRank, precision int) []types.RankedProfile {
	out := make([]types.RankedProfile, 0, len(profiles))
	for _, p := range profiles {
		size := Round(p.FontSize, precision)
		out = append(out, types.RankedProfile{
			FontProfile: p,
			RoundedSize: size,
			Rank:        ranks[types.FontKey{Size: size, IsBold: p.IsBold}],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Rank, out[j].Rank
		if (ri == 0) != (rj == 0) {
			return rj == 0
		}
		return out[i].RoundedSize > out[j].RoundedSize
	})
	return out
}
