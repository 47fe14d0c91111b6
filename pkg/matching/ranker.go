package matching

import (
	"cmp"
	"slices"
)

type SortMode string

const (
	SortByScore    SortMode = "score"
	SortByDistance SortMode = "distance"
)

func ParseSortMode(value string) SortMode {
	if SortMode(value) == SortByDistance {
		return SortByDistance
	}
	return SortByScore
}

// Rank orders results in place. Score mode puts recruiting trials first, then
// higher scores. Distance mode sorts nearest first, trials without a distance
// last, then falls back to the score order. Trial ID breaks remaining ties.
func Rank(results []Result, mode SortMode) {
	slices.SortStableFunc(results, func(a, b Result) int {
		if mode == SortByDistance {
			if c := compareDistance(a.DistanceMiles, b.DistanceMiles); c != 0 {
				return c
			}
		}
		if a.Recruiting != b.Recruiting {
			if a.Recruiting {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.TrialID, b.TrialID)
	})
}

func compareDistance(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}

// Paginate returns one page of results. An out-of-range page is clamped to
// the nearest valid page rather than rejected.
func Paginate[T any](items []T, page, pageSize int) (window []T, clamped, pageCount int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageCount = (len(items) + pageSize - 1) / pageSize
	clamped = ClampPage(page, pageCount)
	start := clamped * pageSize
	if start >= len(items) {
		return nil, clamped, pageCount
	}
	end := min(start+pageSize, len(items))
	return items[start:end], clamped, pageCount
}

// ClampPage maps page into [0, pageCount-1]; with no pages it is 0.
func ClampPage(page, pageCount int) int {
	if page < 0 || pageCount <= 0 {
		return 0
	}
	if page >= pageCount {
		return pageCount - 1
	}
	return page
}
