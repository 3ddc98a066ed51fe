package domain

import (
	"sort"
	"strconv"
	"strings"
)

// FormatThemeRanges renders theme indices as a compact range string,
// e.g. [0,1,2,5,6] -> "0-2,5-6". Duplicates are collapsed.
func FormatThemeRanges(themes []int) string {
	if len(themes) == 0 {
		return ""
	}

	sorted := make([]int, len(themes))
	copy(sorted, themes)
	sort.Ints(sorted)

	var ranges []string
	start, end := sorted[0], sorted[0]
	flush := func() {
		if start == end {
			ranges = append(ranges, strconv.Itoa(start))
		} else {
			ranges = append(ranges, strconv.Itoa(start)+"-"+strconv.Itoa(end))
		}
	}
	for _, t := range sorted[1:] {
		switch {
		case t == end || t == end+1:
			end = t
		default:
			flush()
			start, end = t, t
		}
	}
	flush()
	return strings.Join(ranges, ",")
}

// ParseThemeRanges parses a range string like "0-2,5-6" back into the set of
// covered theme indices. Malformed parts are skipped.
func ParseThemeRanges(s string) map[int]struct{} {
	played := make(map[int]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err1 := strconv.Atoi(strings.TrimSpace(lo))
			end, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 != nil || err2 != nil {
				continue
			}
			for i := start; i <= end; i++ {
				played[i] = struct{}{}
			}
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			played[n] = struct{}{}
		}
	}
	return played
}

// MergeThemeRanges unions an existing range string with newly played themes
// and re-formats it, for upserting a player's pack history.
func MergeThemeRanges(existing string, themes []int) string {
	set := ParseThemeRanges(existing)
	for _, t := range themes {
		set[t] = struct{}{}
	}
	merged := make([]int, 0, len(set))
	for t := range set {
		merged = append(merged, t)
	}
	return FormatThemeRanges(merged)
}
