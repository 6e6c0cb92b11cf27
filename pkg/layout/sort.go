package layout

import (
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"github.com/plateworks/tavola/pkg/catalog"
)

// =============================================================================
// Natural Ordering
// =============================================================================

// naturalToken is one run of a name: either a number or a lowercased string.
type naturalToken struct {
	num   int64
	str   string
	isNum bool
}

// naturalKey splits a name into alternating digit and non-digit runs.
// Digit runs compare by integer value, other runs case-insensitively, so
// "img2" sorts before "img10".
func naturalKey(s string) []naturalToken {
	var tokens []naturalToken
	i := 0
	for i < len(s) {
		j := i
		if isDigit(s[i]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			n, err := strconv.ParseInt(s[i:j], 10, 64)
			if err != nil {
				// Overflow on absurdly long digit runs: fall back to text
				tokens = append(tokens, naturalToken{str: s[i:j]})
			} else {
				tokens = append(tokens, naturalToken{num: n, isNum: true})
			}
		} else {
			for j < len(s) && !isDigit(s[j]) {
				j++
			}
			tokens = append(tokens, naturalToken{str: strings.ToLower(s[i:j])})
		}
		i = j
	}
	return tokens
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// CompareNatural orders two names naturally. Numeric runs sort before
// textual runs when the two names diverge in run type.
func CompareNatural(a, b string) int {
	ka, kb := naturalKey(a), naturalKey(b)
	for i := 0; i < len(ka) && i < len(kb); i++ {
		ta, tb := ka[i], kb[i]
		switch {
		case ta.isNum && tb.isNum:
			if ta.num != tb.num {
				if ta.num < tb.num {
					return -1
				}
				return 1
			}
		case ta.isNum != tb.isNum:
			if ta.isNum {
				return -1
			}
			return 1
		default:
			if c := strings.Compare(ta.str, tb.str); c != 0 {
				return c
			}
		}
	}
	switch {
	case len(ka) < len(kb):
		return -1
	case len(ka) > len(kb):
		return 1
	}
	return 0
}

// =============================================================================
// Metadata Ordering
// =============================================================================

// compareMetaValues orders two metadata values: numeric-looking values
// compare numerically, everything else case-insensitively. Missing or empty
// values sort after present ones.
func compareMetaValues(a, b string) int {
	aEmpty, bEmpty := a == "", b == ""
	switch {
	case aEmpty && bEmpty:
		return 0
	case aEmpty:
		return 1
	case bEmpty:
		return -1
	}

	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}

	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// =============================================================================
// Sort Engine
// =============================================================================

// Sort orders items by the two-level sort spec in opts. The input slice is
// never mutated; the returned slice is a reordered copy.
//
// The secondary sort reorders ties of the primary comparator only. Random
// uses a PCG generator seeded from opts.Seed, so runs are reproducible.
// A shuffled primary is a total order with no ties, so the secondary never
// applies to it.
func Sort(items []catalog.ImageItem, opts *Options) []catalog.ImageItem {
	out := make([]catalog.ImageItem, len(items))
	copy(out, items)

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef))

	applyLevel(out, opts.SortPrimary, rng)

	secondary := opts.SortSecondary.Method != SortNone && opts.SortSecondary.Method != ""
	if secondary && opts.SortPrimary.Method != SortRandom {
		forEachTieRun(out, tieComparatorFor(opts.SortPrimary), func(run []catalog.ImageItem) {
			applyLevel(run, opts.SortSecondary, rng)
		})
	}

	return out
}

// applyLevel sorts items in place by a single sort spec.
func applyLevel(items []catalog.ImageItem, spec SortSpec, rng *rand.Rand) {
	switch spec.Method {
	case SortRandom:
		rng.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
	case SortNone, "":
		// Keep incoming order
	default:
		cmp := comparatorFor(spec)
		sort.SliceStable(items, func(i, j int) bool {
			return cmp(&items[i], &items[j]) < 0
		})
	}
}

// comparatorFor builds the comparator for one sort spec.
// Random and none have no defined order and return nil.
func comparatorFor(spec SortSpec) func(a, b *catalog.ImageItem) int {
	switch spec.Method {
	case SortAlphabetical:
		return func(a, b *catalog.ImageItem) int {
			return strings.Compare(strings.ToLower(a.ID), strings.ToLower(b.ID))
		}
	case SortNatural:
		return func(a, b *catalog.ImageItem) int {
			return CompareNatural(a.ID, b.ID)
		}
	case SortMetadata:
		field := spec.Field
		return func(a, b *catalog.ImageItem) int {
			if c := compareMetaValues(a.Field(field), b.Field(field)); c != 0 {
				return c
			}
			// Ties broken by natural name order
			return CompareNatural(a.ID, b.ID)
		}
	default:
		return nil
	}
}

// tieComparatorFor builds the comparator used to detect primary ties.
// Unlike comparatorFor it omits the natural-name tiebreak: two items with
// the same metadata value are a tie even though their names differ, and the
// secondary sort is what orders them.
func tieComparatorFor(spec SortSpec) func(a, b *catalog.ImageItem) int {
	if spec.Method == SortMetadata {
		field := spec.Field
		return func(a, b *catalog.ImageItem) int {
			return compareMetaValues(a.Field(field), b.Field(field))
		}
	}
	return comparatorFor(spec)
}

// forEachTieRun invokes fn on every maximal run of items the comparator
// considers equal. A nil comparator means every item ties with every other,
// so the whole slice is one run.
func forEachTieRun(items []catalog.ImageItem, cmp func(a, b *catalog.ImageItem) int, fn func(run []catalog.ImageItem)) {
	if cmp == nil {
		fn(items)
		return
	}
	start := 0
	for i := 1; i <= len(items); i++ {
		if i == len(items) || cmp(&items[start], &items[i]) != 0 {
			if i-start > 1 {
				fn(items[start:i])
			}
			start = i
		}
	}
}

// primaryGroupKey returns the grouping value used for break detection:
// the primary metadata field value of an item.
func primaryGroupKey(item *catalog.ImageItem, opts *Options) string {
	return item.Field(opts.SortPrimary.Field)
}
