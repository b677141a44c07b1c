package refgen

import (
	"sort"

	"github.com/inodb/gwas-locality/internal/cob"
)

// chromIndex provides overlap queries over one chromosome's genes using a
// sorted-slice approach with a suffix-max array. Genes are loaded once and
// never modified after build.
type chromIndex struct {
	genes  []cob.Gene // sorted by start
	maxEnd []int64    // maxEnd[i] = max(End) for genes[i:]
}

// newChromIndex builds the index from genes already sorted by start.
func newChromIndex(genes []cob.Gene) *chromIndex {
	ci := &chromIndex{genes: genes}
	if len(genes) == 0 {
		return ci
	}
	ci.maxEnd = make([]int64, len(genes))
	ci.maxEnd[len(genes)-1] = genes[len(genes)-1].End
	for i := len(genes) - 2; i >= 0; i-- {
		ci.maxEnd[i] = genes[i].End
		if ci.maxEnd[i+1] > ci.maxEnd[i] {
			ci.maxEnd[i] = ci.maxEnd[i+1]
		}
	}
	return ci
}

// overlapRange returns the index range of genes overlapping [start, end]
// plus the insertion point used for flanking when nothing overlaps. first
// and last bound the overlapping genes as [first, last); when first == last
// no gene overlaps and both equal the insertion point.
func (ci *chromIndex) overlapRange(start, end int64) (first, last int) {
	n := len(ci.genes)
	if n == 0 {
		return 0, 0
	}

	// hi is the first index with gene start beyond the interval; no gene at
	// or after hi can overlap.
	hi := sort.Search(n, func(i int) bool { return ci.genes[i].Start > end })

	// Walk left from hi; the suffix-max array prunes the scan once no
	// earlier gene can still reach the interval.
	first = hi
	for i := hi - 1; i >= 0; i-- {
		if ci.maxEnd[i] < start {
			break
		}
		if ci.genes[i].End >= start {
			first = i
		}
	}
	if first == hi {
		// Nothing overlapped; both bounds are the insertion point.
		return hi, hi
	}
	return first, hi
}
