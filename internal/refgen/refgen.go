// Package refgen provides the reference gene set: mapping GWAS loci to
// candidate genes and generating shape-matched random candidate sets for
// bootstrap null distributions.
package refgen

import (
	"math/rand"
	"sort"

	"github.com/inodb/gwas-locality/internal/cob"
	"github.com/inodb/gwas-locality/internal/gwas"
)

// RefGen is an ordered reference gene set indexed per chromosome.
type RefGen struct {
	all    []cob.Gene // genome order: chrom, then start
	chroms map[string]*chromIndex
}

// New builds a reference gene set. The input does not need to be sorted.
func New(genes []cob.Gene) *RefGen {
	sorted := append([]cob.Gene(nil), genes...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Chrom != sorted[j].Chrom {
			return sorted[i].Chrom < sorted[j].Chrom
		}
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].ID < sorted[j].ID
	})

	r := &RefGen{all: sorted, chroms: make(map[string]*chromIndex)}
	start := 0
	for start < len(sorted) {
		end := start
		for end < len(sorted) && sorted[end].Chrom == sorted[start].Chrom {
			end++
		}
		r.chroms[sorted[start].Chrom] = newChromIndex(sorted[start:end])
		start = end
	}
	return r
}

// NumGenes returns the number of genes in the reference set.
func (r *RefGen) NumGenes() int { return len(r.all) }

// CandidateGenes maps loci to candidate gene ids: the genes inside each
// locus interval plus up to flankLimit flanking genes on each side,
// deduplicated in order of first appearance.
func (r *RefGen) CandidateGenes(loci []gwas.Locus, flankLimit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range loci {
		for _, g := range r.locusGenes(l, flankLimit) {
			if !seen[g.ID] {
				seen[g.ID] = true
				out = append(out, g.ID)
			}
		}
	}
	return out
}

// BootstrapCandidateGenes produces a random candidate set matching the
// shape of the empirical one: for every locus it substitutes a uniformly
// random stretch of consecutive genes of the same size, never reusing a
// gene across loci. Sampling is driven entirely by rng, so a fixed seed
// reproduces the set exactly. The second return value counts loci whose
// sampling gave up before finding an unused stretch; a nonzero count means
// the set is smaller than the empirical shape and callers should surface it.
func (r *RefGen) BootstrapCandidateGenes(loci []gwas.Locus, flankLimit int, rng *rand.Rand) ([]string, int) {
	used := make(map[string]bool)
	var out []string
	skipped := 0
	n := len(r.all)
	if n == 0 {
		return nil, 0
	}

	for _, l := range loci {
		m := len(r.locusGenes(l, flankLimit))
		if m == 0 {
			continue
		}
		if m > n {
			m = n
		}

		// Rejection-sample a start position whose stretch is unused.
		placed := false
		for attempt := 0; attempt < 1000; attempt++ {
			s := rng.Intn(n)
			ok := true
			for i := 0; i < m; i++ {
				if used[r.all[(s+i)%n].ID] {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			for i := 0; i < m; i++ {
				g := r.all[(s+i)%n]
				used[g.ID] = true
				out = append(out, g.ID)
			}
			placed = true
			break
		}
		if !placed {
			skipped++
		}
	}
	return out, skipped
}

// locusGenes returns the genes within one locus interval plus its flanks.
func (r *RefGen) locusGenes(l gwas.Locus, flankLimit int) []cob.Gene {
	ci, ok := r.chroms[l.Chrom]
	if !ok {
		return nil
	}
	first, last := ci.overlapRange(l.Start, l.End)

	lo := first - flankLimit
	if lo < 0 {
		lo = 0
	}
	hi := last + flankLimit
	if hi > len(ci.genes) {
		hi = len(ci.genes)
	}
	return ci.genes[lo:hi]
}
