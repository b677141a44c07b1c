// Package gwas provides the GWAS ontology: trait terms, their SNPs, and the
// SNP-to-locus mappings used for candidate gene selection.
package gwas

import (
	"fmt"
	"sort"
)

// Locus is a genomic interval associated with a trait term. Pos is the
// representative SNP position the interval was derived from.
type Locus struct {
	Chrom string
	Start int64
	End   int64
	Pos   int64
	Attrs map[string]float64
}

// Overlaps reports whether two loci share any position on the same
// chromosome.
func (l Locus) Overlaps(o Locus) bool {
	return l.Chrom == o.Chrom && l.Start <= o.End && o.Start <= l.End
}

// SNP is one genotyped marker with free-form numeric attributes (for
// example pval or effect size).
type SNP struct {
	Chrom string
	Pos   int64
	Attrs map[string]float64
}

// Term is one trait term and its associated SNPs.
type Term struct {
	ID   string
	Desc string
	SNPs []SNP
}

// EffectiveLoci widens every SNP by windowSize/2 on each side and merges
// overlapping windows into collapsed loci. The result is sorted by
// chromosome then start.
func (t *Term) EffectiveLoci(windowSize int64) []Locus {
	loci := t.snpLoci(windowSize)
	if len(loci) == 0 {
		return nil
	}

	merged := []Locus{loci[0]}
	for _, l := range loci[1:] {
		last := &merged[len(merged)-1]
		if last.Overlaps(l) {
			if l.End > last.End {
				last.End = l.End
			}
			continue
		}
		merged = append(merged, l)
	}
	return merged
}

// StrongestLoci collapses SNPs the same way as EffectiveLoci but keeps only
// the strongest SNP of each collapsed group, chosen by the named attribute
// (smallest value wins when lowest is true, as for p-values). The returned
// locus is the winning SNP widened by windowSize/2.
func (t *Term) StrongestLoci(windowSize int64, attr string, lowest bool) ([]Locus, error) {
	loci := t.snpLoci(windowSize)
	if len(loci) == 0 {
		return nil, nil
	}

	stronger := func(a, b Locus) (bool, error) {
		av, ok := a.Attrs[attr]
		if !ok {
			return false, fmt.Errorf("strongest loci: SNP %s:%d has no attribute %q", a.Chrom, a.Pos, attr)
		}
		bv, ok := b.Attrs[attr]
		if !ok {
			return false, fmt.Errorf("strongest loci: SNP %s:%d has no attribute %q", b.Chrom, b.Pos, attr)
		}
		if lowest {
			return av < bv, nil
		}
		return av > bv, nil
	}

	out := []Locus{loci[0]}
	for _, l := range loci[1:] {
		last := &out[len(out)-1]
		if !last.Overlaps(l) {
			out = append(out, l)
			continue
		}
		wins, err := stronger(l, *last)
		if err != nil {
			return nil, err
		}
		if wins {
			*last = l
		}
	}
	return out, nil
}

// snpLoci returns one window-widened locus per SNP, sorted.
func (t *Term) snpLoci(windowSize int64) []Locus {
	half := windowSize / 2
	loci := make([]Locus, 0, len(t.SNPs))
	for _, s := range t.SNPs {
		start := s.Pos - half
		if start < 1 {
			start = 1
		}
		loci = append(loci, Locus{
			Chrom: s.Chrom,
			Start: start,
			End:   s.Pos + half,
			Pos:   s.Pos,
			Attrs: s.Attrs,
		})
	}
	sort.Slice(loci, func(i, j int) bool {
		if loci[i].Chrom != loci[j].Chrom {
			return loci[i].Chrom < loci[j].Chrom
		}
		if loci[i].Start != loci[j].Start {
			return loci[i].Start < loci[j].Start
		}
		return loci[i].Pos < loci[j].Pos
	})
	return loci
}

// GWAS is a named collection of trait terms.
type GWAS struct {
	name  string
	terms map[string]*Term
	order []string
}

// NewGWAS creates an empty GWAS ontology.
func NewGWAS(name string) *GWAS {
	return &GWAS{name: name, terms: make(map[string]*Term)}
}

// Name returns the ontology identifier.
func (g *GWAS) Name() string { return g.name }

// AddTerm registers a term, replacing any previous term with the same id.
func (g *GWAS) AddTerm(t *Term) {
	if _, ok := g.terms[t.ID]; !ok {
		g.order = append(g.order, t.ID)
	}
	g.terms[t.ID] = t
}

// Term returns the named term or an error identifying the missing id.
func (g *GWAS) Term(id string) (*Term, error) {
	t, ok := g.terms[id]
	if !ok {
		return nil, fmt.Errorf("gwas %s: term %q not found", g.name, id)
	}
	return t, nil
}

// Terms returns every term in insertion order.
func (g *GWAS) Terms() []*Term {
	out := make([]*Term, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.terms[id])
	}
	return out
}
