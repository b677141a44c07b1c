// Package analysis orchestrates the locality test per GWAS term: candidate
// resolution, bootstrap generation, trend standardization, z-scoring, and
// FDR estimation.
package analysis

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/gwas-locality/internal/cob"
	"github.com/inodb/gwas-locality/internal/gwas"
	"github.com/inodb/gwas-locality/internal/locality"
	"github.com/inodb/gwas-locality/internal/refgen"
)

// Driver runs locality analyses against one network and its reference gene
// set. Terms are independent; the driver holds no per-term state.
type Driver struct {
	cob    *cob.COB
	ref    *refgen.RefGen
	logger *zap.Logger
}

// NewDriver creates a driver over a network and reference gene set.
func NewDriver(c *cob.COB, ref *refgen.RefGen) *Driver {
	return &Driver{cob: c, ref: ref, logger: zap.NewNop()}
}

// SetLogger sets the logger for progress and warning messages.
func (d *Driver) SetLogger(l *zap.Logger) { d.logger = l }

// Result bundles the three tables produced for one term.
type Result struct {
	Loc   locality.Table // empirical records (or the single aggregate row)
	BSLoc locality.Table // enrichment-bootstrap records
	FDR   locality.Table // FDR-bootstrap records (per-iteration rows in aggregate mode)
}

// AnalyzeTerm runs the full locality test for one term.
func (d *Driver) AnalyzeTerm(term *gwas.Term, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SigEdgeZScore > 0 {
		d.cob.SetSigEdgeZScore(cfg.SigEdgeZScore)
	}

	loci, err := d.resolveLoci(term, cfg)
	if err != nil {
		return nil, err
	}
	if len(loci) == 0 {
		return nil, fmt.Errorf("term %s: no loci", term.ID)
	}

	// Empirical candidates and locality, with the trend fit on the
	// empirical population itself.
	candidates := d.ref.CandidateGenes(loci, cfg.CandidateFlankLimit)
	loc, err := d.cob.Locality(candidates, true)
	if err != nil {
		return nil, fmt.Errorf("term %s: empirical locality: %w", term.ID, err)
	}
	if len(loc) == 0 {
		return nil, fmt.Errorf("term %s: no candidate genes in network", term.ID)
	}
	for i := range loc {
		loc[i].Term = term.ID
		loc[i].Iter = locality.IterEmpirical
	}
	d.logger.Info("empirical locality computed",
		zap.String("term", term.ID),
		zap.Int("loci", len(loci)),
		zap.Int("candidates", len(loc)))

	// Enrichment bootstraps: one trend and window model over the whole
	// population, smoothed into the residual-SD standardizer.
	bsloc, err := d.bootstrapTables(term, loci, "bs", cfg, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("term %s: enrichment bootstraps: %w", term.ID, err)
	}
	if err := locality.FitTrend(bsloc); err != nil {
		return nil, fmt.Errorf("term %s: bootstrap trend: %w", term.ID, err)
	}
	wm, err := locality.BuildWindows(bsloc, cfg.RegressionWindowSize)
	if err != nil {
		return nil, fmt.Errorf("term %s: windowing: %w", term.ID, err)
	}
	std, err := locality.NewStandardizer(wm)
	if err != nil {
		return nil, fmt.Errorf("term %s: standardizer: %w", term.ID, err)
	}
	if n := std.DegenerateWindows(); n > 0 {
		d.logger.Warn("degenerate residual SD windows",
			zap.String("term", term.ID), zap.Int("windows", n))
	}

	if n := locality.AttachZScores(loc, std); n > 0 {
		d.logger.Warn("non-finite empirical z-scores",
			zap.String("term", term.ID), zap.Int("records", n))
	}
	locality.AttachZScores(bsloc, std)

	// FDR bootstraps: independent population, its own trend, scored against
	// the enrichment population's smoothed SD curve and tick width.
	fdr, err := d.bootstrapTables(term, loci, "fdr", cfg, cfg.Seed+int64(cfg.NumBootstraps))
	if err != nil {
		return nil, fmt.Errorf("term %s: fdr bootstraps: %w", term.ID, err)
	}
	fdr.SortByGlobal()
	if err := locality.FitTrend(fdr); err != nil {
		return nil, fmt.Errorf("term %s: fdr trend: %w", term.ID, err)
	}
	fdr = fdr.FilterMaxGlobal(loc.MaxGlobal())
	for i := range fdr {
		fdr[i].Window = int(fdr[i].Global) / wm.Ticks
	}
	if n := locality.AttachZScores(fdr, std); n > 0 {
		d.logger.Warn("non-finite fdr z-scores",
			zap.String("term", term.ID), zap.Int("records", n))
	}

	if cfg.GeneSpecific {
		locality.GeneFDR(loc, fdr)
		return &Result{Loc: loc, BSLoc: bsloc, FDR: fdr}, nil
	}

	empRow, iterRows, pval, err := locality.AggregatePValue(loc, fdr)
	if err != nil {
		return nil, fmt.Errorf("term %s: %w", term.ID, err)
	}
	d.logger.Info("aggregate p-value",
		zap.String("term", term.ID), zap.Float64("pval", pval))
	return &Result{Loc: locality.Table{empRow}, BSLoc: bsloc, FDR: iterRows}, nil
}

// AnalyzeTerms resolves term ids ("all" selects every term in the GWAS) and
// runs AnalyzeTerm for each, concatenating the empirical tables in order. A
// missing term is fatal and reported by id.
func (d *Driver) AnalyzeTerms(g *gwas.GWAS, ids []string, cfg Config) (locality.Table, error) {
	var terms []*gwas.Term
	if len(ids) == 1 && ids[0] == "all" {
		terms = g.Terms()
	} else {
		for _, id := range ids {
			t, err := g.Term(id)
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("gwas %s: no terms to analyze", g.Name())
	}

	var all locality.Table
	for _, term := range terms {
		res, err := d.AnalyzeTerm(term, cfg)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Loc...)
	}
	return all, nil
}

// resolveLoci maps a term's SNPs to loci per the configured mode.
func (d *Driver) resolveLoci(term *gwas.Term, cfg Config) ([]gwas.Locus, error) {
	switch cfg.SNP2Gene {
	case SNP2GeneEffective:
		return term.EffectiveLoci(cfg.CandidateWindowSize), nil
	case SNP2GeneStrongest:
		return term.StrongestLoci(cfg.CandidateWindowSize, cfg.StrongestAttr, cfg.StrongestLowest)
	default:
		return nil, fmt.Errorf("%q is not a valid snp2gene mapping", cfg.SNP2Gene)
	}
}
