package analysis

import "fmt"

// SNP-to-gene mapping modes.
const (
	SNP2GeneEffective = "effective"
	SNP2GeneStrongest = "strongest"
)

// Config holds every knob of one locality analysis run.
type Config struct {
	CandidateWindowSize  int64   // bp window around each SNP
	CandidateFlankLimit  int     // flanking genes per side of a locus
	SNP2Gene             string  // "effective" or "strongest"
	StrongestAttr        string  // SNP attribute ranked by "strongest" mapping
	StrongestLowest      bool    // smallest attribute value wins (p-values)
	NumBootstraps        int     // bootstrap iterations for enrichment and FDR
	RegressionWindowSize int     // records per residual-SD window
	GeneSpecific         bool    // per-gene FDR instead of aggregate p-value
	MinFDRDegree         float64 // minimum local degree counted in diagnostics
	SigEdgeZScore        float64 // >0 overrides the network's edge threshold
	Seed                 int64   // bootstrap RNG seed
	Workers              int     // bootstrap worker count, 0 = NumCPU
}

// DefaultConfig mirrors the conventional analysis parameters.
func DefaultConfig() Config {
	return Config{
		CandidateWindowSize:  50000,
		CandidateFlankLimit:  2,
		SNP2Gene:             SNP2GeneEffective,
		StrongestAttr:        "pval",
		StrongestLowest:      true,
		NumBootstraps:        50,
		RegressionWindowSize: 100,
		GeneSpecific:         true,
		MinFDRDegree:         2,
		Seed:                 42,
	}
}

// Validate reports configuration errors before any work starts.
func (c Config) Validate() error {
	switch c.SNP2Gene {
	case SNP2GeneEffective, SNP2GeneStrongest:
	default:
		return fmt.Errorf("%q is not a valid snp2gene mapping", c.SNP2Gene)
	}
	if c.NumBootstraps <= 0 {
		return fmt.Errorf("num bootstraps must be positive, got %d", c.NumBootstraps)
	}
	if c.RegressionWindowSize <= 0 {
		return fmt.Errorf("regression window size must be positive, got %d", c.RegressionWindowSize)
	}
	if c.CandidateWindowSize <= 0 {
		return fmt.Errorf("candidate window size must be positive, got %d", c.CandidateWindowSize)
	}
	if c.CandidateFlankLimit < 0 {
		return fmt.Errorf("candidate flank limit must not be negative, got %d", c.CandidateFlankLimit)
	}
	return nil
}
