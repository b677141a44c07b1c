package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/gwas-locality/internal/analysis"
	"github.com/inodb/gwas-locality/internal/cob"
	"github.com/inodb/gwas-locality/internal/gwas"
	"github.com/inodb/gwas-locality/internal/output"
	"github.com/inodb/gwas-locality/internal/plot"
	"github.com/inodb/gwas-locality/internal/refgen"
)

type localityOptions struct {
	cobPath  string
	gwasPath string
	terms    []string
	out      string
	plot     bool
	cfg      analysis.Config
}

func newLocalityCmd() *cobra.Command {
	opts := localityOptions{cfg: analysis.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "locality",
		Short: "Run the locality test for one or more GWAS terms",
		Example: `  gwas-locality locality --cob net.duckdb --gwas traits.duckdb --terms height --out results
  gwas-locality locality --cob net.duckdb --gwas traits.duckdb --terms all --gene-specific=false --out results`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocality(opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.cobPath, "cob", "", "co-expression network DuckDB database (required)")
	f.StringVar(&opts.gwasPath, "gwas", "", "GWAS ontology DuckDB database (required)")
	f.StringSliceVar(&opts.terms, "terms", []string{"all"}, "term ids to analyze, or 'all'")
	f.StringVar(&opts.out, "out", "locality", "output prefix; results land in <out>_Locality.csv")
	f.BoolVar(&opts.plot, "plot", false, "emit a per-term diagnostic PNG next to the results")
	f.Int64Var(&opts.cfg.CandidateWindowSize, "candidate-window-size", opts.cfg.CandidateWindowSize, "bp window around each SNP")
	f.IntVar(&opts.cfg.CandidateFlankLimit, "candidate-flank-limit", opts.cfg.CandidateFlankLimit, "flanking genes per side of a locus")
	f.StringVar(&opts.cfg.SNP2Gene, "snp2gene", opts.cfg.SNP2Gene, "SNP-to-gene mapping: effective or strongest")
	f.StringVar(&opts.cfg.StrongestAttr, "strongest-attr", opts.cfg.StrongestAttr, "SNP attribute ranked by the strongest mapping")
	f.BoolVar(&opts.cfg.StrongestLowest, "strongest-lowest", opts.cfg.StrongestLowest, "smallest attribute value wins (p-values)")
	f.IntVar(&opts.cfg.NumBootstraps, "num-bootstraps", opts.cfg.NumBootstraps, "bootstrap iterations for enrichment and FDR")
	f.IntVar(&opts.cfg.RegressionWindowSize, "regression-window-size", opts.cfg.RegressionWindowSize, "records per residual-SD window")
	f.BoolVar(&opts.cfg.GeneSpecific, "gene-specific", opts.cfg.GeneSpecific, "per-gene FDR instead of an aggregate term p-value")
	f.Float64Var(&opts.cfg.MinFDRDegree, "min-fdr-degree", opts.cfg.MinFDRDegree, "minimum local degree counted in the FDR diagnostic")
	f.Float64Var(&opts.cfg.SigEdgeZScore, "sig-edge-zscore", 0, "override the network's significant-edge z-score")
	f.Int64Var(&opts.cfg.Seed, "seed", opts.cfg.Seed, "bootstrap RNG seed")
	f.IntVar(&opts.cfg.Workers, "workers", 0, "bootstrap workers (0 = number of CPUs)")

	_ = cmd.MarkFlagRequired("cob")
	_ = cmd.MarkFlagRequired("gwas")

	// Config file and environment provide defaults; explicit flags win.
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		cmd.Flags().VisitAll(func(fl *pflag.Flag) {
			if err != nil || fl.Changed || !viper.IsSet(fl.Name) {
				return
			}
			if v := viper.GetString(fl.Name); v != "" {
				err = cmd.Flags().Set(fl.Name, v)
			}
		})
		return err
	}

	return cmd
}

func runLocality(opts localityOptions) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if err := opts.cfg.Validate(); err != nil {
		return err
	}

	outPath := strings.TrimSuffix(opts.out, ".csv") + "_Locality.csv"
	if dir := filepath.Dir(outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	// Idempotent re-run guard: with a fixed seed the run is deterministic,
	// so an existing result file means there is nothing to do.
	if _, err := os.Stat(outPath); err == nil {
		logger.Info("output exists, skipping", zap.String("path", outPath))
		return nil
	}

	cobLoader, err := cob.NewDuckDBLoader(opts.cobPath)
	if err != nil {
		return err
	}
	defer cobLoader.Close()
	network, err := cobLoader.Load()
	if err != nil {
		return fmt.Errorf("load network: %w", err)
	}
	network.SetLogger(logger)
	logger.Info("network loaded",
		zap.String("cob", network.Name()), zap.Int("genes", network.NumGenes()))

	gwasLoader, err := gwas.NewDuckDBLoader(opts.gwasPath)
	if err != nil {
		return err
	}
	defer gwasLoader.Close()
	ontology, err := gwasLoader.Load()
	if err != nil {
		return fmt.Errorf("load gwas: %w", err)
	}

	var terms []*gwas.Term
	if len(opts.terms) == 1 && opts.terms[0] == "all" {
		terms = ontology.Terms()
	} else {
		for _, id := range opts.terms {
			t, err := ontology.Term(id)
			if err != nil {
				return err
			}
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return fmt.Errorf("gwas %s: no terms to analyze", ontology.Name())
	}

	driver := analysis.NewDriver(network, refgen.New(network.Genes()))
	driver.SetLogger(logger)

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	var writer *output.ResultWriter
	if opts.cfg.GeneSpecific {
		writer = output.NewResultWriter(f)
	} else {
		writer = output.NewAggregateWriter(f)
	}
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	prov := output.Provenance{
		FlankLimit: opts.cfg.CandidateFlankLimit,
		WindowSize: opts.cfg.CandidateWindowSize,
		Ontology:   ontology.Name(),
		COB:        network.Name(),
	}

	for _, term := range terms {
		res, err := driver.AnalyzeTerm(term, opts.cfg)
		if err != nil {
			return err
		}
		if err := writer.WriteTable(prov, res.Loc); err != nil {
			return fmt.Errorf("write results for term %s: %w", term.ID, err)
		}
		if opts.plot {
			pngPath := fmt.Sprintf("%s_%s.png", strings.TrimSuffix(outPath, ".csv"), term.ID)
			params := plot.Params{
				COB:          network.Name(),
				Ontology:     ontology.Name(),
				Term:         term.ID,
				MinFDRDegree: opts.cfg.MinFDRDegree,
			}
			if err := plot.Term(pngPath, params, res.Loc, res.FDR); err != nil {
				return fmt.Errorf("plot term %s: %w", term.ID, err)
			}
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	logger.Info("results written", zap.String("path", outPath))
	return nil
}
