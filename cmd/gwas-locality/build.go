package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inodb/gwas-locality/internal/cob"
	"github.com/inodb/gwas-locality/internal/gwas"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build DuckDB stores from tab-delimited inputs",
	}
	cmd.AddCommand(newBuildCOBCmd())
	cmd.AddCommand(newBuildGWASCmd())
	return cmd
}

func newBuildCOBCmd() *cobra.Command {
	var (
		name      string
		genesPath string
		edgesPath string
		sigZ      float64
	)

	cmd := &cobra.Command{
		Use:   "cob <output.duckdb>",
		Short: "Build a co-expression network store",
		Long: `Build a co-expression network DuckDB database from two tab-delimited
files: genes (id, chrom, start, end) and edges (gene_a, gene_b, score).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuildCOB(args[0], name, genesPath, edgesPath, sigZ)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "network identifier (required)")
	cmd.Flags().StringVar(&genesPath, "genes", "", "genes TSV file (required)")
	cmd.Flags().StringVar(&edgesPath, "edges", "", "edges TSV file (required)")
	cmd.Flags().Float64Var(&sigZ, "sig-edge-zscore", cob.DefaultSigEdgeZScore, "significant-edge z-score stored with the network")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("genes")
	_ = cmd.MarkFlagRequired("edges")
	return cmd
}

func runBuildCOB(outPath, name, genesPath, edgesPath string, sigZ float64) error {
	loader, err := cob.NewDuckDBLoader(outPath)
	if err != nil {
		return err
	}
	defer loader.Close()
	if err := loader.CreateSchema(); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := loader.SetMetadata("name", name); err != nil {
		return err
	}
	if err := loader.SetMetadata("sig_edge_zscore", strconv.FormatFloat(sigZ, 'g', -1, 64)); err != nil {
		return err
	}

	genes := 0
	err = eachTSVRow(genesPath, 4, func(fields []string) error {
		start, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return fmt.Errorf("parse gene start %q: %w", fields[2], err)
		}
		end, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return fmt.Errorf("parse gene end %q: %w", fields[3], err)
		}
		genes++
		return loader.InsertGene(cob.Gene{ID: fields[0], Chrom: fields[1], Start: start, End: end})
	})
	if err != nil {
		return fmt.Errorf("load genes: %w", err)
	}

	edges := 0
	err = eachTSVRow(edgesPath, 3, func(fields []string) error {
		score, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("parse edge score %q: %w", fields[2], err)
		}
		edges++
		return loader.InsertEdge(fields[0], fields[1], score)
	})
	if err != nil {
		return fmt.Errorf("load edges: %w", err)
	}

	fmt.Printf("Built %s: %d genes, %d edges\n", outPath, genes, edges)
	return nil
}

func newBuildGWASCmd() *cobra.Command {
	var (
		name     string
		snpsPath string
	)

	cmd := &cobra.Command{
		Use:   "gwas <output.duckdb>",
		Short: "Build a GWAS ontology store",
		Long: `Build a GWAS ontology DuckDB database from a tab-delimited SNP file.
The first line is a header starting with term, chrom, pos; any further
columns become numeric SNP attributes (for example pval).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuildGWAS(args[0], name, snpsPath)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "ontology identifier (required)")
	cmd.Flags().StringVar(&snpsPath, "snps", "", "SNP TSV file (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("snps")
	return cmd
}

func runBuildGWAS(outPath, name, snpsPath string) error {
	f, err := os.Open(snpsPath)
	if err != nil {
		return fmt.Errorf("open SNP file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return fmt.Errorf("SNP file %s: missing header", snpsPath)
	}
	header := strings.Split(scanner.Text(), "\t")
	if len(header) < 3 || header[0] != "term" || header[1] != "chrom" || header[2] != "pos" {
		return fmt.Errorf("SNP file %s: header must start with term, chrom, pos", snpsPath)
	}
	attrNames := header[3:]

	ontology := gwas.NewGWAS(name)
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			return fmt.Errorf("SNP file %s line %d: expected %d fields, got %d", snpsPath, lineNo, len(header), len(fields))
		}
		pos, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return fmt.Errorf("SNP file %s line %d: parse pos: %w", snpsPath, lineNo, err)
		}
		snp := gwas.SNP{Chrom: fields[1], Pos: pos, Attrs: make(map[string]float64)}
		for i, attr := range attrNames {
			v, err := strconv.ParseFloat(fields[3+i], 64)
			if err != nil {
				return fmt.Errorf("SNP file %s line %d: parse %s: %w", snpsPath, lineNo, attr, err)
			}
			snp.Attrs[attr] = v
		}

		termID := fields[0]
		term, err := ontology.Term(termID)
		if err != nil {
			term = &gwas.Term{ID: termID}
			ontology.AddTerm(term)
		}
		term.SNPs = append(term.SNPs, snp)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read SNP file: %w", err)
	}

	loader, err := gwas.NewDuckDBLoader(outPath)
	if err != nil {
		return err
	}
	defer loader.Close()
	if err := loader.CreateSchema(); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := loader.SetMetadata("name", name); err != nil {
		return err
	}
	for _, term := range ontology.Terms() {
		if err := loader.InsertTerm(term); err != nil {
			return err
		}
	}

	fmt.Printf("Built %s: %d terms\n", outPath, len(ontology.Terms()))
	return nil
}

// eachTSVRow streams a tab-delimited file, skipping blank and comment
// lines, and calls fn with at least minFields columns per row.
func eachTSVRow(path string, minFields int, fn func(fields []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < minFields {
			return fmt.Errorf("%s line %d: expected %d fields, got %d", path, lineNo, minFields, len(fields))
		}
		if err := fn(fields); err != nil {
			return err
		}
	}
	return scanner.Err()
}
