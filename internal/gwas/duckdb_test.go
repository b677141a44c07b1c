package gwas

import (
	"path/filepath"
	"testing"
)

func TestDuckDBLoader_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "gwas.duckdb")

	loader, err := NewDuckDBLoader(dbPath)
	if err != nil {
		t.Fatalf("NewDuckDBLoader: %v", err)
	}
	defer loader.Close()

	if err := loader.CreateSchema(); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	if err := loader.SetMetadata("name", "nam"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}

	term := &Term{
		ID:   "height",
		Desc: "plant height",
		SNPs: []SNP{
			{Chrom: "1", Pos: 1000, Attrs: map[string]float64{"pval": 1e-8}},
			{Chrom: "2", Pos: 2000, Attrs: map[string]float64{"pval": 1e-5, "effect": 0.4}},
		},
	}
	if err := loader.InsertTerm(term); err != nil {
		t.Fatalf("InsertTerm: %v", err)
	}

	count, err := loader.TermCount()
	if err != nil {
		t.Fatalf("TermCount: %v", err)
	}
	if count != 1 {
		t.Errorf("TermCount = %d, want 1", count)
	}

	g, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g.Name() != "nam" {
		t.Errorf("Name = %q, want nam", g.Name())
	}

	got, err := g.Term("height")
	if err != nil {
		t.Fatalf("Term: %v", err)
	}
	if got.Desc != "plant height" {
		t.Errorf("Desc = %q, want plant height", got.Desc)
	}
	if len(got.SNPs) != 2 {
		t.Fatalf("len(SNPs) = %d, want 2", len(got.SNPs))
	}
	if got.SNPs[0].Pos != 1000 {
		t.Errorf("SNPs[0].Pos = %d, want 1000", got.SNPs[0].Pos)
	}
	if got.SNPs[0].Attrs["pval"] != 1e-8 {
		t.Errorf("SNPs[0].Attrs[pval] = %v, want 1e-8", got.SNPs[0].Attrs["pval"])
	}
	if got.SNPs[1].Attrs["effect"] != 0.4 {
		t.Errorf("SNPs[1].Attrs[effect] = %v, want 0.4", got.SNPs[1].Attrs["effect"])
	}
}
