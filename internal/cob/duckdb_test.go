package cob

import (
	"path/filepath"
	"testing"
)

func TestDuckDBLoader_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.duckdb")

	loader, err := NewDuckDBLoader(dbPath)
	if err != nil {
		t.Fatalf("NewDuckDBLoader: %v", err)
	}
	defer loader.Close()

	if err := loader.CreateSchema(); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	if err := loader.SetMetadata("name", "maize-root"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := loader.SetMetadata("sig_edge_zscore", "2.5"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}

	genes := []Gene{
		{ID: "g1", Chrom: "1", Start: 100, End: 500},
		{ID: "g2", Chrom: "1", Start: 1000, End: 1500},
		{ID: "g3", Chrom: "2", Start: 100, End: 400},
	}
	for _, g := range genes {
		if err := loader.InsertGene(g); err != nil {
			t.Fatalf("InsertGene(%s): %v", g.ID, err)
		}
	}
	if err := loader.InsertEdge("g1", "g2", 4.2); err != nil {
		t.Fatalf("InsertEdge: %v", err)
	}

	count, err := loader.GeneCount()
	if err != nil {
		t.Fatalf("GeneCount: %v", err)
	}
	if count != 3 {
		t.Errorf("GeneCount = %d, want 3", count)
	}

	edges, err := loader.EdgeCount()
	if err != nil {
		t.Fatalf("EdgeCount: %v", err)
	}
	if edges != 1 {
		t.Errorf("EdgeCount = %d, want 1", edges)
	}

	c, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Name() != "maize-root" {
		t.Errorf("Name = %q, want maize-root", c.Name())
	}
	if c.SigEdgeZScore() != 2.5 {
		t.Errorf("SigEdgeZScore = %v, want 2.5", c.SigEdgeZScore())
	}
	if c.NumGenes() != 3 {
		t.Errorf("NumGenes = %d, want 3", c.NumGenes())
	}
	if c.GlobalDegree("g1") != 1 {
		t.Errorf("GlobalDegree(g1) = %d, want 1", c.GlobalDegree("g1"))
	}
	if c.GlobalDegree("g3") != 0 {
		t.Errorf("GlobalDegree(g3) = %d, want 0", c.GlobalDegree("g3"))
	}
}
