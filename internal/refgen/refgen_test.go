package refgen

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/gwas-locality/internal/cob"
	"github.com/inodb/gwas-locality/internal/gwas"
)

// chromGenes lays out n genes of 500bp spaced 1kb apart on one chromosome.
func chromGenes(chrom string, n int) []cob.Gene {
	genes := make([]cob.Gene, n)
	for i := range genes {
		genes[i] = cob.Gene{
			ID:    fmt.Sprintf("%s_g%d", chrom, i),
			Chrom: chrom,
			Start: int64(i*1000 + 1),
			End:   int64(i*1000 + 500),
		}
	}
	return genes
}

func TestCandidateGenes_WithinLocus(t *testing.T) {
	r := New(chromGenes("1", 10))

	// Covers genes 2, 3 and 4 exactly, no flank.
	loci := []gwas.Locus{{Chrom: "1", Start: 2001, End: 4501}}
	got := r.CandidateGenes(loci, 0)
	assert.Equal(t, []string{"1_g2", "1_g3", "1_g4"}, got)
}

func TestCandidateGenes_Flank(t *testing.T) {
	r := New(chromGenes("1", 10))

	loci := []gwas.Locus{{Chrom: "1", Start: 3001, End: 3501}}
	got := r.CandidateGenes(loci, 2)
	assert.Equal(t, []string{"1_g1", "1_g2", "1_g3", "1_g4", "1_g5"}, got)
}

func TestCandidateGenes_FlankClampedAtChromEdge(t *testing.T) {
	r := New(chromGenes("1", 5))

	loci := []gwas.Locus{{Chrom: "1", Start: 1, End: 600}}
	got := r.CandidateGenes(loci, 3)
	assert.Equal(t, []string{"1_g0", "1_g1", "1_g2", "1_g3"}, got)
}

func TestCandidateGenes_EmptyLocusStillFlanks(t *testing.T) {
	r := New(chromGenes("1", 10))

	// Between genes 4 and 5: nothing inside, flanks on both sides.
	loci := []gwas.Locus{{Chrom: "1", Start: 4600, End: 4900}}
	got := r.CandidateGenes(loci, 1)
	assert.Equal(t, []string{"1_g4", "1_g5"}, got)
}

func TestCandidateGenes_Dedup(t *testing.T) {
	r := New(chromGenes("1", 10))

	loci := []gwas.Locus{
		{Chrom: "1", Start: 2001, End: 2501},
		{Chrom: "1", Start: 2001, End: 2501},
	}
	got := r.CandidateGenes(loci, 1)
	assert.Equal(t, []string{"1_g1", "1_g2", "1_g3"}, got)
}

func TestCandidateGenes_UnknownChrom(t *testing.T) {
	r := New(chromGenes("1", 4))
	got := r.CandidateGenes([]gwas.Locus{{Chrom: "7", Start: 1, End: 100}}, 2)
	assert.Empty(t, got)
}

func TestBootstrapCandidateGenes_ShapeMatched(t *testing.T) {
	r := New(chromGenes("1", 100))

	loci := []gwas.Locus{
		{Chrom: "1", Start: 2001, End: 4501}, // 3 genes
		{Chrom: "1", Start: 50001, End: 50501}, // 1 gene
	}
	empirical := r.CandidateGenes(loci, 1)

	rng := rand.New(rand.NewSource(9))
	boot, skipped := r.BootstrapCandidateGenes(loci, 1, rng)
	assert.Zero(t, skipped)
	assert.Len(t, boot, len(empirical))

	// No gene reused across loci.
	seen := map[string]bool{}
	for _, id := range boot {
		assert.False(t, seen[id], "gene %s sampled twice", id)
		seen[id] = true
	}
}

func TestBootstrapCandidateGenes_Deterministic(t *testing.T) {
	r := New(chromGenes("1", 50))
	loci := []gwas.Locus{{Chrom: "1", Start: 10001, End: 12501}}

	a, _ := r.BootstrapCandidateGenes(loci, 2, rand.New(rand.NewSource(42)))
	b, _ := r.BootstrapCandidateGenes(loci, 2, rand.New(rand.NewSource(42)))
	require.Equal(t, a, b)

	c, _ := r.BootstrapCandidateGenes(loci, 2, rand.New(rand.NewSource(43)))
	assert.NotEqual(t, a, c, "different seeds should give different samples")
}

func TestBootstrapCandidateGenes_ReportsExhaustedLoci(t *testing.T) {
	// Two genes total: the first locus consumes both, so no unused stretch
	// is left for the second and it must be reported as skipped.
	r := New(chromGenes("1", 2))
	loci := []gwas.Locus{
		{Chrom: "1", Start: 1, End: 1600},
		{Chrom: "1", Start: 1, End: 1600},
	}

	boot, skipped := r.BootstrapCandidateGenes(loci, 0, rand.New(rand.NewSource(1)))
	assert.Len(t, boot, 2)
	assert.Equal(t, 1, skipped)
}
