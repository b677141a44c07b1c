package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/gwas-locality/internal/locality"
)

func TestTerm_WritesPNG(t *testing.T) {
	loc := locality.Table{
		{Gene: "g0", Term: "height", Iter: locality.IterEmpirical, Local: 1, Global: 2, Fitted: 1.3, ZScore: -0.5},
		{Gene: "g3", Term: "height", Iter: locality.IterEmpirical, Local: 2, Global: 2, Fitted: 1.3, ZScore: 1.2},
	}
	fdr := locality.Table{
		{Gene: "g5", Term: "height", Iter: "fdr0", Local: 0, Global: 2, ZScore: -1},
		{Gene: "g7", Term: "height", Iter: "fdr0", Local: 1, Global: 2, ZScore: 0.4},
		{Gene: "g1", Term: "height", Iter: "fdr1", Local: 2, Global: 2, ZScore: 1.5},
	}

	path := filepath.Join(t.TempDir(), "height.png")
	p := Params{COB: "maize-root", Ontology: "nam", Term: "height", MinFDRDegree: 1}
	require.NoError(t, Term(path, p, loc, fdr))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// PNG magic bytes.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, data[:8])
}

func TestTerm_EmptyBootstraps(t *testing.T) {
	loc := locality.Table{
		{Gene: "g0", Term: "height", Iter: locality.IterEmpirical, Local: 1, Global: 2, Fitted: 1.3},
	}

	path := filepath.Join(t.TempDir(), "empty.png")
	p := Params{COB: "c", Ontology: "o", Term: "height"}
	require.NoError(t, Term(path, p, loc, nil))

	_, err := os.Stat(path)
	require.NoError(t, err)
}
