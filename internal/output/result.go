// Package output writes locality result tables as delimited files.
package output

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/inodb/gwas-locality/internal/locality"
)

// Provenance holds the run parameters prepended to every result row.
type Provenance struct {
	FlankLimit int
	WindowSize int64
	Ontology   string
	COB        string
}

// ResultWriter writes one result table in comma-delimited format. In
// aggregate mode the per-gene column is dropped and the score column is the
// term p-value.
type ResultWriter struct {
	w         *bufio.Writer
	aggregate bool
}

// NewResultWriter creates a writer for per-gene FDR rows.
func NewResultWriter(w io.Writer) *ResultWriter {
	return &ResultWriter{w: bufio.NewWriter(w)}
}

// NewAggregateWriter creates a writer for per-term aggregate rows.
func NewAggregateWriter(w io.Writer) *ResultWriter {
	return &ResultWriter{w: bufio.NewWriter(w), aggregate: true}
}

// Columns returns the header columns for this writer's mode.
func (rw *ResultWriter) Columns() []string {
	cols := []string{"FlankLimit", "WindowSize", "Ontology", "COB", "Term"}
	if !rw.aggregate {
		cols = append(cols, "Gene")
	}
	cols = append(cols, "Iter", "Local", "Global", "Fitted", "Resid", "Window", "BsStd", "ZScore")
	if rw.aggregate {
		return append(cols, "Pval")
	}
	return append(cols, "FDR")
}

// WriteHeader writes the header line.
func (rw *ResultWriter) WriteHeader() error {
	_, err := rw.w.WriteString(strings.Join(rw.Columns(), ",") + "\n")
	return err
}

// WriteTable writes every record of a table with the provenance columns
// prepended.
func (rw *ResultWriter) WriteTable(p Provenance, t locality.Table) error {
	for i := range t {
		if err := rw.writeRecord(p, t[i]); err != nil {
			return err
		}
	}
	return nil
}

func (rw *ResultWriter) writeRecord(p Provenance, r locality.Record) error {
	values := []string{
		strconv.Itoa(p.FlankLimit),
		strconv.FormatInt(p.WindowSize, 10),
		p.Ontology,
		p.COB,
		r.Term,
	}
	if !rw.aggregate {
		values = append(values, r.Gene)
	}
	values = append(values,
		r.Iter,
		formatFloat(r.Local),
		formatFloat(r.Global),
		formatFloat(r.Fitted),
		formatFloat(r.Resid),
		strconv.Itoa(r.Window),
		formatFloat(r.BsStd),
		formatFloat(r.ZScore),
		formatFloat(r.FDR),
	)
	_, err := rw.w.WriteString(strings.Join(values, ",") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (rw *ResultWriter) Flush() error {
	return rw.w.Flush()
}

// formatFloat renders a float column; NaN becomes an empty field.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
