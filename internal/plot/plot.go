// Package plot renders the per-term three-panel diagnostic figure:
// run parameters, the local~global degree scatter, and the z-score FDR
// curves.
package plot

import (
	"fmt"
	"image/color"
	"os"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/inodb/gwas-locality/internal/locality"
)

// Params labels the figure and controls the FDR panel.
type Params struct {
	COB          string
	Ontology     string
	Term         string
	MinFDRDegree float64
}

// Term renders the three-panel diagnostic figure for one term to a PNG.
func Term(path string, p Params, loc, fdr locality.Table) error {
	panels := []*plot.Plot{}

	info, err := infoPanel(p)
	if err != nil {
		return err
	}
	panels = append(panels, info)

	scatter, err := scatterPanel(loc, fdr)
	if err != nil {
		return err
	}
	panels = append(panels, scatter)

	curve, err := fdrPanel(p, loc, fdr)
	if err != nil {
		return err
	}
	panels = append(panels, curve)

	img := vgimg.New(24*vg.Inch, 8*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 1, Cols: len(panels),
		PadX: vg.Millimeter * 5, PadY: vg.Millimeter * 5,
	}
	canvases := plot.Align([][]*plot.Plot{panels}, tiles, dc)
	for i, panel := range panels {
		panel.Draw(canvases[0][i])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}

// infoPanel is a blank panel carrying the run identifiers.
func infoPanel(p Params) (*plot.Plot, error) {
	panel := plot.New()
	panel.HideAxes()
	panel.X.Min, panel.X.Max = 0, 1
	panel.Y.Min, panel.Y.Max = 0, 1

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs: []plotter.XY{
			{X: 0.1, Y: 0.7},
			{X: 0.1, Y: 0.5},
			{X: 0.1, Y: 0.3},
		},
		Labels: []string{
			"COB: " + p.COB,
			"Ontology: " + p.Ontology,
			"Term: " + p.Term,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("info labels: %w", err)
	}
	panel.Add(labels)
	return panel, nil
}

// scatterPanel plots the bootstrap cloud, the empirical points, and the
// empirical OLS line in local~global degree space.
func scatterPanel(loc, fdr locality.Table) (*plot.Plot, error) {
	panel := plot.New()
	panel.Title.Text = "Locality"
	panel.X.Label.Text = "Number Global Interactions"
	panel.Y.Label.Text = "Number Local Interactions"

	cloud, err := plotter.NewScatter(degreeXYs(fdr))
	if err != nil {
		return nil, fmt.Errorf("bootstrap scatter: %w", err)
	}
	cloud.GlyphStyle.Color = color.RGBA{R: 0xcc, A: 0x40}
	cloud.GlyphStyle.Radius = vg.Points(2)
	panel.Add(cloud)
	panel.Legend.Add("Bootstraps", cloud)

	emp, err := plotter.NewScatter(degreeXYs(loc))
	if err != nil {
		return nil, fmt.Errorf("empirical scatter: %w", err)
	}
	emp.GlyphStyle.Color = color.RGBA{B: 0xcc, A: 0xff}
	emp.GlyphStyle.Radius = vg.Points(3)
	panel.Add(emp)
	panel.Legend.Add("Empirical", emp)

	trend := make(plotter.XYs, len(loc))
	for i := range loc {
		trend[i].X = loc[i].Global
		trend[i].Y = loc[i].Fitted
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].X < trend[j].X })
	line, err := plotter.NewLine(trend)
	if err != nil {
		return nil, fmt.Errorf("trend line: %w", err)
	}
	line.LineStyle.Color = color.Black
	panel.Add(line)
	panel.Legend.Add("Empirical OLS", line)

	return panel, nil
}

// fdrPanel plots empirical vs mean-bootstrap gene counts over a z-score
// sweep, restricted to genes at or above the minimum local degree.
func fdrPanel(p Params, loc, fdr locality.Table) (*plot.Plot, error) {
	panel := plot.New()
	panel.Title.Text = "Z Score FDR"
	panel.X.Label.Text = "Z-Score"
	panel.Y.Label.Text = "Number of Genes > Z"

	var empirical, bootstrap plotter.XYs
	iters := make(map[string]bool)
	for i := range fdr {
		iters[fdr[i].Iter] = true
	}

	for z := 1.0; z <= 7.5; z += 0.5 {
		empCount := 0.0
		for i := range loc {
			if loc[i].ZScore >= z && loc[i].Local >= p.MinFDRDegree {
				empCount++
			}
		}
		empirical = append(empirical, plotter.XY{X: z, Y: empCount})

		if len(iters) > 0 {
			total := 0.0
			for i := range fdr {
				if fdr[i].ZScore >= z && fdr[i].Local >= p.MinFDRDegree {
					total++
				}
			}
			bootstrap = append(bootstrap, plotter.XY{X: z, Y: total / float64(len(iters))})
		}
	}

	empLine, empPoints, err := plotter.NewLinePoints(empirical)
	if err != nil {
		return nil, fmt.Errorf("empirical fdr curve: %w", err)
	}
	empLine.Color = color.RGBA{B: 0xcc, A: 0xff}
	panel.Add(empLine, empPoints)
	panel.Legend.Add("Empirical Zscore > x", empLine)

	if len(bootstrap) > 0 {
		bsLine, err := plotter.NewLine(bootstrap)
		if err != nil {
			return nil, fmt.Errorf("bootstrap fdr curve: %w", err)
		}
		bsLine.Color = color.RGBA{R: 0xcc, A: 0xff}
		panel.Add(bsLine)
		panel.Legend.Add("Bootstrap Z-scores", bsLine)
	}

	return panel, nil
}

func degreeXYs(t locality.Table) plotter.XYs {
	xys := make(plotter.XYs, len(t))
	for i := range t {
		xys[i].X = t[i].Global
		xys[i].Y = t[i].Local
	}
	return xys
}
