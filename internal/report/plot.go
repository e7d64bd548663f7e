// Package report renders grids and their located extrema as a PNG heat map
// (gonum/plot) or an interactive HTML scatter (go-echarts).
package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/subpixel/internal/grid"
	"github.com/banshee-data/subpixel/internal/subpixel"
)

var (
	// ErrNotForged is returned for grids without data.
	ErrNotForged = errors.New("report: grid not forged")
	// ErrUnsupportedGrid is returned for grids that are not 1-D or 2-D scalar.
	ErrUnsupportedGrid = errors.New("report: only 1-D and 2-D scalar grids can be drawn")
)

// PlotOptions controls WritePlot.
type PlotOptions struct {
	Title         string
	PaletteLevels int // heat-map colours; 64 when zero
	Width, Height vg.Length
}

func (o PlotOptions) withDefaults() PlotOptions {
	if o.PaletteLevels == 0 {
		o.PaletteLevels = 64
	}
	if o.Width == 0 {
		o.Width = 8 * vg.Inch
	}
	if o.Height == 0 {
		o.Height = 6 * vg.Inch
	}
	return o
}

var markerColor = color.RGBA{R: 0, G: 200, B: 255, A: 255}

// gridXYZ adapts a 2-D scalar grid to plotter.GridXYZ. Column c and row r
// are grid coordinates (c, r), so sample centres line up with locations.
type gridXYZ struct {
	g *grid.Grid[float64]
}

func (h gridXYZ) Dims() (c, r int)   { return h.g.Size(0), h.g.Size(1) }
func (h gridXYZ) Z(c, r int) float64 { return h.g.At(c, r) }
func (h gridXYZ) X(c int) float64    { return float64(c) }
func (h gridXYZ) Y(r int) float64    { return float64(r) }

// CheckDrawable reports whether WritePlot and WriteHTML can render g.
func CheckDrawable(g *grid.Grid[float64]) error {
	if !g.IsForged() {
		return ErrNotForged
	}
	if g.TensorElements() != 1 || g.Dimensionality() > 2 {
		return fmt.Errorf("%w: %d-D with %d elements", ErrUnsupportedGrid, g.Dimensionality(), g.TensorElements())
	}
	return nil
}

// WritePlot draws g with locs overlaid and writes a PNG to w. 2-D grids
// are drawn as a heat map with a cross at each location; 1-D grids as a
// line with a marker at each (coordinate, value).
func WritePlot(w io.Writer, g *grid.Grid[float64], locs []subpixel.Location, o PlotOptions) error {
	if err := CheckDrawable(g); err != nil {
		return err
	}
	o = o.withDefaults()

	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = "x"

	marks := make(plotter.XYs, 0, len(locs))
	if g.Dimensionality() == 1 {
		p.Y.Label.Text = "value"
		line := make(plotter.XYs, g.Size(0))
		for i := range line {
			line[i] = plotter.XY{X: float64(i), Y: g.At(i)}
		}
		l, err := plotter.NewLine(line)
		if err != nil {
			return fmt.Errorf("failed to create line: %w", err)
		}
		l.Width = vg.Points(1)
		p.Add(l)
		for _, loc := range locs {
			marks = append(marks, plotter.XY{X: loc.Coordinates[0], Y: loc.Value})
		}
	} else {
		p.Y.Label.Text = "y"
		hm := plotter.NewHeatMap(gridXYZ{g}, palette.Heat(o.PaletteLevels, 1))
		hm.Min, hm.Max = floats.Min(g.Data()), floats.Max(g.Data())
		p.Add(hm)
		for _, loc := range locs {
			marks = append(marks, plotter.XY{X: loc.Coordinates[0], Y: loc.Coordinates[1]})
		}
	}

	if len(marks) > 0 {
		s, err := plotter.NewScatter(marks)
		if err != nil {
			return fmt.Errorf("failed to create extrema overlay: %w", err)
		}
		s.GlyphStyle.Shape = draw.CrossGlyph{}
		s.GlyphStyle.Color = markerColor
		s.GlyphStyle.Radius = vg.Points(4)
		p.Add(s)
		p.Legend.Add("extrema", s)
	}

	wt, err := p.WriterTo(o.Width, o.Height, "png")
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}
