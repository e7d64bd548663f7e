package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/subpixel/internal/grid"
	"github.com/banshee-data/subpixel/internal/subpixel"
)

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// WriteHTML renders g and locs as an interactive scatter page. 2-D samples
// are coloured by value; 1-D grids plot value against x.
func WriteHTML(w io.Writer, g *grid.Grid[float64], locs []subpixel.Location, title string) error {
	if err := CheckDrawable(g); err != nil {
		return err
	}

	samples := make([]opts.ScatterData, 0, g.NumPoints())
	extrema := make([]opts.ScatterData, 0, len(locs))
	oneD := g.Dimensionality() == 1
	if oneD {
		for x := 0; x < g.Size(0); x++ {
			samples = append(samples, opts.ScatterData{Value: []interface{}{x, g.At(x)}})
		}
		for _, loc := range locs {
			extrema = append(extrema, opts.ScatterData{Value: []interface{}{loc.Coordinates[0], loc.Value}})
		}
	} else {
		for y := 0; y < g.Size(1); y++ {
			for x := 0; x < g.Size(0); x++ {
				samples = append(samples, opts.ScatterData{Value: []interface{}{x, y, g.At(x, y)}})
			}
		}
		for _, loc := range locs {
			extrema = append(extrema, opts.ScatterData{
				Value: []interface{}{loc.Coordinates[0], loc.Coordinates[1], loc.Value},
			})
		}
	}

	scatter := charts.NewScatter()
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("sizes=%v extrema=%d", g.Sizes(), len(locs))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", NameLocation: "middle", NameGap: 25}),
	}
	if oneD {
		global = append(global, charts.WithYAxisOpts(opts.YAxis{Name: "value", NameLocation: "middle", NameGap: 30}))
	} else {
		global = append(global,
			charts.WithYAxisOpts(opts.YAxis{Name: "y", NameLocation: "middle", NameGap: 30}),
			charts.WithVisualMapOpts(opts.VisualMap{
				Show:       opts.Bool(true),
				Calculable: opts.Bool(true),
				Min:        float32(floats.Min(g.Data())),
				Max:        float32(floats.Max(g.Data())),
				Dimension:  "2",
				InRange:    &opts.VisualMapInRange{Color: viridis},
			}),
		)
	}
	scatter.SetGlobalOptions(global...)
	scatter.AddSeries("samples", samples, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	scatter.AddSeries("extrema", extrema, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#00c8ff"}))

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
