package plots

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/paveg/retail-eda/internal/errors"
	"github.com/paveg/retail-eda/internal/report"
	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	barColor     = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	lineColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	scatterColor = color.NRGBA{R: 31, G: 119, B: 180, A: 153}
)

// SubCategoryBarChart draws ranked sales as horizontal bars, the largest on top.
func SubCategoryBarChart(path string, ranked []report.Ranked) error {
	if len(ranked) == 0 {
		return errors.NewInvalidInputError("SubCategoryBarChart", "no sub-categories to plot")
	}

	values := make(plotter.Values, len(ranked))
	labels := make([]string, len(ranked))
	for i, r := range ranked {
		// NominalY puts index 0 at the bottom
		j := len(ranked) - 1 - i
		values[j] = r.Value
		labels[j] = r.Key
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top %d Sub-Categories by Sales", len(ranked))
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Sales"

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return errors.NewInternalError("SubCategoryBarChart", err)
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars)
	p.NominalY(labels...)
	p.X.Min = 0

	return save(p, 10*vg.Inch, 6*vg.Inch, path, "SubCategoryBarChart")
}

// MonthlyTrendChart draws sales per period as a line with point markers.
// Periods are plotted in the given order.
func MonthlyTrendChart(path string, monthly []report.Ranked) error {
	if len(monthly) == 0 {
		return errors.NewInvalidInputError("MonthlyTrendChart", "no months to plot")
	}

	points := make(plotter.XYs, len(monthly))
	labels := make([]string, len(monthly))
	for i, m := range monthly {
		points[i] = plotter.XY{X: float64(i), Y: m.Value}
		labels[i] = m.Key
	}

	p := plot.New()
	p.Title.Text = "Monthly Sales Trend"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "YearMonth"
	p.Y.Label.Text = "Sales"

	line, markers, err := plotter.NewLinePoints(points)
	if err != nil {
		return errors.NewInternalError("MonthlyTrendChart", err)
	}
	line.Color = lineColor
	line.Width = vg.Points(1.5)
	markers.Shape = draw.CircleGlyph{}
	markers.Color = lineColor
	markers.Radius = vg.Points(2.5)

	p.Add(plotter.NewGrid(), line, markers)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return save(p, 12*vg.Inch, 5*vg.Inch, path, "MonthlyTrendChart")
}

// SalesProfitScatter draws one semi-transparent point per (sales, profit) pair.
func SalesProfitScatter(path string, sales, profit []float64) error {
	if len(sales) == 0 || len(sales) != len(profit) {
		return errors.NewInvalidInputError("SalesProfitScatter",
			fmt.Sprintf("need matching non-empty inputs, got %d sales and %d profits", len(sales), len(profit)))
	}

	points := make(plotter.XYs, len(sales))
	for i := range sales {
		points[i] = plotter.XY{X: sales[i], Y: profit[i]}
	}

	p := plot.New()
	p.Title.Text = "Sales vs Profit (sample)"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Sales"
	p.Y.Label.Text = "Profit"

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return errors.NewInternalError("SalesProfitScatter", err)
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Color = scatterColor
	scatter.GlyphStyle.Radius = vg.Points(3)

	p.Add(plotter.NewGrid(), scatter)

	return save(p, 8*vg.Inch, 6*vg.Inch, path, "SalesProfitScatter")
}

// RegionPieChart draws each region's share of sales with a percentage label.
// Regions with no positive sales are left out.
func RegionPieChart(path string, regions []report.Ranked) (err error) {
	var total float64
	for _, r := range regions {
		if r.Value > 0 {
			total += r.Value
		}
	}
	if total == 0 {
		return errors.NewInvalidInputError("RegionPieChart", "no positive sales to plot")
	}

	values := make([]chart.Value, 0, len(regions))
	for _, r := range regions {
		if r.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: r.Value,
			Label: fmt.Sprintf("%s (%.1f%%)", r.Key, r.Value/total*100),
		})
	}

	pie := chart.PieChart{
		Title:  "Sales by Region",
		Width:  600,
		Height: 600,
		Values: values,
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.NewIOError("RegionPieChart", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = errors.NewIOError("RegionPieChart", path, closeErr)
		}
	}()

	if err := pie.Render(chart.PNG, f); err != nil {
		return errors.NewInternalError("RegionPieChart", err)
	}
	return nil
}

func save(p *plot.Plot, width, height vg.Length, path, op string) error {
	if err := p.Save(width, height, path); err != nil {
		return errors.NewIOError(op, path, err)
	}
	return nil
}
