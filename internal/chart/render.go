package chart

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth  = "100%"
	chartHeight = "320px"
)

// donutRadius is the inner/outer radius of pie charts.
var donutRadius = []string{"40%", "70%"}

type renderable interface {
	Render(w io.Writer) error
}

// Render draws the plan and returns an HTML fragment ready to embed in a page.
func Render(p Plan) (template.HTML, error) {
	var c renderable
	switch p.Kind {
	case KindLine:
		c = newLine(p, false)
	case KindArea:
		c = newLine(p, true)
	case KindPie:
		c = newPie(p)
	case KindComposed:
		c = newComposed(p)
	case KindRadar:
		c = newRadar(p)
	case KindRadial:
		c = newRadial(p)
	default:
		c = newBar(p)
	}

	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render %s chart: %w", p.Kind, err)
	}
	return template.HTML(buf.String()), nil
}

// RenderSpec resolves and renders spec. An empty result means there was nothing to draw.
func RenderSpec(spec Spec) (template.HTML, error) {
	p, ok := Resolve(spec)
	if !ok {
		return "", nil
	}
	return Render(p)
}

func baseOpts(p Plan) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: p.Title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	}
}

func axisOpts(p Plan) []charts.GlobalOpts {
	return append(baseOpts(p),
		charts.WithXAxisOpts(opts.XAxis{
			Name: p.XLabel,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: p.YLabel,
		}),
	)
}

func barData(values []float64) []opts.BarData {
	items := make([]opts.BarData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.BarData{Value: v})
	}
	return items
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.LineData{Value: v})
	}
	return items
}

func newBar(p Plan) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(axisOpts(p)...)
	bar.SetXAxis(p.Categories).
		AddSeries(p.ValueKey, barData(p.Values))
	return bar
}

func newLine(p Plan, area bool) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(axisOpts(p)...)

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(true),
			ShowSymbol: opts.Bool(true),
		}),
	}
	if area {
		seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{}))
	}

	line.SetXAxis(p.Categories).
		AddSeries(p.ValueKey, lineData(p.Values), seriesOpts...)
	return line
}

func newPie(p Plan) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(append(baseOpts(p),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	)...)

	items := make([]opts.PieData, 0, len(p.Values))
	for i, v := range p.Values {
		items = append(items, opts.PieData{Name: p.Categories[i], Value: v})
	}
	pie.AddSeries(p.ValueKey, items,
		charts.WithPieChartOpts(opts.PieChart{
			Radius: donutRadius,
		}),
	)
	return pie
}

func newComposed(p Plan) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(axisOpts(p),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	)...)
	bar.SetXAxis(p.Categories).
		AddSeries(p.ValueKey, barData(p.Values))

	line := charts.NewLine()
	line.SetXAxis(p.Categories).
		AddSeries(p.SecondaryKey, lineData(p.Secondary))

	bar.Overlap(line)
	return bar
}

func newRadar(p Plan) *charts.Radar {
	indicators := make([]*opts.Indicator, 0, len(p.Categories))
	for _, c := range p.Categories {
		indicators = append(indicators, &opts.Indicator{Name: c})
	}

	radar := charts.NewRadar()
	radar.SetGlobalOptions(append(baseOpts(p),
		charts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator: indicators,
		}),
	)...)
	radar.AddSeries(p.ValueKey, []opts.RadarData{
		{Name: p.ValueKey, Value: p.Values},
	})
	return radar
}

// newRadial draws one progress ring per record.
func newRadial(p Plan) *charts.Gauge {
	gauge := charts.NewGauge()
	gauge.SetGlobalOptions(baseOpts(p)...)

	items := make([]opts.GaugeData, 0, len(p.Values))
	for i, v := range p.Values {
		items = append(items, opts.GaugeData{Name: p.Categories[i], Value: v})
	}
	gauge.AddSeries(p.ValueKey, items)
	return gauge
}
