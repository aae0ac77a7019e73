package render

import (
	"html"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"surveydash/internal/aggregate"
)

const (
	chartHeight = 400
	barWidth    = 48
	barSpacing  = 32
)

var (
	colorSought   = drawing.ColorFromHex("4a6fa5")
	colorNoTreat  = drawing.ColorFromHex("ff7e5f")
	colorOther    = drawing.ColorFromHex("c8c8c8")
	colorLabel    = drawing.ColorFromHex("333333")
	treatmentKeys = []legendEntry{
		{"Sought Treatment", colorSought},
		{"No Treatment", colorNoTreat},
	}
)

func fill(c drawing.Color) chart.Style {
	return chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1}
}

// label prepares user text for the renderer. The SVG renderer writes text
// nodes verbatim, so markup characters must be escaped there.
func label(s string, f Format) string {
	if f == SVG {
		return html.EscapeString(s)
	}
	return s
}

// chartWidth leaves room for n bars plus axes.
func chartWidth(n int) int {
	return max(480, n*(barWidth+barSpacing)+160)
}

// treatmentBar stacks sought, declined and the remainder so every bar sums
// to its total even when some answers are neither yes nor no. Remainders
// under half a unit are rounding noise from percentages.
func treatmentBar(name string, yes, no, total float64, f Format) chart.StackedBar {
	rest := math.Max(total-yes-no, 0)
	vals := []chart.Value{
		{Label: "Sought", Value: yes, Style: fill(colorSought)},
		{Label: "No", Value: no, Style: fill(colorNoTreat)},
	}
	if rest >= 0.5 {
		vals = append(vals, chart.Value{Label: "Other", Value: rest, Style: fill(colorOther)})
	}
	return chart.StackedBar{Name: label(name, f), Width: barWidth, Values: vals}
}

func stacked(w io.Writer, title string, bars []chart.StackedBar, f Format) error {
	c := chart.StackedBarChart{
		Title:      title,
		Width:      chartWidth(len(bars)),
		Height:     chartHeight,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 64, Left: 16, Right: 16, Bottom: 16}},
		Bars:       bars,
		Elements:   []chart.Renderable{legend(treatmentKeys)},
	}
	return c.Render(f.provider(), w)
}

// AgeChart draws the treatment split per age group as stacked bars.
func AgeChart(w io.Writer, buckets []aggregate.AgeBucket, f Format) error {
	if len(buckets) == 0 {
		return ErrNoData
	}
	bars := make([]chart.StackedBar, 0, len(buckets))
	for _, b := range buckets {
		bars = append(bars, treatmentBar(b.Label, b.TreatmentYes, b.TreatmentNo, 100, f))
	}
	return stacked(w, "Treatment by Age Group", bars, f)
}

// GenderChart draws treatment counts per gender category.
func GenderChart(w io.Writer, counts []aggregate.GenderCount, f Format) error {
	if len(counts) == 0 {
		return ErrNoData
	}
	bars := make([]chart.StackedBar, 0, len(counts))
	for _, g := range counts {
		bars = append(bars, treatmentBar(string(g.Gender), float64(g.TreatmentYes), float64(g.TreatmentNo), float64(g.Total), f))
	}
	return stacked(w, "Treatment by Gender", bars, f)
}

// RemoteChart draws the remote versus office treatment split. Categories
// with no yes/no answers are omitted.
func RemoteChart(w io.Writer, splits []aggregate.RemoteSplit, f Format) error {
	bars := make([]chart.StackedBar, 0, len(splits))
	for _, s := range splits {
		if s.Total == 0 {
			continue
		}
		bars = append(bars, treatmentBar(s.Category, s.YesPercent, s.NoPercent, 100, f))
	}
	if len(bars) == 0 {
		return ErrNoData
	}
	return stacked(w, "Treatment: Remote vs Office", bars, f)
}

// CountryChart draws respondent counts for the top countries.
func CountryChart(w io.Writer, countries []aggregate.CountryCount, f Format) error {
	if len(countries) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, 0, len(countries))
	top := 0
	for _, c := range countries {
		bars = append(bars, chart.Value{Label: label(c.Country, f), Value: float64(c.Count), Style: fill(colorSought)})
		top = max(top, c.Count)
	}
	c := chart.BarChart{
		Title:      "Top 10 Countries by Respondents",
		Width:      chartWidth(len(bars)),
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: math.Ceil(float64(top) * 1.1)},
			ValueFormatter: chart.IntValueFormatter,
		},
		Bars: bars,
	}
	return c.Render(f.provider(), w)
}

type legendEntry struct {
	label string
	color drawing.Color
}

// legend draws colored swatches in the padding above the canvas.
func legend(entries []legendEntry) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		r.SetFont(defaults.GetFont())
		r.SetFontSize(10)
		r.SetFontColor(colorLabel)

		x, y := box.Left, box.Top-24
		for _, e := range entries {
			r.SetFillColor(e.color)
			r.SetStrokeColor(e.color)
			r.SetStrokeWidth(1)
			r.MoveTo(x, y)
			r.LineTo(x+10, y)
			r.LineTo(x+10, y+10)
			r.LineTo(x, y+10)
			r.Close()
			r.FillStroke()

			r.Text(e.label, x+14, y+9)
			x += 24 + r.MeasureText(e.label).Width()
		}
	}
}
