// Package chart renders forecast series as PNG images.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/couchcryptid/opencovid-fr/internal/forecast"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Default image size.
const (
	Width  = 10 * vg.Inch
	Height = 5 * vg.Inch
)

var (
	observedColor  = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	predictedColor = color.RGBA{R: 220, G: 20, B: 60, A: 255}
)

// ErrEmptySeries is returned when a series has no points to draw.
var ErrEmptySeries = errors.New("chart: empty series")

// RenderForecast draws the observed history as a line and the predicted days
// as a dashed line with markers, then writes a PNG to w.
func RenderForecast(w io.Writer, s forecast.Series, title string) error {
	observed := xys(s.Observed())
	predicted := xys(s.Predicted())
	if len(observed) == 0 && len(predicted) == 0 {
		return ErrEmptySeries
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Daily positive cases"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	if len(observed) > 0 {
		line, err := plotter.NewLine(observed)
		if err != nil {
			return fmt.Errorf("observed line: %w", err)
		}
		line.Color = observedColor
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add("observed", line)
	}

	if len(predicted) > 0 {
		line, points, err := plotter.NewLinePoints(predicted)
		if err != nil {
			return fmt.Errorf("predicted line: %w", err)
		}
		line.Color = predictedColor
		line.Width = vg.Points(2)
		line.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		points.Shape = draw.CircleGlyph{}
		points.Color = predictedColor
		points.Radius = vg.Points(2)
		p.Add(line, points)
		p.Legend.Add("predicted", line, points)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return fmt.Errorf("png canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func xys(points []forecast.Point) plotter.XYs {
	out := make(plotter.XYs, len(points))
	for i, pt := range points {
		out[i].X = float64(pt.Day.Unix())
		out[i].Y = pt.Value
	}
	return out
}
