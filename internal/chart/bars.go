package chart

import (
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Series is one named row of bar values
type Series struct {
	Label  string
	Values []int
	Color  Colorer

	// Padding offsets the value label from the top of its segment.
	// Negative values place the label inside the segment.
	Padding vg.Length
}

// StackedBars draws one bar per date made of the series stacked in order
type StackedBars struct {
	X      []float64 // bar centers in days
	Series []Series
	Width  float64 // in days
	Edge   draw.LineStyle
	Label  text.Style
}

// Bases returns the starting height of each segment of series s
func (b *StackedBars) Bases(s int) []int {
	base := make([]int, len(b.X))
	for _, ser := range b.Series[:s] {
		for i, v := range ser.Values {
			base[i] += v
		}
	}
	return base
}

// Tops returns the height of each full bar
func (b *StackedBars) Tops() []int {
	return b.Bases(len(b.Series))
}

func (b *StackedBars) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for s, ser := range b.Series {
		base := b.Bases(s)
		for i, v := range ser.Values {
			if v == 0 {
				continue
			}
			x0, x1 := trX(b.X[i]-b.Width/2), trX(b.X[i]+b.Width/2)
			y0, y1 := trY(float64(base[i])), trY(float64(base[i]+v))
			fillBar(&c, ser.Color.ColorAt(i), b.Edge, x0, x1, y0, y1)
			labelBar(&c, b.Label, (x0+x1)/2, y1, ser.Padding, v)
		}
	}
}

func (b *StackedBars) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = xRange(b.X, b.Width/2, b.Width/2)
	return xmin, xmax, 0, float64(maxInt(b.Tops()))
}

// Thumbnails returns a legend entry per series
func (b *StackedBars) Thumbnails() []plot.Thumbnailer {
	return thumbnails(b.Series)
}

// AdjacentBars draws the series side by side within each date
type AdjacentBars struct {
	X      []float64
	Series []Series
	Edge   draw.LineStyle
	Label  text.Style
}

// BarWidth is the width of a single bar in days
func (b *AdjacentBars) BarWidth() float64 {
	return 0.9 / float64(len(b.Series))
}

// Offset is the shift of series s from the date in days
func (b *AdjacentBars) Offset(s int) float64 {
	return float64(s) * b.BarWidth()
}

func (b *AdjacentBars) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	w := b.BarWidth()
	for s, ser := range b.Series {
		off := b.Offset(s)
		for i, v := range ser.Values {
			if v == 0 {
				continue
			}
			x0, x1 := trX(b.X[i]+off-w/2), trX(b.X[i]+off+w/2)
			y0, y1 := trY(0), trY(float64(v))
			fillBar(&c, ser.Color.ColorAt(i), b.Edge, x0, x1, y0, y1)
			labelBar(&c, b.Label, (x0+x1)/2, y1, ser.Padding, v)
		}
	}
}

func (b *AdjacentBars) DataRange() (xmin, xmax, ymin, ymax float64) {
	w := b.BarWidth()
	xmin, xmax = xRange(b.X, w/2, b.Offset(len(b.Series)-1)+w/2)
	for _, ser := range b.Series {
		ymax = math.Max(ymax, float64(maxInt(ser.Values)))
	}
	return xmin, xmax, 0, ymax
}

func (b *AdjacentBars) Thumbnails() []plot.Thumbnailer {
	return thumbnails(b.Series)
}

func fillBar(c *draw.Canvas, clr color.Color, edge draw.LineStyle, x0, x1, y0, y1 vg.Length) {
	pts := []vg.Point{{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}}
	c.FillPolygon(clr, c.ClipPolygonXY(pts))
	if edge.Width > 0 {
		outline := append(pts, pts[0])
		c.StrokeLines(edge, c.ClipLinesXY(outline)...)
	}
}

// labelBar writes v rotated a quarter turn above (padding >= 0) or below the bar top
func labelBar(c *draw.Canvas, sty text.Style, x, top, padding vg.Length, v int) {
	pt := vg.Point{X: x, Y: top + padding}
	if !c.Contains(pt) {
		return
	}
	sty.Rotation = math.Pi / 2
	sty.YAlign = text.YCenter
	if padding >= 0 {
		sty.XAlign = text.XLeft
	} else {
		sty.XAlign = text.XRight
	}
	c.FillText(sty, pt, strconv.Itoa(v))
}

func xRange(xs []float64, left, right float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return lo - left, hi + right
}

func maxInt(values []int) int {
	m := 0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// swatch is a filled legend thumbnail
type swatch struct{ color.Color }

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y}, {X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y}, {X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.Color, pts)
}

// thumbnails uses the color of each series' tallest bar
func thumbnails(series []Series) []plot.Thumbnailer {
	out := make([]plot.Thumbnailer, len(series))
	for s, ser := range series {
		at, best := 0, -1
		for i, v := range ser.Values {
			if v > best {
				at, best = i, v
			}
		}
		out[s] = swatch{ser.Color.ColorAt(at)}
	}
	return out
}
