package chart

import (
	"image/color"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/jgoulah/epichart/internal/config"
)

const secondsPerDay = 24 * 60 * 60

// dayX converts a date to the x coordinate used by every chart
func dayX(t time.Time) float64 {
	return float64(t.Unix()) / secondsPerDay
}

func xDay(x float64) time.Time {
	return time.Unix(int64(math.Round(x))*secondsPerDay, 0).UTC()
}

func rect(x0, x1, y0, y1 vg.Length) []vg.Point {
	return []vg.Point{{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}}
}

// EventMarks annotates policy events. Point events get a vertical line half a day before
// their date and a rotated title; spans are shaded with a horizontal title.
type EventMarks struct {
	Events []config.Event
	Line   draw.LineStyle
	Span   color.Color
	Text   text.Style
}

func (e *EventMarks) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	top := trY(p.Y.Max * 0.99)

	for _, ev := range e.Events {
		from := dayX(ev.From.Time)

		if ev.IsSpan() {
			x0, x1 := trX(from-0.5), trX(dayX(ev.To.Time)-0.5)
			c.FillPolygon(e.Span, c.ClipPolygonXY(rect(x0, x1, c.Min.Y, c.Max.Y)))

			pt := vg.Point{X: trX(from + 4), Y: top}
			if c.Contains(pt) {
				sty := e.Text
				sty.XAlign, sty.YAlign = text.XRight, text.YTop
				c.FillText(sty, pt, ev.Title)
			}
			continue
		}

		x := trX(from - 0.5)
		if x < c.Min.X || x > c.Max.X {
			continue
		}
		c.StrokeLine2(e.Line, x, c.Min.Y, x, top)

		sty := e.Text
		sty.Rotation = math.Pi / 2
		sty.XAlign, sty.YAlign = text.XRight, text.YBottom
		c.FillText(sty, vg.Point{X: x - vg.Points(2), Y: top}, ev.Title)
	}
}

// Summary is a text block anchored at its top-left corner
type Summary struct {
	X     float64 // days
	YFrac float64 // fraction of the y extent
	Text  string
	Style text.Style
}

func (s *Summary) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	sty := s.Style
	sty.XAlign, sty.YAlign = text.XLeft, text.YTop
	c.FillText(sty, vg.Point{X: trX(s.X), Y: trY(p.Y.Max * s.YFrac)}, s.Text)
}

// Backdrop fills the whole data area
type Backdrop struct {
	Color color.Color
}

func (b Backdrop) Plot(c draw.Canvas, _ *plot.Plot) {
	c.FillPolygon(b.Color, rect(c.Min.X, c.Max.X, c.Min.Y, c.Max.Y))
}

// dayTicks places a tick on every day. In minor mode every tick is labelled, otherwise
// only every seventh day counted from the first.
type dayTicks struct {
	minor bool
}

func (t dayTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	first := math.Ceil(min)
	for d := first; d <= max; d++ {
		tick := plot.Tick{Value: d}
		if t.minor || int(d-first)%7 == 0 {
			tick.Label = xDay(d).Format("01月02日")
		}
		ticks = append(ticks, tick)
	}
	return ticks
}

// formatDateAxis fixes the x range to the dates and sets up rotated day labels
func formatDateAxis(p *plot.Plot, dates []time.Time, minor bool) {
	if len(dates) == 0 {
		return
	}
	p.X.Min = dayX(dates[0]) - 0.5
	p.X.Max = dayX(dates[len(dates)-1]) + 0.8
	p.X.Tick.Marker = dayTicks{minor: minor}
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
}
