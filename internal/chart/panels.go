package chart

import (
	"fmt"
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/jgoulah/epichart/internal/config"
)

const (
	dateLayout = "2006年01月02日"
	headroom   = 1.15 // y extent relative to the tallest bar
)

// panel is a single chart inside a figure
type panel struct {
	*plot.Plot
	Backdrop color.Color // set when the panel is drawn with the cleared tint
	Tallest  float64

	dates []time.Time
	minor bool
}

// SetYMax fixes the y extent so that v fits below the summary text
func (pn *panel) SetYMax(v float64) {
	if v <= 0 {
		v = 1
	}
	pn.Y.Min = 0
	pn.Y.Max = v * headroom
	formatDateAxis(pn.Plot, pn.dates, pn.minor)
}

type panelOptions struct {
	Events   []config.Event
	Legend   bool
	Minor    bool
	Paddings []float64 // points, per series
}

func (o panelOptions) padding(defaults ...float64) []vg.Length {
	src := defaults
	if len(o.Paddings) > 0 {
		src = o.Paddings
	}
	out := make([]vg.Length, len(defaults))
	for i := range out {
		if i < len(src) {
			out[i] = vg.Points(src[i])
		}
	}
	return out
}

func days(dates []time.Time) []float64 {
	out := make([]float64, len(dates))
	for i, d := range dates {
		out[i] = dayX(d)
	}
	return out
}

func (c *Composer) newPanel(dates []time.Time, minor bool, backdrop color.Color) *panel {
	p := c.r.NewPlot()
	if backdrop != nil {
		p.Add(Backdrop{Color: backdrop})
	}
	grid := plotter.NewGrid()
	grid.Vertical.Color = gridLine
	grid.Horizontal.Color = gridLine
	p.Add(grid)
	return &panel{Plot: p, Backdrop: backdrop, dates: dates, minor: minor}
}

func (c *Composer) edge() draw.LineStyle {
	return draw.LineStyle{Color: edgeGrey, Width: vg.Points(0.5)}
}

func (c *Composer) legend(pn *panel, series []Series, thumbs []plot.Thumbnailer) {
	pn.Legend.Top = false
	pn.Legend.Left = true
	pn.Legend.XOffs = vg.Points(30)
	pn.Legend.YOffs = vg.Points(30)
	for i, s := range series {
		pn.Legend.Add(s.Label, thumbs[i])
	}
}

func (c *Composer) events(pn *panel, events []config.Event) {
	if len(events) == 0 {
		return
	}
	pn.Add(&EventMarks{
		Events: events,
		Line:   draw.LineStyle{Color: colorDeath, Width: vg.Points(1), Dashes: []vg.Length{vg.Points(4), vg.Points(4)}},
		Span:   span,
		Text:   c.r.TextStyle(17, false, colorDeath),
	})
}

func (c *Composer) summary(pn *panel, yfrac float64, txt string) {
	pn.Add(&Summary{
		X:     dayX(pn.dates[0]) + 1,
		YFrac: yfrac,
		Text:  txt,
		Style: c.r.TextStyle(20, true, color.Black),
	})
}

func (c *Composer) stacked(pn *panel, series []Series, legend bool) *StackedBars {
	bars := &StackedBars{
		X:      days(pn.dates),
		Series: series,
		Width:  1,
		Edge:   c.edge(),
		Label:  c.r.TextStyle(12, true, white),
	}
	pn.Add(bars)
	if legend {
		c.legend(pn, series, bars.Thumbnails())
	}
	pn.Tallest = float64(maxInt(bars.Tops()))
	return bars
}

func last(values []int) int {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

// positivePanel stacks asymptomatic infections on top of confirmed cases
func (c *Composer) positivePanel(title string, dates []time.Time, confirmed, asymptomatic []int, opt panelOptions) *panel {
	var bg color.Color
	if len(dates) > 0 && last(confirmed)+last(asymptomatic) == 0 {
		bg = cleared
	}
	pn := c.newPanel(dates, opt.Minor, bg)
	pads := opt.padding(8, -40)

	c.stacked(pn, []Series{
		{Label: "确诊病例", Values: confirmed, Color: confirmedColors(confirmed), Padding: pads[0]},
		{Label: "无症状感染者", Values: asymptomatic, Color: asymptomaticColors(asymptomatic), Padding: pads[1]},
	}, opt.Legend)
	c.events(pn, opt.Events)
	c.summary(pn, 0.97, positiveSummary(dates[len(dates)-1], title, last(confirmed), last(asymptomatic)))
	pn.SetYMax(pn.Tallest)
	return pn
}

// severity holds the per-day counts of every classification
type severity struct {
	Asymptomatic, Mild, Common, Severe, Critical, Death []int
}

// typePanel stacks every classification from death at the bottom to asymptomatic
func (c *Composer) typePanel(title string, dates []time.Time, s severity, opt panelOptions) *panel {
	pn := c.newPanel(dates, opt.Minor, nil)
	pads := opt.padding(-10, -10, -10, -20, -20, -15)

	c.stacked(pn, []Series{
		{Label: "死亡", Values: s.Death, Color: Solid{colorDeath}, Padding: pads[0]},
		{Label: "危重症", Values: s.Critical, Color: Solid{colorCritical}, Padding: pads[1]},
		{Label: "重症", Values: s.Severe, Color: Solid{colorSevere}, Padding: pads[2]},
		{Label: "普通型", Values: s.Common, Color: Solid{colorCommon}, Padding: pads[3]},
		{Label: "轻型", Values: s.Mild, Color: Solid{colorMild}, Padding: pads[4]},
		{Label: "无症状感染者", Values: s.Asymptomatic, Color: Solid{colorAsymptomatic}, Padding: pads[5]},
	}, true)
	c.events(pn, opt.Events)
	c.summary(pn, 0.98, typeSummary(dates[len(dates)-1], title, s))
	pn.SetYMax(pn.Tallest)
	return pn
}

// criticalPanel stacks death, critical and severe cases
func (c *Composer) criticalPanel(title string, dates []time.Time, s severity, opt panelOptions) *panel {
	pn := c.newPanel(dates, opt.Minor, nil)
	pads := opt.padding(8, 8, -30)

	c.stacked(pn, []Series{
		{Label: "死亡", Values: s.Death, Color: Solid{colorDeath}, Padding: pads[0]},
		{Label: "危重症", Values: s.Critical, Color: Solid{colorCritical}, Padding: pads[1]},
		{Label: "重症", Values: s.Severe, Color: Solid{colorSevere}, Padding: pads[2]},
	}, true)
	c.events(pn, opt.Events)
	c.summary(pn, 0.97, criticalSummary(dates[len(dates)-1], title, s))
	pn.SetYMax(pn.Tallest)
	return pn
}

// occupancy holds the hospital series
type occupancy struct {
	Positive, InHospital, Discharged, Observation []int
}

// hospitalPanel places positive cases, hospitalized and discharged side by side
func (c *Composer) hospitalPanel(title string, dates []time.Time, o occupancy, opt panelOptions) *panel {
	pn := c.newPanel(dates, opt.Minor, nil)
	pads := opt.padding(8, 8, 8)

	released := make([]int, len(o.Discharged))
	for i := range released {
		released[i] = o.Discharged[i] + o.Observation[i]
	}
	bars := &AdjacentBars{
		X:     days(dates),
		Edge:  c.edge(),
		Label: c.r.TextStyle(12, true, white),
		Series: []Series{
			{Label: "阳性病例", Values: o.Positive, Color: Solid{colorSevere}, Padding: pads[0]},
			{Label: "在院治疗", Values: o.InHospital, Color: Solid{colorCritical}, Padding: pads[1]},
			{Label: "治愈出院及解除医学观察", Values: released, Color: Solid{colorDischarged}, Padding: pads[2]},
		},
	}
	pn.Add(bars)
	c.legend(pn, bars.Series, bars.Thumbnails())
	_, _, _, ymax := bars.DataRange()
	pn.Tallest = ymax

	c.events(pn, opt.Events)
	c.summary(pn, 0.97, hospitalSummary(dates[len(dates)-1], title,
		last(o.Positive), last(o.InHospital), last(o.Discharged), last(o.Observation)))
	pn.SetYMax(pn.Tallest)
	return pn
}

func positiveSummary(date time.Time, title string, confirmed, asymptomatic int) string {
	return fmt.Sprintf("更新至 %s (%s)\n(新增 %d 确诊病例，新增 %d 无症状感染者)",
		date.Format(dateLayout), title, confirmed, asymptomatic)
}

func typeSummary(date time.Time, title string, s severity) string {
	return fmt.Sprintf("更新至 %s (%s)\n(今日无症状感染者 %d 例，轻型 %d 例，普通型 %d 例，\n重症 %d 例，危重症 %d 例，死亡 %d 例)",
		date.Format(dateLayout), title,
		last(s.Asymptomatic), last(s.Mild), last(s.Common), last(s.Severe), last(s.Critical), last(s.Death))
}

func criticalSummary(date time.Time, title string, s severity) string {
	return fmt.Sprintf("更新至 %s (%s)\n(今日 重症 %d 例，危重症 %d 例，死亡 %d 例)",
		date.Format(dateLayout), title, last(s.Severe), last(s.Critical), last(s.Death))
}

func hospitalSummary(date time.Time, title string, positive, inHospital, discharged, observation int) string {
	return fmt.Sprintf("更新至 %s (%s)\n(今日阳性病例%d例，在院治疗%d例，治愈出院%d例，解除医学观察%d例)",
		date.Format(dateLayout), title, positive, inHospital, discharged, observation)
}
