package chart

import (
	"image/color"
	"math"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot/palette/moreland"
)

// Colorer picks the color of the bar at index i
type Colorer interface {
	ColorAt(i int) color.Color
}

// Solid colors every bar the same
type Solid struct{ color.Color }

func (s Solid) ColorAt(int) color.Color { return s.Color }

// Ramp colors each bar individually
type Ramp []color.Color

func (r Ramp) ColorAt(i int) color.Color {
	if i < 0 || i >= len(r) || r[i] == nil {
		return color.Transparent
	}
	return r[i]
}

var (
	white    = color.White
	edgeGrey = color.Gray{Y: 0x80}
	cleared  = color.NRGBA{R: colornames.Lavender.R, G: colornames.Lavender.G, B: colornames.Lavender.B, A: 0x80}
	span     = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x1a}
	gridLine = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x4d}

	colorDeath        = colornames.Grey
	colorCritical     = colornames.Brown
	colorSevere       = colornames.Darkorange
	colorCommon       = colornames.Orangered
	colorMild         = colornames.Orange
	colorAsymptomatic = colornames.Gold
	colorDischarged   = colornames.Darkgreen

	// luminance ramps run dark to light
	redsRamp   = []color.Color{color.NRGBA{R: 0x67, G: 0x00, B: 0x0d, A: 0xff}, color.NRGBA{R: 0xfc, G: 0xbb, B: 0xa1, A: 0xff}}
	wistiaRamp = []color.Color{color.NRGBA{R: 0xfc, G: 0x7f, B: 0x00, A: 0xff}, color.NRGBA{R: 0xe4, G: 0xff, B: 0x7a, A: 0xff}}
)

// LogNorm maps positive values onto [0, 1] on a log scale. Non-positive values map to NaN.
func LogNorm(values []int) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v > 0 {
			lo = math.Min(lo, math.Log(float64(v)))
			hi = math.Max(hi, math.Log(float64(v)))
		}
	}
	out := make([]float64, len(values))
	for i, v := range values {
		switch {
		case v <= 0:
			out[i] = math.NaN()
		case hi == lo:
			out[i] = 0
		default:
			out[i] = (math.Log(float64(v)) - lo) / (hi - lo)
		}
	}
	return out
}

// LinearNorm maps values onto [0, 1] between their minimum and maximum
func LinearNorm(values []int) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, float64(v))
		hi = math.Max(hi, float64(v))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if hi > lo {
			out[i] = (float64(v) - lo) / (hi - lo)
		}
	}
	return out
}

// shade colors values by their normalized magnitude along a dark to light ramp.
// Larger values get darker colors.
func shade(norm []float64, controls []color.Color) Colorer {
	cm, err := moreland.NewLuminance(controls)
	if err != nil {
		return Solid{controls[0]}
	}
	cm.SetMin(0)
	cm.SetMax(1)

	out := make(Ramp, len(norm))
	for i, x := range norm {
		if math.IsNaN(x) {
			continue
		}
		if out[i], err = cm.At(1 - x); err != nil {
			out[i] = controls[0]
		}
	}
	return out
}

func confirmedColors(values []int) Colorer {
	return shade(LogNorm(values), redsRamp)
}

func asymptomaticColors(values []int) Colorer {
	return shade(LinearNorm(values), wistiaRamp)
}
