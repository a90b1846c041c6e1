package chart

import (
	"bufio"
	"bytes"
	"fmt"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/jgoulah/epichart/internal/config"
)

// cjkTypeface names the CJK face registered in the font cache
const cjkTypeface font.Typeface = "CJK"

// Rendering carries everything that affects how text and images are drawn. It is built
// once and handed to the Composer instead of living in package-level state.
type Rendering struct {
	Fonts    *font.Cache
	DPI      int
	FontFile string // CJK font in use, empty when falling back to Liberation

	typeface font.Typeface
	variant  font.Variant
	handler  text.Handler
}

// NewRendering builds a font cache holding the Liberation fonts plus the first CJK font
// that can be loaded. A missing CJK font is not fatal: Chinese text then renders with
// missing glyphs.
func NewRendering(cfg config.FontConfig, log logrus.FieldLogger) *Rendering {
	r := &Rendering{
		Fonts:    font.NewCache(liberation.Collection()),
		DPI:      cfg.GetDPI(),
		typeface: "Liberation",
		variant:  "Sans",
	}

	candidates := append([]string{}, cfg.Paths...)
	if cfg.Discover {
		candidates = append(candidates, DiscoverFonts(log)...)
	}

	for _, p := range candidates {
		face, err := loadFace(p)
		if err != nil {
			log.WithField("path", p).Debugf("skipping font: %v", err)
			continue
		}
		r.Fonts.Add(font.Collection{
			{Font: font.Font{Typeface: cjkTypeface}, Face: face},
			{Font: font.Font{Typeface: cjkTypeface, Weight: xfont.WeightBold}, Face: face},
		})
		r.typeface, r.variant = cjkTypeface, ""
		r.FontFile = p
		log.WithField("path", p).Info("using CJK font")
		break
	}
	if r.FontFile == "" {
		log.Warn("no CJK font found, Chinese text will render as missing glyphs")
	}

	r.handler = text.Plain{Fonts: r.Fonts}
	return r
}

// DiscoverFonts asks fontconfig for font files that cover Chinese
func DiscoverFonts(log logrus.FieldLogger) []string {
	out, err := exec.Command("fc-list", ":lang=zh", "-f", "%{file}\n").Output()
	if err != nil {
		log.Debugf("fc-list unavailable: %v", err)
		return nil
	}

	var files []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		p := strings.TrimSpace(sc.Text())
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		files = append(files, p)
	}
	return files
}

// loadFace parses a .ttf/.otf file or the first face of a .ttc collection
func loadFace(p string) (*opentype.Font, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(p)) {
	case ".ttc", ".otc":
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font collection: %w", err)
		}
		if coll.NumFonts() == 0 {
			return nil, fmt.Errorf("empty font collection")
		}
		return coll.Font(0)
	default:
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font: %w", err)
		}
		return f, nil
	}
}

// Font returns the font used for all chart text at the given point size
func (r *Rendering) Font(size float64, bold bool) font.Font {
	fnt := font.Font{Typeface: r.typeface, Variant: r.variant, Size: vg.Points(size)}
	if bold {
		fnt.Weight = xfont.WeightBold
	}
	return fnt
}

// TextStyle returns a left/top aligned text style
func (r *Rendering) TextStyle(size float64, bold bool, clr color.Color) text.Style {
	return text.Style{
		Color:   clr,
		Font:    r.Font(size, bold),
		XAlign:  text.XLeft,
		YAlign:  text.YTop,
		Handler: r.handler,
	}
}

// NewPlot returns a plot whose every text style uses the rendering's fonts
func (r *Rendering) NewPlot() *plot.Plot {
	p := plot.New()

	p.Title.TextStyle.Font = r.Font(20, true)
	p.Title.TextStyle.Handler = r.handler
	for _, a := range []*plot.Axis{&p.X, &p.Y} {
		a.Label.TextStyle.Font = r.Font(15, false)
		a.Label.TextStyle.Handler = r.handler
		a.Tick.Label.Font = r.Font(12, false)
		a.Tick.Label.Handler = r.handler
	}
	p.Legend.TextStyle.Font = r.Font(15, false)
	p.Legend.TextStyle.Handler = r.handler

	return p
}
