package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/jgoulah/epichart/internal/config"
	"github.com/jgoulah/epichart/internal/dataset"
	"github.com/jgoulah/epichart/pkg/models"
)

// Kind identifies one of the figures drawn per city
type Kind string

const (
	KindOverall           Kind = "overall_analysis"
	KindType              Kind = "type_analysis"
	KindDistrictPositive  Kind = "district_positive"
	KindDistrictCommunity Kind = "district_community"
)

// Kinds lists every figure in drawing order
var Kinds = []Kind{KindOverall, KindType, KindDistrictPositive, KindDistrictCommunity}

// Filename is the file the figure is written to inside the city's output directory
func (k Kind) Filename() string {
	return "daily_" + string(k) + ".png"
}

// Artifact is a figure written to disk
type Artifact struct {
	Kind  Kind
	Path  string
	Bytes int64
}

// Composer draws the figures of a city
type Composer struct {
	r      *Rendering
	outDir string
	log    logrus.FieldLogger
}

// NewComposer creates a composer writing below outDir
func NewComposer(r *Rendering, outDir string, log logrus.FieldLogger) *Composer {
	return &Composer{r: r, outDir: outDir, log: log}
}

// OutputDir returns the directory a city's figures are written to
func (c *Composer) OutputDir(city config.City) string {
	return filepath.Join(c.outDir, city.ID)
}

// Plan returns the figures whose data guards pass for the given rows
func Plan(city config.City, rows []models.Daily) []Kind {
	col := func(f func(models.Daily) int) int { return dataset.Max(dataset.Column(rows, f)) }

	var kinds []Kind
	if col(func(d models.Daily) int { return d.ConfirmedFromRisk }) > 0 &&
		col(func(d models.Daily) int { return d.Severe }) > 0 &&
		col(func(d models.Daily) int { return d.Confirmed }) > 0 {
		kinds = append(kinds, KindOverall)
	}
	if col(func(d models.Daily) int { return d.Mild }) > 0 &&
		col(func(d models.Daily) int { return d.Confirmed }) > 0 {
		kinds = append(kinds, KindType)
	}
	if len(city.Districts) > 0 {
		kinds = append(kinds, KindDistrictPositive)
	}
	if len(city.Districts) > 0 && communitySpread(city.Districts, rows) {
		kinds = append(kinds, KindDistrictCommunity)
	}
	return kinds
}

// communitySpread reports whether any district found a confirmed case among its risk
// groups on any day
func communitySpread(districts []string, rows []models.Daily) bool {
	for _, name := range districts {
		for _, d := range rows {
			if d.District(name).ConfirmedFromRisk > 0 {
				return true
			}
		}
	}
	return false
}

// DrawCity writes every figure whose guard passes. Figures that are skipped produce no
// file. Existing files are overwritten.
func (c *Composer) DrawCity(city config.City, rows []models.Daily) ([]Artifact, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", city.ID, dataset.ErrEmptyDataset)
	}

	dir := c.OutputDir(city)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	planned := make(map[Kind]bool)
	for _, k := range Plan(city, rows) {
		planned[k] = true
	}

	var artifacts []Artifact
	for _, kind := range Kinds {
		log := c.log.WithFields(logrus.Fields{"city": city.ID, "figure": kind})
		if !planned[kind] {
			log.Debug("skipping figure, not enough data")
			continue
		}

		fig := c.figure(kind, city, rows)
		path := filepath.Join(dir, kind.Filename())
		n, err := c.save(path, fig)
		if err != nil {
			return artifacts, fmt.Errorf("saving %s: %w", kind, err)
		}
		log.WithField("path", path).Info("figure written")
		artifacts = append(artifacts, Artifact{Kind: kind, Path: path, Bytes: n})
	}

	return artifacts, nil
}

// figure is a grid of panels under an optional title
type figure struct {
	Title         string
	Width, Height vg.Length
	Cells         [][]*panel
}

func (c *Composer) figure(kind Kind, city config.City, rows []models.Daily) *figure {
	dates := dataset.Dates(rows)
	col := func(f func(models.Daily) int) []int { return dataset.Column(rows, f) }
	sev := severity{
		Asymptomatic: col(func(d models.Daily) int { return d.Asymptomatic }),
		Mild:         col(func(d models.Daily) int { return d.Mild }),
		Common:       col(func(d models.Daily) int { return d.Common }),
		Severe:       col(func(d models.Daily) int { return d.Severe }),
		Critical:     col(func(d models.Daily) int { return d.Critical }),
		Death:        col(func(d models.Daily) int { return d.Death }),
	}

	switch kind {
	case KindOverall:
		overall := c.positivePanel(city.Name+"全市", dates,
			col(func(d models.Daily) int { return d.Confirmed }),
			sev.Asymptomatic,
			panelOptions{Events: city.Events, Legend: true, Minor: true})
		community := c.positivePanel(city.Name+"社会面", dates,
			col(func(d models.Daily) int { return d.ConfirmedFromRisk }),
			col(func(d models.Daily) int { return d.AsymptomaticFromRisk }),
			panelOptions{Minor: true})
		hospital := c.hospitalPanel("住院病例分析", dates, occupancy{
			Positive:    col(func(d models.Daily) int { return d.Positive() }),
			InHospital:  col(func(d models.Daily) int { return d.InHospital }),
			Discharged:  col(func(d models.Daily) int { return d.DischargedFromHospital }),
			Observation: col(func(d models.Daily) int { return d.DischargedFromObservation }),
		}, panelOptions{Minor: true})
		critical := c.criticalPanel("疫情重症分析", dates, sev, panelOptions{Minor: true})

		return &figure{
			Title:  city.Name + "疫情每日新增数据变化",
			Width:  40 * vg.Inch,
			Height: 25 * vg.Inch,
			Cells:  [][]*panel{{overall, hospital}, {community, critical}},
		}

	case KindType:
		return &figure{
			Width:  15 * vg.Inch,
			Height: 10 * vg.Inch,
			Cells:  [][]*panel{{c.typePanel("疫情分型分析", dates, sev, panelOptions{Events: city.Events})}},
		}

	case KindDistrictPositive:
		return c.districtFigure(city.Name+"分区每日新增数据变化", city.Districts, func(name string) *panel {
			return c.positivePanel(name, dates,
				dataset.DistrictColumn(rows, name, func(d models.DistrictCounts) int { return d.Confirmed }),
				dataset.DistrictColumn(rows, name, func(d models.DistrictCounts) int { return d.Asymptomatic }),
				panelOptions{Paddings: []float64{-20, 0}})
		})

	default:
		return c.districtFigure(city.Name+"分区(社会面)每日新增数据变化", city.Districts, func(name string) *panel {
			return c.positivePanel(name, dates,
				dataset.DistrictColumn(rows, name, func(d models.DistrictCounts) int { return d.ConfirmedFromRisk }),
				dataset.DistrictColumn(rows, name, func(d models.DistrictCounts) int { return d.AsymptomaticFromRisk }),
				panelOptions{})
		})
	}
}

// districtFigure lays out one panel per district, four per row, on a shared y extent
func (c *Composer) districtFigure(title string, districts []string, build func(string) *panel) *figure {
	const cols = 4
	rows := int(math.Ceil(float64(len(districts)) / cols))

	panels := make([]*panel, len(districts))
	tallest := 0.0
	for i, name := range districts {
		panels[i] = build(name)
		tallest = math.Max(tallest, panels[i].Tallest)
	}

	cells := make([][]*panel, rows)
	for j := range cells {
		cells[j] = make([]*panel, cols)
		for i := range cells[j] {
			if k := j*cols + i; k < len(panels) {
				panels[k].SetYMax(tallest)
				cells[j][i] = panels[k]
			}
		}
	}

	return &figure{
		Title:  title,
		Width:  30 * vg.Inch,
		Height: vg.Length(rows)*5*vg.Inch + vg.Inch,
		Cells:  cells,
	}
}

// save renders the figure to a PNG file and returns its size
func (c *Composer) save(path string, fig *figure) (int64, error) {
	img := vgimg.NewWith(vgimg.UseWH(fig.Width, fig.Height), vgimg.UseDPI(c.r.DPI))
	dc := draw.New(img)
	dc.FillPolygon(color.White, rect(dc.Min.X, dc.Max.X, dc.Min.Y, dc.Max.Y))

	if fig.Title != "" {
		sty := c.r.TextStyle(30, true, color.Black)
		sty.XAlign = text.XCenter
		pad := vg.Points(20)
		dc.FillText(sty, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - pad}, fig.Title)
		dc = draw.Crop(dc, 0, 0, 0, -(sty.Height(fig.Title) + 2*pad))
	}

	plots := make([][]*plot.Plot, len(fig.Cells))
	for j, row := range fig.Cells {
		plots[j] = make([]*plot.Plot, len(row))
		for i, pn := range row {
			if pn == nil {
				blank := c.r.NewPlot()
				blank.X.Min, blank.X.Max = 0, 1
				blank.Y.Min, blank.Y.Max = 0, 1
				blank.HideAxes()
				plots[j][i] = blank
				continue
			}
			plots[j][i] = pn.Plot
		}
	}

	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      vg.Points(20),
		PadY:      vg.Points(20),
		PadTop:    vg.Points(10),
		PadBottom: vg.Points(10),
		PadLeft:   vg.Points(10),
		PadRight:  vg.Points(10),
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	return writePNG(path, img)
}

// writePNG replaces path atomically with the encoded image
func writePNG(path string, img *vgimg.Canvas) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := vgimg.PngCanvas{Canvas: img}.WriteTo(tmp)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("encoding png: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, err
	}
	return n, nil
}
