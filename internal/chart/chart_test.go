package chart

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/epichart/internal/config"
	"github.com/jgoulah/epichart/internal/dataset"
	"github.com/jgoulah/epichart/pkg/models"
)

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	log, _ := test.NewNullLogger()
	r := NewRendering(config.FontConfig{DPI: 10}, log)
	return NewComposer(r, t.TempDir(), log)
}

// series builds consecutive daily rows starting 2022-04-01, one per element of fill
func series(n int, fill func(i int, d *models.Daily)) []models.Daily {
	start := config.MustDate("2022-04-01").Time
	rows := make([]models.Daily, n)
	for i := range rows {
		rows[i].Date = start.AddDate(0, 0, i)
		fill(i, &rows[i])
	}
	return rows
}

func TestStackedBases(t *testing.T) {
	bars := &StackedBars{
		X: []float64{0, 1},
		Series: []Series{
			{Values: []int{1, 2}},
			{Values: []int{3, 4}},
			{Values: []int{5, 0}},
		},
		Width: 1,
	}

	assert.Equal(t, []int{0, 0}, bars.Bases(0))
	assert.Equal(t, []int{1, 2}, bars.Bases(1))
	assert.Equal(t, []int{4, 6}, bars.Bases(2))
	assert.Equal(t, []int{9, 6}, bars.Tops())

	xmin, xmax, ymin, ymax := bars.DataRange()
	assert.Equal(t, -0.5, xmin)
	assert.Equal(t, 1.5, xmax)
	assert.Equal(t, 0.0, ymin)
	assert.Equal(t, 9.0, ymax)
}

func TestAdjacentOffsets(t *testing.T) {
	bars := &AdjacentBars{
		X: []float64{10},
		Series: []Series{
			{Values: []int{1}}, {Values: []int{7}}, {Values: []int{2}},
		},
	}

	assert.InDelta(t, 0.3, bars.BarWidth(), 1e-9)
	for i, want := range []float64{0, 0.3, 0.6} {
		assert.InDelta(t, want, bars.Offset(i), 1e-9)
	}

	_, xmax, _, ymax := bars.DataRange()
	assert.InDelta(t, 10.75, xmax, 1e-9)
	assert.Equal(t, 7.0, ymax)
}

func TestDayTicks(t *testing.T) {
	first := dayX(config.MustDate("2022-04-01").Time)

	ticks := dayTicks{}.Ticks(first-0.5, first+9.8)
	require.Len(t, ticks, 10)
	for i, tick := range ticks {
		if i%7 == 0 {
			assert.NotEmpty(t, tick.Label, "tick %d", i)
		} else {
			assert.Empty(t, tick.Label, "tick %d", i)
		}
	}
	assert.Equal(t, "04月01日", ticks[0].Label)
	assert.Equal(t, "04月08日", ticks[7].Label)

	for _, tick := range (dayTicks{minor: true}).Ticks(first-0.5, first+2.8) {
		assert.NotEmpty(t, tick.Label)
	}
}

func TestNorms(t *testing.T) {
	norm := LogNorm([]int{0, 1, 10, 100})
	assert.True(t, math.IsNaN(norm[0]))
	assert.InDelta(t, 0, norm[1], 1e-9)
	assert.InDelta(t, 0.5, norm[2], 1e-9)
	assert.InDelta(t, 1, norm[3], 1e-9)

	assert.Equal(t, []float64{0, 0.5, 1}, LinearNorm([]int{2, 4, 6}))
	assert.Equal(t, []float64{0, 0}, LinearNorm([]int{3, 3}))

	ramp, ok := confirmedColors([]int{0, 5, 50}).(Ramp)
	require.True(t, ok)
	assert.Nil(t, ramp[0])
	assert.NotNil(t, ramp[2])
}

func TestSummaries(t *testing.T) {
	d := config.MustDate("2022-04-30").Time

	assert.Equal(t, "更新至 2022年04月30日 (上海市全市)\n(新增 1249 确诊病例，新增 8932 无症状感染者)",
		positiveSummary(d, "上海市全市", 1249, 8932))
	assert.Equal(t, "更新至 2022年04月30日 (疫情重症分析)\n(今日 重症 3 例，危重症 2 例，死亡 1 例)",
		criticalSummary(d, "疫情重症分析", severity{
			Severe: []int{9, 3}, Critical: []int{2}, Death: []int{0, 1},
		}))
	assert.Equal(t, "更新至 2022年04月30日 (住院病例分析)\n(今日阳性病例5例，在院治疗4例，治愈出院3例，解除医学观察2例)",
		hospitalSummary(d, "住院病例分析", 5, 4, 3, 2))
	assert.Contains(t, typeSummary(d, "疫情分型分析", severity{Asymptomatic: []int{7}, Mild: []int{6}}),
		"(今日无症状感染者 7 例，轻型 6 例，普通型 0 例，\n重症 0 例")
}

func TestClearedBackdrop(t *testing.T) {
	c := newTestComposer(t)
	dates := dataset.Dates(series(3, func(int, *models.Daily) {}))

	pn := c.positivePanel("上海市全市", dates, []int{5, 3, 0}, []int{1, 0, 0}, panelOptions{})
	assert.Equal(t, cleared, pn.Backdrop)

	pn = c.positivePanel("上海市全市", dates, []int{5, 3, 0}, []int{1, 0, 2}, panelOptions{})
	assert.Nil(t, pn.Backdrop)
	assert.Equal(t, 6.0, pn.Tallest)
	assert.InDelta(t, 6*headroom, pn.Y.Max, 1e-9)
}

func TestPlan(t *testing.T) {
	districts := []string{"浦东新区", "徐汇区"}

	tests := []struct {
		name      string
		districts []string
		fill      func(i int, d *models.Daily)
		want      []Kind
	}{
		{
			name: "nothing to draw",
			fill: func(i int, d *models.Daily) { d.Confirmed = []int{5, 3, 0}[i]; d.Asymptomatic = []int{1, 0, 0}[i] },
		},
		{
			name: "overall needs severe cases",
			fill: func(i int, d *models.Daily) { d.Confirmed, d.ConfirmedFromRisk = 4, 1 },
		},
		{
			name: "overall",
			fill: func(i int, d *models.Daily) { d.Confirmed, d.ConfirmedFromRisk, d.Severe = 4, 1, 1 },
			want: []Kind{KindOverall},
		},
		{
			name: "type",
			fill: func(i int, d *models.Daily) { d.Confirmed, d.Mild = 2, 1 },
			want: []Kind{KindType},
		},
		{
			name:      "districts without risk group cases",
			districts: districts,
			fill: func(i int, d *models.Daily) {
				d.Districts = map[string]models.DistrictCounts{"浦东新区": {Confirmed: 3}}
			},
			want: []Kind{KindDistrictPositive},
		},
		{
			name:      "one district on one day is enough",
			districts: districts,
			fill: func(i int, d *models.Daily) {
				if i == 1 {
					d.Districts = map[string]models.DistrictCounts{"徐汇区": {ConfirmedFromRisk: 1}}
				}
			},
			want: []Kind{KindDistrictPositive, KindDistrictCommunity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city := config.City{ID: "shanghai", Districts: tt.districts}
			assert.Equal(t, tt.want, Plan(city, series(3, tt.fill)))
		})
	}
}

func TestDrawCity(t *testing.T) {
	c := newTestComposer(t)
	city := config.City{
		Name:      "上海市",
		ID:        "shanghai",
		Districts: []string{"浦东新区", "徐汇区", "黄浦区", "静安区", "长宁区"},
		Events: []config.Event{
			{From: config.MustDate("2022-04-02"), Title: "全域静态管理"},
			{From: config.MustDate("2022-04-03"), To: config.MustDate("2022-04-05"), Title: "封控"},
		},
	}
	rows := series(5, func(i int, d *models.Daily) {
		d.Confirmed, d.Asymptomatic = i+1, 2*i
		d.ConfirmedFromRisk, d.AsymptomaticFromRisk = i, i
		d.Mild, d.Common, d.Severe, d.Critical, d.Death = i, 1, 1, i%2, 0
		d.InHospital, d.DischargedFromHospital, d.DischargedFromObservation = 10+i, i, 2
		d.Districts = map[string]models.DistrictCounts{
			"浦东新区": {Confirmed: i, Asymptomatic: 1, ConfirmedFromRisk: 1},
			"徐汇区":  {Confirmed: 1},
		}
	})

	artifacts, err := c.DrawCity(city, rows)
	require.NoError(t, err)
	require.Len(t, artifacts, len(Kinds))

	for i, a := range artifacts {
		assert.Equal(t, Kinds[i], a.Kind)
		assert.Equal(t, filepath.Join(c.OutputDir(city), a.Kind.Filename()), a.Path)

		info, err := os.Stat(a.Path)
		require.NoError(t, err)
		assert.Equal(t, a.Bytes, info.Size())
		assert.Positive(t, info.Size())
	}

	// rerun overwrites in place
	again, err := c.DrawCity(city, rows)
	require.NoError(t, err)
	assert.Len(t, again, len(Kinds))
	entries, err := os.ReadDir(c.OutputDir(city))
	require.NoError(t, err)
	assert.Len(t, entries, len(Kinds))
}

func TestDrawCityNothingToDraw(t *testing.T) {
	c := newTestComposer(t)
	city := config.City{Name: "北京市", ID: "beijing"}
	rows := series(3, func(i int, d *models.Daily) {
		d.Confirmed = []int{5, 3, 0}[i]
		d.Asymptomatic = []int{1, 0, 0}[i]
	})

	artifacts, err := c.DrawCity(city, rows)
	require.NoError(t, err)
	assert.Empty(t, artifacts)

	entries, err := os.ReadDir(c.OutputDir(city))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDrawCityEmpty(t *testing.T) {
	c := newTestComposer(t)
	_, err := c.DrawCity(config.City{ID: "beijing"}, nil)
	assert.True(t, errors.Is(err, dataset.ErrEmptyDataset))
}

func TestDayRoundTrip(t *testing.T) {
	d := time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, d, xDay(dayX(d)))
}
