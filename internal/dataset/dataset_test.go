package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/epichart/internal/config"
	"github.com/jgoulah/epichart/internal/dataset"
	"github.com/jgoulah/epichart/pkg/models"
)

// dailyCSV renders a daily CSV whose leading columns come from rows and whose
// remaining columns are zero.
func dailyCSV(districts []string, rows ...[]string) string {
	header := dataset.DailyHeader(districts)
	var b strings.Builder
	b.WriteString(strings.Join(header, ",") + "\n")
	for _, r := range rows {
		rec := make([]string, len(header))
		for i := range rec {
			rec[i] = "0"
		}
		copy(rec, r)
		rec[len(rec)-1] = "https://example.com/" + r[0]
		b.WriteString(strings.Join(rec, ",") + "\n")
	}
	return b.String()
}

func date(s string) time.Time {
	return config.MustDate(s).Time
}

func TestLoadDaily(t *testing.T) {
	districts := []string{"浦东新区"}
	header := dataset.DailyHeader(districts)
	assert.Equal(t, "日期", header[0])
	assert.Contains(t, header, "浦东新区_确诊_来自风险人群")

	rec := make([]string, len(header))
	for i := range rec {
		rec[i] = strconv.Itoa(i)
	}
	rec[0] = "2022-04-01"
	rec[len(rec)-1] = "report-1"
	body := "\ufeff" + strings.Join(header, ",") + "\n" + strings.Join(rec, ",") + "\n"

	rows, err := dataset.LoadDaily(strings.NewReader(body), districts)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	d := rows[0]
	assert.Equal(t, date("2022-04-01"), d.Date)
	assert.Equal(t, 1, d.Confirmed)
	assert.Equal(t, 2, d.Asymptomatic)
	assert.Equal(t, 3, d.ConfirmedFromRisk)
	assert.Equal(t, 4, d.AsymptomaticFromRisk)
	assert.Equal(t, 5, d.Mild)
	assert.Equal(t, 6, d.Common)
	assert.Equal(t, 7, d.Severe)
	assert.Equal(t, 8, d.Critical)
	assert.Equal(t, 9, d.Death)
	assert.Equal(t, 10, d.InHospital)
	assert.Equal(t, 11, d.DischargedFromHospital)
	assert.Equal(t, 12, d.DischargedFromObservation)
	assert.Equal(t, models.DistrictCounts{
		Confirmed:            13,
		Asymptomatic:         14,
		ConfirmedFromRisk:    15,
		AsymptomaticFromRisk: 16,
	}, d.District("浦东新区"))
	assert.Equal(t, "report-1", d.Source)
}

func TestLoadDailySchemaErrors(t *testing.T) {
	t.Run("missing district column", func(t *testing.T) {
		body := dailyCSV(nil, []string{"2022-04-01", "1"})
		_, err := dataset.LoadDaily(strings.NewReader(body), []string{"徐汇区"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "徐汇区_确诊")
	})

	t.Run("bad integer", func(t *testing.T) {
		body := dailyCSV(nil, []string{"2022-04-01", "1.5"})
		_, err := dataset.LoadDaily(strings.NewReader(body), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("bad date", func(t *testing.T) {
		body := dailyCSV(nil, []string{"April 1", "1"})
		_, err := dataset.LoadDaily(strings.NewReader(body), nil)
		assert.Error(t, err)
	})
}

func TestLoadResidents(t *testing.T) {
	body := strings.Join([]string{
		"日期,市,区,居住地,分型,性别,年龄,经度,纬度",
		"2022-04-01,上海市,浦东新区,川沙路1号,轻型,男,35.0,121.1,31.2",
		"2022/04/01,上海市,徐汇区,漕溪路2号,,,,121.4,31.1",
	}, "\n")

	rows, err := dataset.LoadResidents(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NotNil(t, rows[0].Age)
	assert.Equal(t, 35, *rows[0].Age)
	assert.Equal(t, "轻型", rows[0].Classification)
	assert.Nil(t, rows[1].Age)
	assert.Equal(t, "", rows[1].Classification)
	assert.Equal(t, date("2022-04-01"), rows[1].Date)
}

func TestShapeFiltersAndSorts(t *testing.T) {
	city := config.City{
		ID:        "shanghai",
		DateRange: config.DateRange{From: config.MustDate("2022-04-02"), To: config.MustDate("2022-04-04")},
	}
	daily := []models.Daily{
		{Date: date("2022-04-05"), Confirmed: 5},
		{Date: date("2022-04-03"), Confirmed: 3},
		{Date: date("2022-04-01"), Confirmed: 1},
		{Date: date("2022-04-04"), Confirmed: 4},
		{Date: date("2022-04-02"), Confirmed: 2},
	}

	p, err := dataset.Shape(city, daily, nil)
	require.NoError(t, err)
	require.Len(t, p.Daily, 3)
	for i, d := range p.Daily {
		assert.True(t, city.DateRange.Contains(d.Date))
		if i > 0 {
			assert.True(t, d.Date.After(p.Daily[i-1].Date))
		}
	}
	assert.Equal(t, []int{2, 3, 4}, dataset.Column(p.Daily, func(d models.Daily) int { return d.Confirmed }))
	assert.Equal(t, 4, p.Latest().Confirmed)
}

func TestShapeEmptyWindow(t *testing.T) {
	city := config.City{
		ID:        "beijing",
		DateRange: config.DateRange{From: config.MustDate("2023-01-01"), To: config.MustDate("2023-01-31")},
	}
	_, err := dataset.Shape(city, []models.Daily{{Date: date("2022-04-01")}}, nil)
	assert.True(t, errors.Is(err, dataset.ErrEmptyDataset))
}

func TestCheckContiguous(t *testing.T) {
	assert.NoError(t, dataset.CheckContiguous([]models.Daily{
		{Date: date("2022-04-01")}, {Date: date("2022-04-02")},
	}))
	assert.Error(t, dataset.CheckContiguous([]models.Daily{
		{Date: date("2022-04-01")}, {Date: date("2022-04-01")},
	}))
	assert.Error(t, dataset.CheckContiguous([]models.Daily{
		{Date: date("2022-04-01")}, {Date: date("2022-04-03")},
	}))
}

func TestSortResidentsNullsLast(t *testing.T) {
	age := func(v int) *int { return &v }
	rows := []models.Resident{
		{Date: date("2022-04-02"), Classification: "轻型", District: "徐汇区"},
		{Date: date("2022-04-01"), Classification: "", District: "徐汇区", Residence: "a"},
		{Date: date("2022-04-01"), Classification: "普通型", District: "徐汇区", Residence: "a", Age: nil},
		{Date: date("2022-04-01"), Classification: "普通型", District: "徐汇区", Residence: "a", Age: age(40)},
		{Date: date("2022-04-01"), Classification: "普通型", District: "徐汇区", Residence: "a", Age: age(20)},
		{Date: date("2022-04-01"), Classification: "无症状感染者", District: "浦东新区"},
	}
	dataset.SortResidents(rows)

	// "无症状感染者" < "普通型" in byte order
	assert.Equal(t, "无症状感染者", rows[0].Classification)
	assert.Equal(t, 20, *rows[1].Age)
	assert.Equal(t, 40, *rows[2].Age)
	assert.Nil(t, rows[3].Age)
	assert.Equal(t, "", rows[4].Classification)
	assert.Equal(t, date("2022-04-02"), rows[5].Date)
}

func TestDerive(t *testing.T) {
	age := 60
	rows := []models.Resident{
		{City: "北京市", District: "朝阳区", Residence: "望京"},
		{City: "北京市", District: "朝阳区", Residence: "望京", Classification: "普通型", Gender: "女", Age: &age},
	}
	dataset.Derive(rows)

	assert.Equal(t, "北京市朝阳区望京", rows[0].Address)
	assert.Equal(t, "北京市朝阳区望京", rows[0].Label)
	assert.Equal(t, "北京市朝阳区望京\n普通型，女，60岁", rows[1].Label)
}

func TestPrepare(t *testing.T) {
	dir := t.TempDir()
	districts := []string{"朝阳区"}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beijing-daily.csv"), []byte(dailyCSV(districts,
		[]string{"2022-04-16", "2", "1"},
		[]string{"2022-04-15", "1", "0"},
		[]string{"2022-04-14", "9", "9"},
	)), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beijing-residents.csv"), []byte(
		"日期,市,区,居住地,分型,性别,年龄\n2022-04-15,北京市,朝阳区,望京,轻型,女,8\n"), 0644))

	city := config.City{
		Name:          "北京市",
		ID:            "beijing",
		FileDaily:     "beijing-daily.csv",
		FileResidents: "beijing-residents.csv",
		DateRange:     config.DateRange{From: config.MustDate("2022-04-15"), To: config.MustDate("2022-06-01")},
		Districts:     districts,
	}
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	p, err := dataset.Prepare(city, dir, log)
	require.NoError(t, err)
	assert.Len(t, p.Daily, 2)
	assert.Equal(t, 2, p.Latest().Confirmed)
	require.Len(t, p.Residents, 1)
	assert.Equal(t, "北京市朝阳区望京\n轻型，女，8岁", p.Residents[0].Label)

	_, err = dataset.Prepare(config.City{ID: "x", FileDaily: "missing.csv"}, dir, log)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSeriesHelpers(t *testing.T) {
	assert.Equal(t, 0, dataset.Max(nil))
	assert.Equal(t, 7, dataset.Max([]int{3, 7, 1}))
	assert.Equal(t, []int{4, 6}, dataset.Add([]int{1, 2}, []int{3, 4}))
}
