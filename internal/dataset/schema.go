package dataset

import (
	"github.com/jgoulah/epichart/pkg/models"
)

// Column names shared by the daily and resident CSV files
const (
	colDate   = "日期"
	colSource = "来源"

	colCity           = "市"
	colDistrict       = "区"
	colResidence      = "居住地"
	colClassification = "分型"
	colGender         = "性别"
	colAge            = "年龄"
)

// intColumn binds an integer CSV column to a field of the daily record
type intColumn struct {
	name string
	set  func(d *models.Daily, v int)
}

// dailyColumns lists the integer columns every daily CSV must carry
var dailyColumns = []intColumn{
	{"本土确诊病例", func(d *models.Daily, v int) { d.Confirmed = v }},
	{"本土无症状感染者", func(d *models.Daily, v int) { d.Asymptomatic = v }},
	{"从风险人群中发现的本土病例", func(d *models.Daily, v int) { d.ConfirmedFromRisk = v }},
	{"从风险人群中发现的无症状感染者", func(d *models.Daily, v int) { d.AsymptomaticFromRisk = v }},
	{"轻型", func(d *models.Daily, v int) { d.Mild = v }},
	{"普通型", func(d *models.Daily, v int) { d.Common = v }},
	{"重型", func(d *models.Daily, v int) { d.Severe = v }},
	{"危重型", func(d *models.Daily, v int) { d.Critical = v }},
	{"本土死亡病例", func(d *models.Daily, v int) { d.Death = v }},
	{"本土在院治疗", func(d *models.Daily, v int) { d.InHospital = v }},
	{"本土病例出院", func(d *models.Daily, v int) { d.DischargedFromHospital = v }},
	{"解除医学观察", func(d *models.Daily, v int) { d.DischargedFromObservation = v }},
}

// districtColumns returns the four per-district columns of the daily CSV
func districtColumns(district string) []intColumn {
	update := func(f func(c *models.DistrictCounts, v int)) func(d *models.Daily, v int) {
		return func(d *models.Daily, v int) {
			if d.Districts == nil {
				d.Districts = make(map[string]models.DistrictCounts)
			}
			c := d.Districts[district]
			f(&c, v)
			d.Districts[district] = c
		}
	}
	return []intColumn{
		{district + "_确诊", update(func(c *models.DistrictCounts, v int) { c.Confirmed = v })},
		{district + "_无症状", update(func(c *models.DistrictCounts, v int) { c.Asymptomatic = v })},
		{district + "_确诊_来自风险人群", update(func(c *models.DistrictCounts, v int) { c.ConfirmedFromRisk = v })},
		{district + "_无症状_来自风险人群", update(func(c *models.DistrictCounts, v int) { c.AsymptomaticFromRisk = v })},
	}
}

// DailyHeader returns the header a daily CSV for the given districts is expected to have
func DailyHeader(districts []string) []string {
	header := []string{colDate}
	for _, c := range dailyColumns {
		header = append(header, c.name)
	}
	for _, d := range districts {
		for _, c := range districtColumns(d) {
			header = append(header, c.name)
		}
	}
	return append(header, colSource)
}

// ResidentsHeader returns the header of a resident CSV
func ResidentsHeader() []string {
	return []string{colDate, colCity, colDistrict, colResidence, colClassification, colGender, colAge}
}
