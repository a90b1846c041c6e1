package dataset

import (
	"time"

	"github.com/jgoulah/epichart/pkg/models"
)

// Column extracts one integer series from the daily rows
func Column(rows []models.Daily, f func(models.Daily) int) []int {
	out := make([]int, len(rows))
	for i, d := range rows {
		out[i] = f(d)
	}
	return out
}

// DistrictColumn extracts one per-district series from the daily rows
func DistrictColumn(rows []models.Daily, district string, f func(models.DistrictCounts) int) []int {
	return Column(rows, func(d models.Daily) int { return f(d.District(district)) })
}

// Dates returns the date of each row
func Dates(rows []models.Daily) []time.Time {
	out := make([]time.Time, len(rows))
	for i, d := range rows {
		out[i] = d.Date
	}
	return out
}

// Max returns the largest value, 0 for an empty series
func Max(values []int) int {
	m := 0
	for i, v := range values {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// Add returns the element-wise sum of the series
func Add(series ...[]int) []int {
	if len(series) == 0 {
		return nil
	}
	out := make([]int, len(series[0]))
	for _, s := range series {
		for i, v := range s {
			out[i] += v
		}
	}
	return out
}

// Residents returns the residents of a date and, if non-empty, a district
func Residents(rows []models.Resident, date time.Time, district string) []models.Resident {
	var out []models.Resident
	for _, r := range rows {
		if !date.IsZero() && !r.Date.Equal(date) {
			continue
		}
		if district != "" && r.District != district {
			continue
		}
		out = append(out, r)
	}
	return out
}
