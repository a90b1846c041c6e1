package models

import "time"

// Report records one render of a city together with the latest day's figures
type Report struct {
	ID                   int       `json:"id"`
	RunID                string    `json:"run_id"`
	City                 string    `json:"city"`
	LatestDate           time.Time `json:"latest_date"`
	Days                 int       `json:"days"`
	Confirmed            int       `json:"confirmed"`
	Asymptomatic         int       `json:"asymptomatic"`
	ConfirmedFromRisk    int       `json:"confirmed_from_risk"`
	AsymptomaticFromRisk int       `json:"asymptomatic_from_risk"`
	Severe               int       `json:"severe"`
	Critical             int       `json:"critical"`
	Death                int       `json:"death"`
	InHospital           int       `json:"in_hospital"`
	CreatedAt            time.Time `json:"created_at"`
	Published            bool      `json:"published"`
}

// NewReport summarizes the latest row of a rendered city
func NewReport(runID, city string, days int, latest Daily) Report {
	return Report{
		RunID:                runID,
		City:                 city,
		LatestDate:           latest.Date,
		Days:                 days,
		Confirmed:            latest.Confirmed,
		Asymptomatic:         latest.Asymptomatic,
		ConfirmedFromRisk:    latest.ConfirmedFromRisk,
		AsymptomaticFromRisk: latest.AsymptomaticFromRisk,
		Severe:               latest.Severe,
		Critical:             latest.Critical,
		Death:                latest.Death,
		InHospital:           latest.InHospital,
	}
}

// Positive returns confirmed plus asymptomatic cases of the latest day
func (r Report) Positive() int {
	return r.Confirmed + r.Asymptomatic
}

// Figure is an image written by a render run
type Figure struct {
	RunID string `json:"run_id"`
	City  string `json:"city"`
	Kind  string `json:"kind"`
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}
