package models

import (
	"fmt"
	"strconv"
	"time"
)

// Daily represents one day of aggregate case counts for a city
type Daily struct {
	Date                      time.Time `json:"date"`
	Confirmed                 int       `json:"confirmed"`                   // 本土确诊病例
	Asymptomatic              int       `json:"asymptomatic"`                // 本土无症状感染者
	ConfirmedFromRisk         int       `json:"confirmed_from_risk"`         // 从风险人群中发现的本土病例
	AsymptomaticFromRisk      int       `json:"asymptomatic_from_risk"`      // 从风险人群中发现的无症状感染者
	Mild                      int       `json:"mild"`                        // 轻型
	Common                    int       `json:"common"`                      // 普通型
	Severe                    int       `json:"severe"`                      // 重型
	Critical                  int       `json:"critical"`                    // 危重型
	Death                     int       `json:"death"`                       // 本土死亡病例
	InHospital                int       `json:"in_hospital"`                 // 本土在院治疗
	DischargedFromHospital    int       `json:"discharged_from_hospital"`    // 本土病例出院
	DischargedFromObservation int       `json:"discharged_from_observation"` // 解除医学观察

	Districts map[string]DistrictCounts `json:"districts,omitempty"`
	Source    string                    `json:"source,omitempty"` // 来源
}

// Positive returns confirmed plus asymptomatic cases
func (d Daily) Positive() int {
	return d.Confirmed + d.Asymptomatic
}

// District returns the counts for a district, zero if the district is unknown
func (d Daily) District(name string) DistrictCounts {
	return d.Districts[name]
}

// DistrictCounts holds the per-district counts of one day
type DistrictCounts struct {
	Confirmed            int `json:"confirmed"`              // {district}_确诊
	Asymptomatic         int `json:"asymptomatic"`           // {district}_无症状
	ConfirmedFromRisk    int `json:"confirmed_from_risk"`    // {district}_确诊_来自风险人群
	AsymptomaticFromRisk int `json:"asymptomatic_from_risk"` // {district}_无症状_来自风险人群
}

// Resident is one individual case record
type Resident struct {
	Date           time.Time `json:"date"`
	City           string    `json:"city"`
	District       string    `json:"district"`
	Residence      string    `json:"residence"`
	Classification string    `json:"classification,omitempty"` // empty when unknown
	Gender         string    `json:"gender,omitempty"`
	Age            *int      `json:"age,omitempty"`

	// Derived at load time
	Address string `json:"address"`
	Label   string `json:"label"`
}

// ComposeAddress concatenates city, district and residence
func (r Resident) ComposeAddress() string {
	return r.City + r.District + r.Residence
}

// ComposeLabel returns the address, followed by a classification line when one is known
func (r Resident) ComposeLabel() string {
	addr := r.ComposeAddress()
	if r.Classification == "" {
		return addr
	}
	age := ""
	if r.Age != nil {
		age = strconv.Itoa(*r.Age)
	}
	return fmt.Sprintf("%s\n%s，%s，%s岁", addr, r.Classification, r.Gender, age)
}
