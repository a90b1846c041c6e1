package dataset

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jgoulah/epichart/internal/config"
	"github.com/jgoulah/epichart/pkg/models"
)

// ErrEmptyDataset is returned when no daily row falls inside the configured date range
var ErrEmptyDataset = errors.New("empty dataset for configured date range")

const day = 24 * 60 * 60 // seconds

// Prepared holds a city's tables after filtering, sorting and derivation
type Prepared struct {
	City      config.City
	Daily     []models.Daily
	Residents []models.Resident
}

// Latest returns the most recent daily row
func (p *Prepared) Latest() models.Daily {
	return p.Daily[len(p.Daily)-1]
}

// Prepare loads both CSV files of a city and shapes them for charting
func Prepare(city config.City, dataDir string, log logrus.FieldLogger) (*Prepared, error) {
	dailyPath := city.DailyPath(dataDir)
	f, err := os.Open(dailyPath)
	if err != nil {
		return nil, fmt.Errorf("opening daily data: %w", err)
	}
	defer f.Close()

	daily, err := LoadDaily(f, city.Districts)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dailyPath, err)
	}
	log.WithFields(logrus.Fields{"file": dailyPath, "rows": len(daily)}).Debug("loaded daily data")

	var residents []models.Resident
	if p := city.ResidentsPath(dataDir); p != "" {
		rf, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("opening resident data: %w", err)
		}
		defer rf.Close()

		if residents, err = LoadResidents(rf); err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		log.WithFields(logrus.Fields{"file": p, "rows": len(residents)}).Debug("loaded resident data")
	}

	return Shape(city, daily, residents)
}

// Shape restricts both tables to the city's date range, sorts them and derives the
// resident address and label columns.
func Shape(city config.City, daily []models.Daily, residents []models.Resident) (*Prepared, error) {
	daily = FilterDaily(daily, city.DateRange)
	if len(daily) == 0 {
		return nil, fmt.Errorf("%s %s..%s: %w", city.ID, city.DateRange.From, city.DateRange.To, ErrEmptyDataset)
	}
	SortDaily(daily)
	if err := CheckContiguous(daily); err != nil {
		return nil, fmt.Errorf("%s: %w", city.ID, err)
	}

	residents = FilterResidents(residents, city.DateRange)
	SortResidents(residents)
	Derive(residents)

	return &Prepared{City: city, Daily: daily, Residents: residents}, nil
}

// FilterDaily returns the rows whose date lies in r
func FilterDaily(rows []models.Daily, r config.DateRange) []models.Daily {
	var out []models.Daily
	for _, d := range rows {
		if r.Contains(d.Date) {
			out = append(out, d)
		}
	}
	return out
}

// FilterResidents returns the rows whose date lies in r
func FilterResidents(rows []models.Resident, r config.DateRange) []models.Resident {
	var out []models.Resident
	for _, res := range rows {
		if r.Contains(res.Date) {
			out = append(out, res)
		}
	}
	return out
}

// SortDaily orders rows by date, oldest first
func SortDaily(rows []models.Daily) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
}

// SortResidents orders rows by date, classification, district, residence and age.
// Unknown classifications and ages sort last.
func SortResidents(rows []models.Resident) {
	sort.SliceStable(rows, func(i, j int) bool {
		l, r := rows[i], rows[j]

		if !l.Date.Equal(r.Date) {
			return l.Date.Before(r.Date)
		}
		if l.Classification != r.Classification {
			if l.Classification == "" || r.Classification == "" {
				return r.Classification == ""
			}
			return l.Classification < r.Classification
		}
		if l.District != r.District {
			return strings.Compare(l.District, r.District) < 0
		}
		if l.Residence != r.Residence {
			return strings.Compare(l.Residence, r.Residence) < 0
		}
		if l.Age == nil || r.Age == nil {
			return l.Age != nil && r.Age == nil
		}
		return *l.Age < *r.Age
	})
}

// CheckContiguous verifies sorted rows hold exactly one record per consecutive day
func CheckContiguous(rows []models.Daily) error {
	for i := 1; i < len(rows); i++ {
		gap := (rows[i].Date.Unix() - rows[i-1].Date.Unix()) / day
		switch {
		case gap == 0:
			return fmt.Errorf("duplicate rows for %s", rows[i].Date.Format("2006-01-02"))
		case gap > 1:
			return fmt.Errorf("no rows between %s and %s",
				rows[i-1].Date.Format("2006-01-02"), rows[i].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Derive fills in the composed address and label of each resident
func Derive(rows []models.Resident) {
	for i := range rows {
		rows[i].Address = rows[i].ComposeAddress()
		rows[i].Label = rows[i].ComposeLabel()
	}
}
