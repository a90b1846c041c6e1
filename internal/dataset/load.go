package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jgoulah/epichart/pkg/models"
)

// Accepted layouts of the 日期 column
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// header maps column names to their positions
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	cols, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	h := make(header, len(cols))
	for i, name := range cols {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff") // Excel exports
		}
		h[strings.TrimSpace(name)] = i
	}
	return h, nil
}

// require returns the position of each named column, failing on the first missing one
func (h header) require(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		pos, ok := h[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		idx[i] = pos
	}
	return idx, nil
}

// LoadDaily parses a daily aggregate CSV. Every column in the schema, plus the four
// columns of each district, must be present and hold integers.
func LoadDaily(r io.Reader, districts []string) ([]models.Daily, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	cols := append([]intColumn{}, dailyColumns...)
	for _, d := range districts {
		cols = append(cols, districtColumns(d)...)
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}

	dateIdx, err := h.require(colDate)
	if err != nil {
		return nil, err
	}
	idx, err := h.require(names...)
	if err != nil {
		return nil, err
	}
	sourceIdx, hasSource := h[colSource]

	var rows []models.Daily
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		var d models.Daily
		if d.Date, err = parseDate(field(rec, dateIdx[0])); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		for i, c := range cols {
			s := field(rec, idx[i])
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %q: invalid integer %q", line, c.name, s)
			}
			c.set(&d, v)
		}
		if hasSource {
			d.Source = field(rec, sourceIdx)
		}
		rows = append(rows, d)
	}

	return rows, nil
}

// LoadResidents parses a resident-level CSV
func LoadResidents(r io.Reader) ([]models.Resident, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	idx, err := h.require(ResidentsHeader()...)
	if err != nil {
		return nil, err
	}

	var rows []models.Resident
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		res := models.Resident{
			City:           field(rec, idx[1]),
			District:       field(rec, idx[2]),
			Residence:      field(rec, idx[3]),
			Classification: field(rec, idx[4]),
			Gender:         field(rec, idx[5]),
		}
		if res.Date, err = parseDate(field(rec, idx[0])); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if s := field(rec, idx[6]); s != "" {
			age, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %q: invalid age %q", line, colAge, s)
			}
			a := int(math.Round(age))
			res.Age = &a
		}
		rows = append(rows, res)
	}

	return rows, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
