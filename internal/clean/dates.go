package clean

import (
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/retail-eda/internal/dataframe"
	"github.com/paveg/retail-eda/internal/series"
)

// ParseDate tries each layout in order. Empty text never parses.
func ParseDate(text string, layouts []string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDates replaces column with a date column. Cells that are null or match
// none of the layouts become null; parsing never fails. A column that already
// holds dates is returned unchanged.
func ParseDates(df *dataframe.DataFrame, column string, layouts []string) (*dataframe.DataFrame, int, error) {
	if _, _, err := df.Dates(column); err == nil {
		return df, 0, nil
	}

	texts, valid, err := df.Strings(column)
	if err != nil {
		return nil, 0, err
	}

	dates := make([]time.Time, len(texts))
	parsed := make([]bool, len(texts))
	invalid := 0
	for i, text := range texts {
		if !valid[i] {
			continue
		}
		if dates[i], parsed[i] = ParseDate(text, layouts); !parsed[i] {
			invalid++
		}
	}

	s, err := series.NewWithNulls(column, dates, parsed, memory.DefaultAllocator)
	if err != nil {
		return nil, 0, err
	}
	out, err := df.WithColumn(s)
	if err != nil {
		return nil, 0, err
	}
	return out, invalid, nil
}

// AddYearMonth derives integer Year and Month columns from a date column.
// A null date gives a null year and month.
func AddYearMonth(df *dataframe.DataFrame, column, yearName, monthName string) (*dataframe.DataFrame, error) {
	dates, valid, err := df.Dates(column)
	if err != nil {
		return nil, err
	}

	years := make([]int64, len(dates))
	months := make([]int64, len(dates))
	for i, d := range dates {
		if valid[i] {
			years[i] = int64(d.Year())
			months[i] = int64(d.Month())
		}
	}

	yearSeries, err := series.NewWithNulls(yearName, years, valid, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}
	monthSeries, err := series.NewWithNulls(monthName, months, valid, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}

	out, err := df.WithColumn(yearSeries)
	if err != nil {
		return nil, err
	}
	return out.WithColumn(monthSeries)
}
