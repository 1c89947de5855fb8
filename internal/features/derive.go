package features

import (
	"math"
	"sort"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/retail-eda/internal/dataframe"
	"github.com/paveg/retail-eda/internal/series"
	"golang.org/x/exp/constraints"
)

// SafeDivide divides num by den and maps undefined results (NaN, ±Inf) to 0.
func SafeDivide[T constraints.Integer | constraints.Float](num, den T) float64 {
	q := float64(num) / float64(den)
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return q
}

// Ratio adds name = num / den. A null operand or an undefined quotient gives 0,
// so the result has no nulls and is always finite.
func Ratio(df *dataframe.DataFrame, num, den, name string) (*dataframe.DataFrame, error) {
	nums, numValid, err := df.Float64s(num)
	if err != nil {
		return nil, err
	}
	dens, denValid, err := df.Float64s(den)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(nums))
	for i := range nums {
		if numValid[i] && denValid[i] {
			out[i] = SafeDivide(nums[i], dens[i])
		}
	}
	return df.WithColumn(series.New(name, out, memory.DefaultAllocator))
}

// CalendarParts adds the year, month number, short month name, day of month
// and weekday name of a date column. Null dates give null parts.
func CalendarParts(df *dataframe.DataFrame, column string) (*dataframe.DataFrame, error) {
	dates, valid, err := df.Dates(column)
	if err != nil {
		return nil, err
	}

	n := len(dates)
	years := make([]int64, n)
	months := make([]int64, n)
	monthNames := make([]string, n)
	days := make([]int64, n)
	weekdays := make([]string, n)
	for i, d := range dates {
		if !valid[i] {
			continue
		}
		years[i] = int64(d.Year())
		months[i] = int64(d.Month())
		monthNames[i] = d.Format("Jan")
		days[i] = int64(d.Day())
		weekdays[i] = d.Weekday().String()
	}

	parts := []dataframe.ISeries{}
	for _, build := range []func() (dataframe.ISeries, error){
		func() (dataframe.ISeries, error) { return series.NewWithNulls(OrderYearColumn, years, valid, memory.DefaultAllocator) },
		func() (dataframe.ISeries, error) { return series.NewWithNulls(OrderMonthColumn, months, valid, memory.DefaultAllocator) },
		func() (dataframe.ISeries, error) { return series.NewWithNulls(OrderMonthNameColumn, monthNames, valid, memory.DefaultAllocator) },
		func() (dataframe.ISeries, error) { return series.NewWithNulls(OrderDayColumn, days, valid, memory.DefaultAllocator) },
		func() (dataframe.ISeries, error) { return series.NewWithNulls(OrderWeekdayColumn, weekdays, valid, memory.DefaultAllocator) },
	} {
		s, err := build()
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	return withColumns(df, parts...)
}

// DeliveryDays adds the whole days from order to ship date. Rows where either
// date is null get -1; negative spans are kept as they are.
func DeliveryDays(df *dataframe.DataFrame, ship, order string) (*dataframe.DataFrame, error) {
	shipDates, shipValid, err := df.Dates(ship)
	if err != nil {
		return nil, err
	}
	orderDates, orderValid, err := df.Dates(order)
	if err != nil {
		return nil, err
	}

	out := make([]int64, len(shipDates))
	for i := range shipDates {
		if !shipValid[i] || !orderValid[i] {
			out[i] = MissingDeliveryDays
			continue
		}
		out[i] = daysBetween(orderDates[i], shipDates[i])
	}
	return df.WithColumn(series.New(DeliveryDaysColumn, out, memory.DefaultAllocator))
}

// HighDiscountFlag adds 1 where the discount exceeds threshold, else 0.
// A null discount is not high.
func HighDiscountFlag(df *dataframe.DataFrame, column string, threshold float64) (*dataframe.DataFrame, error) {
	discounts, valid, err := df.Float64s(column)
	if err != nil {
		return nil, err
	}

	out := make([]int64, len(discounts))
	for i, d := range discounts {
		if valid[i] && d > threshold {
			out[i] = 1
		}
	}
	return df.WithColumn(series.New(HighDiscountFlagColumn, out, memory.DefaultAllocator))
}

// CategoryLabel adds integer codes for a categorical column: the sorted
// distinct non-null values are numbered from 0 and null gets -1.
func CategoryLabel(df *dataframe.DataFrame, column, name string) (*dataframe.DataFrame, error) {
	values, valid, err := df.Strings(column)
	if err != nil {
		return nil, err
	}

	distinct := make(map[string]int64)
	for i, v := range values {
		if valid[i] {
			distinct[v] = 0
		}
	}
	labels := make([]string, 0, len(distinct))
	for v := range distinct {
		labels = append(labels, v)
	}
	sort.Strings(labels)
	for code, v := range labels {
		distinct[v] = int64(code)
	}

	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = -1
		if valid[i] {
			out[i] = distinct[v]
		}
	}
	return df.WithColumn(series.New(name, out, memory.DefaultAllocator))
}

// DaysSince adds the whole days between each date and the latest date in the
// column. The latest date gets 0 and a null date gets null.
func DaysSince(df *dataframe.DataFrame, column, name string) (*dataframe.DataFrame, error) {
	dates, valid, err := df.Dates(column)
	if err != nil {
		return nil, err
	}

	ref, ok := maxDate(dates, valid)
	out := make([]int64, len(dates))
	outValid := make([]bool, len(dates))
	if ok {
		for i, d := range dates {
			if valid[i] {
				out[i] = daysBetween(d, ref)
				outValid[i] = true
			}
		}
	}

	s, err := series.NewWithNulls(name, out, outValid, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}
	return df.WithColumn(s)
}

// YearMonth adds the "YYYY-MM" period of a date column. Null dates give null.
func YearMonth(df *dataframe.DataFrame, column, name string) (*dataframe.DataFrame, error) {
	dates, valid, err := df.Dates(column)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(dates))
	for i, d := range dates {
		if valid[i] {
			out[i] = d.Format(YearMonthLayout)
		}
	}

	s, err := series.NewWithNulls(name, out, valid, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}
	return df.WithColumn(s)
}

func maxDate(dates []time.Time, valid []bool) (time.Time, bool) {
	var latest time.Time
	found := false
	for i, d := range dates {
		if valid[i] && (!found || d.After(latest)) {
			latest = d
			found = true
		}
	}
	return latest, found
}

// daysBetween floors the span from a to b to whole days.
func daysBetween(a, b time.Time) int64 {
	span := b.Sub(a)
	days := int64(span / (24 * time.Hour))
	if span < 0 && span%(24*time.Hour) != 0 {
		days--
	}
	return days
}

func withColumns(df *dataframe.DataFrame, cols ...dataframe.ISeries) (*dataframe.DataFrame, error) {
	var err error
	for _, col := range cols {
		if df, err = df.WithColumn(col); err != nil {
			return nil, err
		}
	}
	return df, nil
}
