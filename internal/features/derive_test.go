package features_test

import (
	"math"
	"testing"
	"testing/quick"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/retail-eda/internal/dataframe"
	"github.com/paveg/retail-eda/internal/features"
	"github.com/paveg/retail-eda/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestSafeDivide(t *testing.T) {
	assert.InDelta(t, 2.5, features.SafeDivide(5.0, 2.0), 1e-12)
	assert.InDelta(t, 2.5, features.SafeDivide(int64(5), int64(2)), 1e-12)
	assert.Zero(t, features.SafeDivide(5.0, 0.0))
	assert.Zero(t, features.SafeDivide(-5.0, 0.0))
	assert.Zero(t, features.SafeDivide(0.0, 0.0))
	assert.Zero(t, features.SafeDivide(math.Inf(1), 2.0))
	assert.Zero(t, features.SafeDivide(0, 0))
}

func TestSafeDivideIsFinite(t *testing.T) {
	property := func(num, den float64) bool {
		q := features.SafeDivide(num, den)
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return false
		}
		if den == 0 {
			return q == 0
		}
		expected := num / den
		if math.IsInf(expected, 0) {
			return q == 0
		}
		return q == expected
	}
	require.NoError(t, quick.Check(property, nil))
}

func TestRatio(t *testing.T) {
	mem := memory.NewGoAllocator()
	profit, err := series.NewWithNulls("Profit", []float64{5, 10, 3, 1}, []bool{true, true, false, true}, mem)
	require.NoError(t, err)
	sales := series.New("Sales", []float64{0, 40, 9, 4}, mem)
	df := dataframe.New(sales, profit)

	out, err := features.Ratio(df, "Profit", "Sales", "ProfitMargin")
	require.NoError(t, err)

	margins, valid, err := out.Float64s("ProfitMargin")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true, true}, valid)
	assert.Zero(t, margins[0], "zero sales gives 0, not infinity")
	assert.InDelta(t, 0.25, margins[1], 1e-12)
	assert.Zero(t, margins[2], "null operand gives 0")
	assert.InDelta(t, 0.25, margins[3], 1e-12)
}

func TestCalendarParts(t *testing.T) {
	mem := memory.NewGoAllocator()
	dates, err := series.NewWithNulls("Order Date",
		[]time.Time{date(2016, time.November, 8), {}}, []bool{true, false}, mem)
	require.NoError(t, err)

	out, err := features.CalendarParts(dataframe.New(dates), "Order Date")
	require.NoError(t, err)

	assert.Equal(t, []string{"2016", "11", "Nov", "8", "Tuesday"}, out.Row(0)[1:])
	assert.Equal(t, []string{"", "", "", "", ""}, out.Row(1)[1:])
	assert.Equal(t, []string{"Order Date", "OrderYear", "OrderMonth", "OrderMonthName", "OrderDay", "OrderWeekday"},
		out.Columns())
}

func TestDeliveryDays(t *testing.T) {
	mem := memory.NewGoAllocator()
	order, err := series.NewWithNulls("Order Date",
		[]time.Time{date(2016, 11, 8), date(2016, 11, 12), date(2016, 11, 8), {}},
		[]bool{true, true, true, false}, mem)
	require.NoError(t, err)
	ship, err := series.NewWithNulls("Ship Date",
		[]time.Time{date(2016, 11, 11), date(2016, 11, 10), {}, date(2016, 11, 8)},
		[]bool{true, true, false, true}, mem)
	require.NoError(t, err)

	out, err := features.DeliveryDays(dataframe.New(order, ship), "Ship Date", "Order Date")
	require.NoError(t, err)

	days, valid, err := out.Int64s("DeliveryDays")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, -2, -1, -1}, days)
	assert.Equal(t, []bool{true, true, true, true}, valid)
}

func TestHighDiscountFlag(t *testing.T) {
	mem := memory.NewGoAllocator()
	discount, err := series.NewWithNulls("Discount",
		[]float64{0, 0.3, 0.31, 0.8, 0}, []bool{true, true, true, true, false}, mem)
	require.NoError(t, err)

	out, err := features.HighDiscountFlag(dataframe.New(discount), "Discount", 0.3)
	require.NoError(t, err)

	flags, _, err := out.Int64s("HighDiscountFlag")
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0, 1, 1, 0}, flags)
}

func TestCategoryLabel(t *testing.T) {
	mem := memory.NewGoAllocator()
	category, err := series.NewWithNulls("Category",
		[]string{"Technology", "Furniture", "Office Supplies", "", "Furniture"},
		[]bool{true, true, true, false, true}, mem)
	require.NoError(t, err)

	out, err := features.CategoryLabel(dataframe.New(category), "Category", "Category_Label")
	require.NoError(t, err)

	labels, _, err := out.Int64s("Category_Label")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 0, 1, -1, 0}, labels)
}

func TestDaysSince(t *testing.T) {
	mem := memory.NewGoAllocator()
	dates, err := series.NewWithNulls("Order Date",
		[]time.Time{date(2017, 12, 30), date(2017, 1, 1), {}, date(2017, 12, 30), date(2016, 12, 30)},
		[]bool{true, true, false, true, true}, mem)
	require.NoError(t, err)

	out, err := features.DaysSince(dataframe.New(dates), "Order Date", "DaysSinceOrder")
	require.NoError(t, err)

	days, valid, err := out.Int64s("DaysSinceOrder")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false, true, true}, valid)
	assert.Equal(t, int64(0), days[0])
	assert.Equal(t, int64(363), days[1])
	assert.Equal(t, int64(0), days[3])
	assert.Equal(t, int64(365), days[4])

	t.Run("all null dates give all null", func(t *testing.T) {
		empty, err := series.NewWithNulls("Order Date", []time.Time{{}}, []bool{false}, mem)
		require.NoError(t, err)
		out, err := features.DaysSince(dataframe.New(empty), "Order Date", "DaysSinceOrder")
		require.NoError(t, err)
		col, _ := out.Column("DaysSinceOrder")
		assert.Equal(t, 1, col.NullCount())
	})
}

func TestDaysSinceNonNegative(t *testing.T) {
	mem := memory.NewGoAllocator()

	property := func(offsets []uint16) bool {
		if len(offsets) == 0 {
			return true
		}
		dates := make([]time.Time, len(offsets))
		var maxOffset uint16
		for i, o := range offsets {
			dates[i] = date(2014, 1, 1).AddDate(0, 0, int(o%2000))
			maxOffset = max(maxOffset, o%2000)
		}
		out, err := features.DaysSince(dataframe.New(series.New("Order Date", dates, mem)), "Order Date", "d")
		if err != nil {
			return false
		}
		days, _, err := out.Int64s("d")
		if err != nil {
			return false
		}
		for i, d := range days {
			if d < 0 {
				return false
			}
			if offsets[i]%2000 == maxOffset && d != 0 {
				return false
			}
		}
		return true
	}
	require.NoError(t, quick.Check(property, nil))
}

func TestYearMonth(t *testing.T) {
	mem := memory.NewGoAllocator()
	dates, err := series.NewWithNulls("Order Date",
		[]time.Time{date(2016, 3, 8), {}}, []bool{true, false}, mem)
	require.NoError(t, err)

	out, err := features.YearMonth(dataframe.New(dates), "Order Date", "YearMonth")
	require.NoError(t, err)

	periods, valid, err := out.Strings("YearMonth")
	require.NoError(t, err)
	assert.Equal(t, "2016-03", periods[0])
	assert.False(t, valid[1])
}
