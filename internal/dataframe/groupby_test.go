package dataframe

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/retail-eda/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createOrdersDataFrame(t *testing.T) *DataFrame {
	t.Helper()
	mem := memory.NewGoAllocator()

	regions, err := series.NewWithNulls("Region",
		[]string{"West", "East", "West", "", "Central"},
		[]bool{true, true, true, false, true}, mem)
	require.NoError(t, err)
	orders := series.New("Order ID", []string{"CA-1", "CA-2", "CA-1", "CA-3", "CA-4"}, mem)
	sales := series.New("Sales", []float64{10, 20, 30, 40, 50}, mem)
	return New(regions, orders, sales)
}

func TestGroupBySum(t *testing.T) {
	df := createOrdersDataFrame(t)

	gb, err := df.GroupBy("Region")
	require.NoError(t, err)
	assert.Equal(t, []string{"Central", "East", "West"}, gb.Keys())

	result, err := gb.Sum("Sales")
	require.NoError(t, err)
	assert.Equal(t, []string{"Region", "Sales"}, result.Columns())

	keys, _, _ := result.Strings("Region")
	sums, _, _ := result.Float64s("Sales")
	assert.Equal(t, []string{"Central", "East", "West"}, keys)
	assert.Equal(t, []float64{50, 20, 40}, sums)
}

func TestGroupByNUniqueAndCount(t *testing.T) {
	df := createOrdersDataFrame(t)
	gb, err := df.GroupBy("Region")
	require.NoError(t, err)

	unique, err := gb.NUnique("Order ID")
	require.NoError(t, err)
	counts, _, _ := unique.Int64s("Order ID")
	assert.Equal(t, []int64{1, 1, 1}, counts)

	rows, err := gb.Count()
	require.NoError(t, err)
	n, _, _ := rows.Int64s("count")
	assert.Equal(t, []int64{1, 1, 2}, n)
}

func TestGroupByErrors(t *testing.T) {
	df := createOrdersDataFrame(t)

	_, err := df.GroupBy("Segment")
	require.Error(t, err)

	gb, err := df.GroupBy("Order ID")
	require.NoError(t, err)
	_, err = gb.Sum("Region")
	require.Error(t, err, "text columns cannot be summed")
	_, err = gb.NUnique("Order ID")
	require.Error(t, err, "grouping key cannot be its own aggregate")
}
