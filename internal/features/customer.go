package features

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/retail-eda/internal/dataframe"
	"github.com/paveg/retail-eda/internal/errors"
	"github.com/paveg/retail-eda/internal/series"
	"github.com/paveg/retail-eda/internal/validation"
)

// CustomerAggregates adds per-customer totals to every row: summed sales,
// distinct order count, average order value and a repeat-customer flag.
// Rows without a customer ID get null totals, a 0 average and a 0 flag.
func CustomerAggregates(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := validation.ValidateColumns(df, "CustomerAggregates", CustomerIDColumn, SalesColumn, OrderIDColumn); err != nil {
		return nil, err
	}

	// a re-run replaces the previous aggregates rather than clashing with them
	base := df.Drop(CustTotalSalesColumn, CustTotalOrdersColumn, CustAvgOrderValueColumn, RepeatCustomerFlagColumn)

	gb, err := base.GroupBy(CustomerIDColumn)
	if err != nil {
		return nil, err
	}
	sales, err := gb.Sum(SalesColumn)
	if err != nil {
		return nil, err
	}
	orders, err := gb.NUnique(OrderIDColumn)
	if err != nil {
		return nil, err
	}

	totalSales, _, err := sales.Float64s(SalesColumn)
	if err != nil {
		return nil, err
	}
	totalOrders, _, err := orders.Int64s(OrderIDColumn)
	if err != nil {
		return nil, err
	}

	perCustomer := dataframe.New(
		series.New(CustomerIDColumn, gb.Keys(), memory.DefaultAllocator),
		series.New(CustTotalSalesColumn, totalSales, memory.DefaultAllocator),
		series.New(CustTotalOrdersColumn, totalOrders, memory.DefaultAllocator),
	)

	joined, err := base.LeftJoin(perCustomer, CustomerIDColumn)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateLength(base.Len(), joined.Len(), "CustomerAggregates", "broadcast join"); err != nil {
		return nil, errors.NewInternalError("CustomerAggregates", err)
	}

	joinedSales, salesValid, err := joined.Float64s(CustTotalSalesColumn)
	if err != nil {
		return nil, err
	}
	joinedOrders, ordersValid, err := joined.Int64s(CustTotalOrdersColumn)
	if err != nil {
		return nil, err
	}

	avg := make([]float64, joined.Len())
	repeat := make([]int64, joined.Len())
	for i := range avg {
		if salesValid[i] && ordersValid[i] {
			avg[i] = SafeDivide(joinedSales[i], float64(joinedOrders[i]))
		}
		if ordersValid[i] && joinedOrders[i] > 1 {
			repeat[i] = 1
		}
	}

	return withColumns(joined,
		series.New(CustAvgOrderValueColumn, avg, memory.DefaultAllocator),
		series.New(RepeatCustomerFlagColumn, repeat, memory.DefaultAllocator),
	)
}
