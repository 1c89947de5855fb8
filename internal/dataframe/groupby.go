package dataframe

import (
	"sort"

	"github.com/paveg/retail-eda/internal/errors"
	"github.com/paveg/retail-eda/internal/series"
)

// GroupBy partitions the rows of a DataFrame by the text value of one key
// column. Rows whose key is null belong to no group. Aggregations emit one row
// per group with keys in ascending order.
type GroupBy struct {
	df    *DataFrame
	key   string
	index *hashIndex
	keys  []string
}

// GroupBy groups the rows by the key column.
func (df *DataFrame) GroupBy(key string) (*GroupBy, error) {
	keys, valid, err := df.Strings(key)
	if err != nil {
		return nil, err
	}

	index := newHashIndex(len(keys))
	for i, k := range keys {
		if valid[i] {
			index.add(k, i)
		}
	}

	sorted := index.keys()
	sort.Strings(sorted)

	return &GroupBy{df: df, key: key, index: index, keys: sorted}, nil
}

// Keys returns the group keys in ascending order.
func (gb *GroupBy) Keys() []string {
	return append([]string(nil), gb.keys...)
}

// Sum adds up a numeric column per group, skipping nulls. The result has the
// key column followed by a float64 column named after column.
func (gb *GroupBy) Sum(column string) (*DataFrame, error) {
	values, valid, err := gb.df.Float64s(column)
	if err != nil {
		return nil, err
	}

	sums := make([]float64, len(gb.keys))
	for g, key := range gb.keys {
		rows, _ := gb.index.get(key)
		for _, row := range rows {
			if valid[row] {
				sums[g] += values[row]
			}
		}
	}
	return gb.result(series.New(column, sums, gb.df.mem))
}

// NUnique counts the distinct non-null values of column per group.
func (gb *GroupBy) NUnique(column string) (*DataFrame, error) {
	values, valid, err := gb.df.Strings(column)
	if err != nil {
		return nil, err
	}

	counts := make([]int64, len(gb.keys))
	for g, key := range gb.keys {
		rows, _ := gb.index.get(key)
		seen := make(map[string]struct{}, len(rows))
		for _, row := range rows {
			if valid[row] {
				seen[values[row]] = struct{}{}
			}
		}
		counts[g] = int64(len(seen))
	}
	return gb.result(series.New(column, counts, gb.df.mem))
}

// Count returns the number of rows per group in a column named "count".
func (gb *GroupBy) Count() (*DataFrame, error) {
	counts := make([]int64, len(gb.keys))
	for g, key := range gb.keys {
		rows, _ := gb.index.get(key)
		counts[g] = int64(len(rows))
	}
	return gb.result(series.New("count", counts, gb.df.mem))
}

func (gb *GroupBy) result(aggregate ISeries) (*DataFrame, error) {
	if aggregate.Name() == gb.key {
		return nil, errors.NewValidationError("GroupBy", gb.key, "cannot aggregate the grouping key")
	}
	keys := series.New(gb.key, gb.keys, gb.df.mem)
	return New(keys, aggregate), nil
}
