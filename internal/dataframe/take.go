package dataframe

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/retail-eda/internal/errors"
	"github.com/paveg/retail-eda/internal/series"
	"golang.org/x/exp/constraints"
)

// nullRow is a Take index that produces a null slot.
const nullRow = -1

// Take returns a new DataFrame holding the rows at indices, in that order.
func (df *DataFrame) Take(indices []int) (*DataFrame, error) {
	rows := df.Len()
	for _, idx := range indices {
		if idx < 0 || idx >= rows {
			return nil, errors.NewValidationError("Take", "",
				fmt.Sprintf("index %d out of bounds [0, %d)", idx, rows))
		}
	}
	return df.take(indices)
}

// take is Take without bounds checks; nullRow indices become nulls.
func (df *DataFrame) take(indices []int) (*DataFrame, error) {
	taken := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		s, err := takeSeries(df.columns[name], indices, df.mem)
		if err != nil {
			return nil, err
		}
		taken = append(taken, s)
	}
	return New(taken...), nil
}

// takeSeries gathers the rows at indices into an independent series.
func takeSeries(s ISeries, indices []int, mem memory.Allocator) (ISeries, error) {
	switch typed := s.(type) {
	case *series.Series[string]:
		return takeTyped(typed, indices, mem)
	case *series.Series[int64]:
		return takeTyped(typed, indices, mem)
	case *series.Series[float64]:
		return takeTyped(typed, indices, mem)
	case *series.Series[bool]:
		return takeTyped(typed, indices, mem)
	case *series.Series[time.Time]:
		return takeTyped(typed, indices, mem)
	default:
		return nil, errors.NewUnsupportedTypeError("Take", s.Name(), s.DataType().String())
	}
}

func takeTyped[T any](s *series.Series[T], indices []int, mem memory.Allocator) (ISeries, error) {
	values := make([]T, len(indices))
	valid := make([]bool, len(indices))
	for i, idx := range indices {
		if idx == nullRow || s.IsNull(idx) {
			continue
		}
		values[i] = s.Value(idx)
		valid[i] = true
	}
	return series.NewWithNulls(s.Name(), values, valid, mem)
}

// Slice creates a new DataFrame containing rows from start (inclusive) to end
// (exclusive). The range is clamped to the frame; an empty range yields a frame
// with the same columns and no rows.
func (df *DataFrame) Slice(start, end int) (*DataFrame, error) {
	length := df.Len()
	start = max(start, 0)
	end = min(end, length)
	if start > end {
		start = end
	}

	indices := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		indices = append(indices, i)
	}
	return df.take(indices)
}

// Head returns the first n rows.
func (df *DataFrame) Head(n int) (*DataFrame, error) {
	return df.Slice(0, n)
}

// Sample returns n rows drawn without replacement using a generator seeded
// with seed, so the same seed always yields the same rows. n is capped at the
// row count.
func (df *DataFrame) Sample(n int, seed uint64) (*DataFrame, error) {
	if n < 0 {
		return nil, errors.NewInvalidInputError("Sample", "sample size must be non-negative")
	}
	rows := df.Len()
	n = min(n, rows)

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(rows)
	return df.take(perm[:n])
}

// SortBy returns a new DataFrame ordered by column. The sort is stable, so
// rows with equal values keep their current relative order. Nulls sort last
// in both directions.
func (df *DataFrame) SortBy(column string, ascending bool) (*DataFrame, error) {
	col, ok := df.Column(column)
	if !ok {
		return nil, errors.NewColumnNotFoundError("SortBy", column)
	}

	less, err := rowLess(col, ascending)
	if err != nil {
		return nil, err
	}

	indices := make([]int, df.Len())
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		ia, ib := indices[a], indices[b]
		nullA, nullB := col.IsNull(ia), col.IsNull(ib)
		if nullA || nullB {
			return !nullA && nullB
		}
		return less(ia, ib)
	})
	return df.take(indices)
}

// rowLess builds a comparison over two non-null rows of col.
func rowLess(col ISeries, ascending bool) (func(i, j int) bool, error) {
	var cmp func(i, j int) int

	switch typed := col.(type) {
	case *series.Series[float64]:
		cmp = func(i, j int) int { return compareOrdered(typed.Value(i), typed.Value(j)) }
	case *series.Series[int64]:
		cmp = func(i, j int) int { return compareOrdered(typed.Value(i), typed.Value(j)) }
	case *series.Series[string]:
		cmp = func(i, j int) int { return compareOrdered(typed.Value(i), typed.Value(j)) }
	case *series.Series[time.Time]:
		cmp = func(i, j int) int { return typed.Value(i).Compare(typed.Value(j)) }
	case *series.Series[bool]:
		cmp = func(i, j int) int {
			a, b := typed.Value(i), typed.Value(j)
			switch {
			case a == b:
				return 0
			case !a:
				return -1
			default:
				return 1
			}
		}
	default:
		return nil, errors.NewUnsupportedTypeError("SortBy", col.Name(), col.DataType().String())
	}

	if ascending {
		return func(i, j int) bool { return cmp(i, j) < 0 }, nil
	}
	return func(i, j int) bool { return cmp(i, j) > 0 }, nil
}

func compareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
