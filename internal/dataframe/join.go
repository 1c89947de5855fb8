package dataframe

import (
	"fmt"

	"github.com/paveg/retail-eda/internal/errors"
)

// LeftJoin attaches the columns of right to every row of df whose key matches,
// keeping all rows of df in their original order. Rows without a match, or
// with a null key, get nulls in the right-hand columns. When a key occurs
// several times in right the left row is repeated once per match. The key
// column appears once in the result.
func (df *DataFrame) LeftJoin(right *DataFrame, key string) (*DataFrame, error) {
	leftKeys, leftValid, err := df.Strings(key)
	if err != nil {
		return nil, err
	}
	rightKeys, rightValid, err := right.Strings(key)
	if err != nil {
		return nil, err
	}

	rightColumns := make([]string, 0, right.Width())
	for _, name := range right.Columns() {
		if name == key {
			continue
		}
		if df.HasColumn(name) {
			return nil, errors.NewValidationError("LeftJoin", name,
				fmt.Sprintf("column exists on both sides of the join on '%s'", key))
		}
		rightColumns = append(rightColumns, name)
	}

	lookup := newHashIndex(len(rightKeys))
	for i, k := range rightKeys {
		if rightValid[i] {
			lookup.add(k, i)
		}
	}

	leftIdx := make([]int, 0, len(leftKeys))
	rightIdx := make([]int, 0, len(leftKeys))
	for i, k := range leftKeys {
		matches, ok := lookup.get(k)
		if !leftValid[i] || !ok {
			leftIdx = append(leftIdx, i)
			rightIdx = append(rightIdx, nullRow)
			continue
		}
		for _, m := range matches {
			leftIdx = append(leftIdx, i)
			rightIdx = append(rightIdx, m)
		}
	}

	leftPart, err := df.take(leftIdx)
	if err != nil {
		return nil, err
	}
	rightPart, err := right.Select(rightColumns...).take(rightIdx)
	if err != nil {
		return nil, err
	}

	joined := make([]ISeries, 0, leftPart.Width()+rightPart.Width())
	for _, name := range leftPart.Columns() {
		col, _ := leftPart.Column(name)
		joined = append(joined, col)
	}
	for _, name := range rightPart.Columns() {
		col, _ := rightPart.Column(name)
		joined = append(joined, col)
	}
	return New(joined...), nil
}
