package dataframe

import (
	"time"

	"github.com/paveg/retail-eda/internal/errors"
	"github.com/paveg/retail-eda/internal/series"
)

// Float64s returns a numeric column as float64 values plus its validity mask.
// Integer columns are widened.
func (df *DataFrame) Float64s(name string) ([]float64, []bool, error) {
	col, ok := df.Column(name)
	if !ok {
		return nil, nil, errors.NewColumnNotFoundError("Float64s", name)
	}

	switch typed := col.(type) {
	case *series.Series[float64]:
		return typed.Values(), typed.Valid(), nil
	case *series.Series[int64]:
		ints := typed.Values()
		values := make([]float64, len(ints))
		for i, v := range ints {
			values[i] = float64(v)
		}
		return values, typed.Valid(), nil
	default:
		return nil, nil, errors.NewUnsupportedTypeError("Float64s", name, col.DataType().String())
	}
}

// Strings returns any column rendered as text plus its validity mask.
func (df *DataFrame) Strings(name string) ([]string, []bool, error) {
	col, ok := df.Column(name)
	if !ok {
		return nil, nil, errors.NewColumnNotFoundError("Strings", name)
	}

	values := make([]string, col.Len())
	valid := make([]bool, col.Len())
	for i := range values {
		if col.IsNull(i) {
			continue
		}
		values[i] = col.GetAsString(i)
		valid[i] = true
	}
	return values, valid, nil
}

// Dates returns a date column plus its validity mask.
func (df *DataFrame) Dates(name string) ([]time.Time, []bool, error) {
	col, ok := df.Column(name)
	if !ok {
		return nil, nil, errors.NewColumnNotFoundError("Dates", name)
	}

	typed, ok := col.(*series.Series[time.Time])
	if !ok {
		return nil, nil, errors.NewUnsupportedTypeError("Dates", name, col.DataType().String())
	}
	return typed.Values(), typed.Valid(), nil
}

// Int64s returns an integer column plus its validity mask.
func (df *DataFrame) Int64s(name string) ([]int64, []bool, error) {
	col, ok := df.Column(name)
	if !ok {
		return nil, nil, errors.NewColumnNotFoundError("Int64s", name)
	}

	typed, ok := col.(*series.Series[int64])
	if !ok {
		return nil, nil, errors.NewUnsupportedTypeError("Int64s", name, col.DataType().String())
	}
	return typed.Values(), typed.Valid(), nil
}
