package io_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/retail-eda/internal/dataframe"
	"github.com/paveg/retail-eda/internal/errors"
	"github.com/paveg/retail-eda/internal/io"
	"github.com/paveg/retail-eda/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

func TestCSVReader(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("reads simple CSV with headers", func(t *testing.T) {
		csvData := `Order ID,Quantity,Sales
CA-1,2,261.96
CA-2,3,731.94`

		reader := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), mem)
		df, err := reader.Read()
		require.NoError(t, err)

		assert.Equal(t, 2, df.Len())
		assert.Equal(t, []string{"Order ID", "Quantity", "Sales"}, df.Columns())

		idCol, exists := df.Column("Order ID")
		require.True(t, exists)
		assert.Equal(t, arrow.BinaryTypes.String, idCol.DataType())

		qtyCol, exists := df.Column("Quantity")
		require.True(t, exists)
		qtyArray := qtyCol.Array()
		defer qtyArray.Release()
		assert.Equal(t, int64(3), qtyArray.(*array.Int64).Value(1))

		salesCol, exists := df.Column("Sales")
		require.True(t, exists)
		salesArray := salesCol.Array()
		defer salesArray.Release()
		assert.InDelta(t, 261.96, salesArray.(*array.Float64).Value(0), 1e-9)
	})

	t.Run("reads CSV without headers", func(t *testing.T) {
		options := io.DefaultCSVOptions()
		options.Header = false

		df, err := io.NewCSVReader(strings.NewReader("a,1\nb,2"), options, mem).Read()
		require.NoError(t, err)
		assert.Equal(t, []string{"column_0", "column_1"}, df.Columns())
	})

	t.Run("reads CSV with custom delimiter", func(t *testing.T) {
		options := io.DefaultCSVOptions()
		options.Delimiter = ';'

		df, err := io.NewCSVReader(strings.NewReader("Region;Sales\nWest;10"), options, mem).Read()
		require.NoError(t, err)
		assert.Equal(t, []string{"Region", "Sales"}, df.Columns())
	})

	t.Run("empty cells and null markers become nulls", func(t *testing.T) {
		csvData := `Region,Discount,Ship Mode
West,0.2,
,NA,First Class
East,,Second Class`

		df, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)

		counts := df.NullCounts()
		assert.Equal(t, []dataframe.ColumnCount{
			{Column: "Region", Count: 1},
			{Column: "Discount", Count: 2},
			{Column: "Ship Mode", Count: 1},
		}, counts)

		discount, valid, err := df.Float64s("Discount")
		require.NoError(t, err)
		assert.Equal(t, []bool{true, false, false}, valid)
		assert.InDelta(t, 0.2, discount[0], 1e-9)
	})

	t.Run("infers bool int float and string", func(t *testing.T) {
		csvData := `flag,count,ratio,label
true,1,1.5,a
FALSE,2,2,b`

		df, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)

		expected := map[string]arrow.DataType{
			"flag":  arrow.FixedWidthTypes.Boolean,
			"count": arrow.PrimitiveTypes.Int64,
			"ratio": arrow.PrimitiveTypes.Float64,
			"label": arrow.BinaryTypes.String,
		}
		for name, dt := range expected {
			col, ok := df.Column(name)
			require.True(t, ok)
			assert.Equal(t, dt, col.DataType(), name)
		}
	})

	t.Run("all-null column is text", func(t *testing.T) {
		df, err := io.NewCSVReader(strings.NewReader("a,b\n1,\n2,"), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)
		col, ok := df.Column("b")
		require.True(t, ok)
		assert.Equal(t, arrow.BinaryTypes.String, col.DataType())
		assert.Equal(t, 2, col.NullCount())
	})

	t.Run("decodes latin1", func(t *testing.T) {
		raw := []byte("City,Sales\nMontr\xe9al,10\n")
		options := io.DefaultCSVOptions()
		options.Encoding = "latin1"

		df, err := io.NewCSVReader(bytes.NewReader(raw), options, mem).Read()
		require.NoError(t, err)

		cities, _, err := df.Strings("City")
		require.NoError(t, err)
		assert.Equal(t, []string{"Montréal"}, cities)
	})

	t.Run("rejects unknown encoding", func(t *testing.T) {
		options := io.DefaultCSVOptions()
		options.Encoding = "ebcdic"

		_, err := io.NewCSVReader(strings.NewReader("a\n1"), options, mem).Read()
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindValidation))
	})

	t.Run("handles empty input", func(t *testing.T) {
		df, err := io.NewCSVReader(strings.NewReader(""), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)
		assert.Equal(t, 0, df.Len())
		assert.Equal(t, 0, df.Width())
	})

	t.Run("rejects ragged rows", func(t *testing.T) {
		_, err := io.NewCSVReader(strings.NewReader("a,b\n1,2\n3"), io.DefaultCSVOptions(), mem).Read()
		assert.Error(t, err)
	})
}

func TestLookupEncoding(t *testing.T) {
	tests := []struct {
		name     string
		expected encoding.Encoding
		wantErr  bool
	}{
		{"", nil, false},
		{"utf8", nil, false},
		{"LATIN1", charmap.ISO8859_1, false},
		{" iso_8859_1 ", charmap.ISO8859_1, false},
		{"windows-1252", charmap.Windows1252, false},
		{"ebcdic", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := io.LookupEncoding(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, enc)
		})
	}
}

func TestReadCSVFile(t *testing.T) {
	t.Run("missing file is an IO error", func(t *testing.T) {
		_, err := io.ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv"), io.DefaultCSVOptions(), nil)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindIO))
	})

	t.Run("malformed file is a parse error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.csv")
		require.NoError(t, os.WriteFile(path, []byte("a,b\n\"unterminated,1\n"), 0o600))

		_, err := io.ReadCSVFile(path, io.DefaultCSVOptions(), nil)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindParse))
	})
}

func TestCSVWriter(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("writes header and rows with nulls as empty cells", func(t *testing.T) {
		region, err := series.NewWithNulls("Region", []string{"West", ""}, []bool{true, false}, mem)
		require.NoError(t, err)
		sales := series.New("Sales", []float64{1.5, 2}, mem)
		df := dataframe.New(region, sales)

		var buf bytes.Buffer
		require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))
		assert.Equal(t, "Region,Sales\nWest,1.5\n,2\n", buf.String())
	})

	t.Run("encodes latin1", func(t *testing.T) {
		df := dataframe.New(series.New("City", []string{"Montréal"}, mem))
		options := io.DefaultCSVOptions()
		options.Encoding = "latin1"

		var buf bytes.Buffer
		require.NoError(t, io.NewCSVWriter(&buf, options).Write(df))
		assert.Equal(t, []byte("City\nMontr\xe9al\n"), buf.Bytes())
	})

	t.Run("file round trip keeps values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		dates := series.New("Order Date", []string{"2017-11-08", "2016-06-12"}, mem)
		qty := series.New("Quantity", []int64{2, 7}, mem)
		df := dataframe.New(dates, qty)

		options := io.DefaultCSVOptions()
		options.Encoding = "latin1"
		require.NoError(t, io.WriteCSVFile(path, df, options))

		back, err := io.ReadCSVFile(path, options, mem)
		require.NoError(t, err)
		assert.Equal(t, df.Columns(), back.Columns())
		for i := range df.Len() {
			assert.Equal(t, df.Row(i), back.Row(i))
		}
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		require.NoError(t, os.WriteFile(path, []byte("stale content that is longer\n"), 0o600))

		df := dataframe.New(series.New("a", []int64{1}, mem))
		require.NoError(t, io.WriteCSVFile(path, df, io.DefaultCSVOptions()))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a\n1\n", string(content))
	})
}
