// Package io reads and writes the pipeline's tables.
//
// CSV is the primary format: the reader decodes the configured text encoding,
// infers a type per column and records empty cells as nulls; the writer emits
// the same encoding back. A Parquet writer produces an optional typed copy of
// the feature table.
package io

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/retail-eda/internal/dataframe"
)

// DefaultRowGroupSize is the number of rows per Parquet row group.
const DefaultRowGroupSize = 64 * 1024

// TableReader produces a whole table from its source.
type TableReader interface {
	Read() (*dataframe.DataFrame, error)
}

// TableWriter stores a whole table.
type TableWriter interface {
	Write(df *dataframe.DataFrame) error
}

var (
	_ TableReader = (*CSVReader)(nil)
	_ TableWriter = (*CSVWriter)(nil)
	_ TableWriter = (*ParquetWriter)(nil)
)

// CSVOptions controls how delimited text is read and written.
type CSVOptions struct {
	Delimiter        rune
	Comment          rune // 0 disables comment lines
	Header           bool
	SkipInitialSpace bool
	// Encoding is utf-8, latin1 (iso-8859-1) or windows-1252.
	Encoding string
	// NullValues are cell texts read as null, in addition to the empty cell.
	NullValues []string
}

// DefaultCSVOptions reads comma-separated UTF-8 with a header row.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:  ',',
		Header:     true,
		Encoding:   "utf-8",
		NullValues: []string{"NA", "N/A", "NaN", "nan", "null", "NULL"},
	}
}

// CSVReader builds a DataFrame from delimited text.
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
	mem     memory.Allocator
}

// NewCSVReader returns a reader over r. A nil allocator uses the Go allocator.
func NewCSVReader(r io.Reader, options CSVOptions, mem memory.Allocator) *CSVReader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &CSVReader{reader: r, options: options, mem: mem}
}

// CSVWriter renders a DataFrame as delimited text.
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter returns a writer to w.
func NewCSVWriter(w io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{writer: w, options: options}
}

// ParquetOptions controls the Parquet copy of the feature table.
type ParquetOptions struct {
	// Compression is snappy, gzip, lz4, zstd or uncompressed.
	Compression  string
	RowGroupSize int
}

// DefaultParquetOptions writes snappy-compressed row groups.
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression:  "snappy",
		RowGroupSize: DefaultRowGroupSize,
	}
}

// ParquetWriter writes a DataFrame as a Parquet file.
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
}

// NewParquetWriter returns a writer to w.
func NewParquetWriter(w io.Writer, options ParquetOptions) *ParquetWriter {
	return &ParquetWriter{writer: w, options: options}
}
