package io

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/paveg/retail-eda/internal/dataframe"
	"github.com/paveg/retail-eda/internal/errors"
)

// WriteParquetFile writes df to path, replacing any existing file.
func WriteParquetFile(path string, df *dataframe.DataFrame, options ParquetOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIOError("WriteParquet", path, err)
	}
	// the pqarrow writer closes f itself once it has been created
	defer func() {
		if closeErr := f.Close(); closeErr != nil && !stderrors.Is(closeErr, os.ErrClosed) && err == nil {
			err = errors.NewIOError("WriteParquet", path, closeErr)
		}
	}()

	if err := NewParquetWriter(f, options).Write(df); err != nil {
		return errors.NewIOError("WriteParquet", path, err)
	}
	return nil
}

// Write writes the DataFrame to Parquet format. When the destination is an
// io.Closer it is closed once the file footer has been written.
func (w *ParquetWriter) Write(df *dataframe.DataFrame) error {
	table, err := dataFrameToArrowTable(df)
	if err != nil {
		return fmt.Errorf("converting DataFrame to Arrow table: %w", err)
	}
	defer table.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compressionCodec(w.options.Compression)))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(memory.NewGoAllocator()))

	writer, err := pqarrow.NewFileWriter(table.Schema(), w.writer, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}

	rowGroupSize := int64(w.options.RowGroupSize)
	if rowGroupSize <= 0 {
		rowGroupSize = DefaultRowGroupSize
	}
	if err := writer.WriteTable(table, rowGroupSize); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing table: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing file writer: %w", err)
	}
	return nil
}

func compressionCodec(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Codecs.Gzip
	case "lz4":
		return compress.Codecs.Lz4Raw
	case "zstd":
		return compress.Codecs.Zstd
	case "uncompressed":
		return compress.Codecs.Uncompressed
	default:
		return compress.Codecs.Snappy
	}
}

// dataFrameToArrowTable wraps each column's Arrow array in a nullable field.
func dataFrameToArrowTable(df *dataframe.DataFrame) (arrow.Table, error) {
	names := df.Columns()
	fields := make([]arrow.Field, 0, len(names))
	arrays := make([]arrow.Array, 0, len(names))
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	for _, name := range names {
		col, _ := df.Column(name)
		arr := col.Array()
		if arr == nil {
			return nil, errors.NewInternalError("WriteParquet", fmt.Errorf("column %s has no data", name))
		}
		arrays = append(arrays, arr)
		fields = append(fields, arrow.Field{Name: name, Type: arr.DataType(), Nullable: true})
	}

	schema := arrow.NewSchema(fields, nil)
	record := array.NewRecord(schema, arrays, int64(df.Len()))
	defer record.Release()

	return array.NewTableFromRecords(schema, []arrow.Record{record}), nil
}
