package io

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/retail-eda/internal/dataframe"
	"github.com/paveg/retail-eda/internal/errors"
	"github.com/paveg/retail-eda/internal/series"
)

const (
	// Boolean string constants
	trueStr  = "true"
	falseStr = "false"

	boolType   = "bool"
	intType    = "int"
	floatType  = "float"
	stringType = "string"
)

// ReadCSVFile opens path and reads it as CSV. A missing or unreadable file is
// a KindIO error; malformed content is a KindParse error.
func ReadCSVFile(path string, options CSVOptions, mem memory.Allocator) (*dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError("ReadCSV", path, err)
	}
	defer f.Close()

	df, err := NewCSVReader(f, options, mem).Read()
	if err != nil {
		if errors.IsKind(err, errors.KindParse) || errors.IsKind(err, errors.KindValidation) {
			return nil, err
		}
		return nil, errors.NewParseError("ReadCSV", path, err)
	}
	return df, nil
}

// Read reads CSV data and returns a DataFrame
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	decoded, err := decodingReader(r.reader, r.options.Encoding)
	if err != nil {
		return nil, errors.NewInvalidInputError("ReadCSV", err.Error())
	}

	csvReader := csv.NewReader(decoded)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(records) == 0 {
		return dataframe.New(), nil
	}

	var headers []string
	dataRows := records

	if r.options.Header {
		headers = records[0]
		dataRows = records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
	}

	nulls := make(map[string]bool, len(r.options.NullValues)+1)
	nulls[""] = true
	for _, v := range r.options.NullValues {
		nulls[v] = true
	}

	var seriesList []dataframe.ISeries
	for i, header := range headers {
		cells := make([]string, len(dataRows))
		valid := make([]bool, len(dataRows))
		for j, row := range dataRows {
			cells[j] = row[i]
			valid[j] = !nulls[row[i]]
		}

		s, err := r.createSeriesFromStrings(header, cells, valid)
		if err != nil {
			return nil, fmt.Errorf("creating series for column %s: %w", header, err)
		}
		seriesList = append(seriesList, s)
	}

	return dataframe.New(seriesList...), nil
}

// createSeriesFromStrings creates a series from string data, inferring the appropriate type
func (r *CSVReader) createSeriesFromStrings(name string, data []string, valid []bool) (dataframe.ISeries, error) {
	switch r.inferDataType(data, valid) {
	case boolType:
		values := make([]bool, len(data))
		for i, value := range data {
			values[i] = valid[i] && strings.EqualFold(value, trueStr)
		}
		return series.NewWithNulls(name, values, valid, r.mem)
	case intType:
		values := make([]int64, len(data))
		for i, value := range data {
			if valid[i] {
				values[i], _ = strconv.ParseInt(value, 10, 64)
			}
		}
		return series.NewWithNulls(name, values, valid, r.mem)
	case floatType:
		values := make([]float64, len(data))
		for i, value := range data {
			if valid[i] {
				values[i], _ = strconv.ParseFloat(value, 64)
			}
		}
		return series.NewWithNulls(name, values, valid, r.mem)
	default:
		values := make([]string, len(data))
		for i, value := range data {
			if valid[i] {
				values[i] = value
			}
		}
		return series.NewWithNulls(name, values, valid, r.mem)
	}
}

// inferDataType determines the most specific type every non-null cell fits.
// A column with no values at all is text.
func (r *CSVReader) inferDataType(data []string, valid []bool) string {
	canBeInt := true
	canBeFloat := true
	canBeBool := true
	hasValue := false

	for i, value := range data {
		if !valid[i] {
			continue
		}
		hasValue = true

		if canBeBool {
			lower := strings.ToLower(value)
			if lower != trueStr && lower != falseStr {
				canBeBool = false
			}
		}

		if canBeInt {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				canBeInt = false
			}
		}

		if canBeFloat {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				canBeFloat = false
			}
		}

		if !canBeBool && !canBeInt && !canBeFloat {
			break
		}
	}

	switch {
	case !hasValue:
		return stringType
	case canBeBool:
		return boolType
	case canBeInt:
		return intType
	case canBeFloat:
		return floatType
	default:
		return stringType
	}
}

// WriteCSVFile writes df to path, replacing any existing file.
func WriteCSVFile(path string, df *dataframe.DataFrame, options CSVOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIOError("WriteCSV", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = errors.NewIOError("WriteCSV", path, closeErr)
		}
	}()

	if err := NewCSVWriter(f, options).Write(df); err != nil {
		return errors.NewIOError("WriteCSV", path, err)
	}
	return nil
}

// Write writes the DataFrame to CSV format. Nulls become empty cells.
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	out, err := encodingWriter(w.writer, w.options.Encoding)
	if err != nil {
		return errors.NewInvalidInputError("WriteCSV", err.Error())
	}

	csvWriter := csv.NewWriter(out)
	csvWriter.Comma = w.options.Delimiter

	if w.options.Header {
		if err := csvWriter.Write(df.Columns()); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	for i := range df.Len() {
		if err := csvWriter.Write(df.Row(i)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return out.Close()
}
