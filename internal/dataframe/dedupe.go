package dataframe

import (
	"strconv"
	"strings"
)

// DropDuplicates removes rows that equal an earlier row in every column,
// keeping the first occurrence. It returns the deduplicated frame and the
// number of rows removed.
func (df *DataFrame) DropDuplicates() (*DataFrame, int, error) {
	rows := df.Len()
	index := newHashIndex(rows)
	keep := make([]int, 0, rows)

	for i := range rows {
		if index.add(df.rowKey(i), i) {
			keep = append(keep, i)
		}
	}

	if len(keep) == rows {
		return df, 0, nil
	}

	deduped, err := df.take(keep)
	if err != nil {
		return nil, 0, err
	}
	return deduped, rows - len(keep), nil
}

// rowKey renders row i as a single comparable string. Each cell is written
// as a null marker or as its byte length followed by its text, so no two
// distinct rows share a key whatever characters the cells contain.
func (df *DataFrame) rowKey(i int) string {
	var sb strings.Builder
	for _, name := range df.order {
		col := df.columns[name]
		if col.IsNull(i) {
			sb.WriteByte('-')
			continue
		}
		text := col.GetAsString(i)
		sb.WriteString(strconv.Itoa(len(text)))
		sb.WriteByte(':')
		sb.WriteString(text)
	}
	return sb.String()
}
