package store

import (
	"database/sql"
	"time"
)

// scanRows converts sql.Rows into Row values, byte slices decoded to
// strings and timestamps left as time.Time.
func scanRows(rows *sql.Rows, idColumns []string) ([]*Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []*Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := NewRow(idColumns)
		for i, name := range columns {
			row.cols[name] = normalizeValue(values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// normalizeValue converts driver values into the types the pipeline
// expects.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val
	default:
		return val
	}
}
