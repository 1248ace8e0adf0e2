// Package backend file: internal/adapter/backend/scan.go
package backend

import "database/sql"

// scanRows 把 sql.Rows 扫描为通用的键值记录切片。
// 列名保持驱动返回的原样，由上层统一规整为小写。
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		scanDest := make([]any, len(cols))
		scanDestPtrs := make([]any, len(cols))
		for i := range scanDest {
			scanDestPtrs[i] = &scanDest[i]
		}
		if err := rows.Scan(scanDestPtrs...); err != nil {
			return nil, err
		}
		rowData := make(map[string]any, len(cols))
		for i, colName := range cols {
			if bytes, ok := scanDest[i].([]byte); ok {
				rowData[colName] = string(bytes)
			} else {
				rowData[colName] = scanDest[i]
			}
		}
		out = append(out, rowData)
	}
	return out, rows.Err()
}
