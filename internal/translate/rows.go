// Package translate file: internal/translate/rows.go
package translate

import "strings"

// NormalizeRows 把每行记录的键统一为小写，值保持不变。
// 企业方言与遗留方言的驱动返回的列名大小写不一（通常为全大写），
// 直通方言的驱动本来就是小写——因此该变换是幂等的，可无条件套用。
func NormalizeRows(rows []map[string]any) []map[string]any {
	if rows == nil {
		return nil
	}
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		nr := make(map[string]any, len(row))
		for k, v := range row {
			nr[strings.ToLower(k)] = v
		}
		out[i] = nr
	}
	return out
}
