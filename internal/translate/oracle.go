// Package translate file: internal/translate/oracle.go
package translate

import (
	"fmt"
	"strings"
)

// oracleLexical 是遗留方言的词法替换清单：逐项枚举，不做通用 SQL 解析。
// 该方言的列别名不允许 AS 关键字。
var oracleLexical = [][2]string{
	{"COUNT(*) as total", "COUNT(*) total"},
	{"COUNT(*) AS total", "COUNT(*) total"},
}

// ToOracle 把规范查询改写为遗留方言（:n 绑定，ROWNUM 分页仿真）。
// 返回改写后的文本与过滤后的位置绑定列表。
func ToOracle(text string, binds []any) (string, []any) {
	body, pc, paged := extractPagination(text, binds)

	out := binds
	if paged {
		out = dropBinds(binds, pc.limitIdx, pc.offsetIdx)
	}

	body = rewriteILIKE(body, true)
	for _, sub := range oracleLexical {
		body = strings.ReplaceAll(body, sub[0], sub[1])
	}
	body = renumberPlaceholders(body, ":")
	body = trimTrailingSpace(body)

	if paged {
		// 内层子查询附加顺序行号，先卡上界 offset+limit，外层再卡下界 offset。
		// 两个边界都用计算出的字面量，不占用绑定位。
		body = fmt.Sprintf(
			"SELECT * FROM (SELECT aq_inner.*, ROWNUM rn FROM (%s) aq_inner WHERE ROWNUM <= %d) WHERE rn > %d",
			body, pc.offset+pc.limit, pc.offset,
		)
	}
	return body, out
}
