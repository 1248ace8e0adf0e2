// Package translate file: internal/translate/sqlserver.go
package translate

import (
	"database/sql"
	"fmt"
)

// ToSQLServer 把规范查询改写为企业方言（@pN 命名绑定，OFFSET/FETCH 分页）。
// 返回改写后的文本与按名字键入的绑定列表（sql.Named，名字即 pN）。
//
// 注意：OFFSET/FETCH 要求语句带 ORDER BY，这是查询构建方的契约
// （构建器总是生成明确的 ORDER BY）。
func ToSQLServer(text string, binds []any) (string, []any) {
	body, pc, paged := extractPagination(text, binds)

	positional := binds
	if paged {
		positional = dropBinds(binds, pc.limitIdx, pc.offsetIdx)
	}

	body = rewriteILIKE(body, false)
	body = renumberPlaceholders(body, "@p")
	body = trimTrailingSpace(body)

	if paged {
		// 分页边界内联为字面量，两个被消费的绑定值已移除
		body = fmt.Sprintf("%s OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", body, pc.offset, pc.limit)
	}

	named := make([]any, len(positional))
	for i, v := range positional {
		named[i] = namedArg(i+1, v)
	}
	return body, named
}

// namedArg 生成 @pN 对应的命名绑定
func namedArg(i int, v any) any {
	return sql.Named(fmt.Sprintf("p%d", i), v)
}
