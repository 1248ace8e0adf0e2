// Package translate file: internal/translate/translate.go
//
// 方言翻译层：调用方只书写一种"规范查询"（Postgres 风格——$n 占位符、
// ILIKE 大小写不敏感匹配、LIMIT $i OFFSET $j 分页），由本包改写为
// 目标方言可以直接执行的文本与绑定列表。
//
// 改写顺序约定（避免下标漂移）：
//  1. 先从规范文本提取分页子句引用的绑定位置（规范编号稳定可重复读取）；
//  2. 按位置读出 limit/offset 实时值并从绑定列表移除这两个值，其余保持相对顺序；
//  3. 再做 ILIKE 改写与方言词法替换（纯文本变换，互不影响）；
//  4. 最后统一重编号并替换占位符语法；
//  5. 分页包装使用字面量而非绑定。
//
// 翻译是纯函数：相同输入得到逐字节相同的输出。对格式不合法的规范文本
// 不做防御校验（属调用方契约违约），错误由下游驱动在执行期暴露。
package translate

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// paginationRe 匹配规范分页子句（必须位于语句末尾）：LIMIT $i OFFSET $j
	paginationRe = regexp.MustCompile(`(?i)\s+LIMIT\s+\$(\d+)\s+OFFSET\s+\$(\d+)\s*$`)

	// placeholderRe 锚定 '$' 前缀，不会误伤普通数字
	placeholderRe = regexp.MustCompile(`\$(\d+)`)

	// ilikeRe 的操作数是单个非空白 token（列引用或占位符）
	ilikeRe = regexp.MustCompile(`(\S+)\s+ILIKE\s+(\S+)`)
)

// pageClause 是从规范文本中提取出的分页信息
type pageClause struct {
	limitIdx  int // 1-based 规范绑定位置
	offsetIdx int
	limit     int // 实时值
	offset    int
}

// extractPagination 从规范文本提取分页子句。返回去掉子句后的文本主体。
// 无分页子句时 ok=false，文本原样返回。
func extractPagination(text string, binds []any) (body string, pc pageClause, ok bool) {
	m := paginationRe.FindStringSubmatchIndex(text)
	if m == nil {
		return text, pageClause{}, false
	}
	limitIdx, _ := strconv.Atoi(text[m[2]:m[3]])
	offsetIdx, _ := strconv.Atoi(text[m[4]:m[5]])
	pc = pageClause{
		limitIdx:  limitIdx,
		offsetIdx: offsetIdx,
		limit:     bindInt(binds, limitIdx),
		offset:    bindInt(binds, offsetIdx),
	}
	return text[:m[0]], pc, true
}

// bindInt 按 1-based 位置读取绑定列表中的整数值
func bindInt(binds []any, pos int) int {
	if pos < 1 || pos > len(binds) {
		return 0
	}
	switch v := binds[pos-1].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// dropBinds 移除两个被消费的分页绑定值，保持其余值的相对顺序
func dropBinds(binds []any, pos1, pos2 int) []any {
	out := make([]any, 0, len(binds))
	for i, v := range binds {
		p := i + 1
		if p == pos1 || p == pos2 {
			continue
		}
		out = append(out, v)
	}
	return out
}

// renumberPlaceholders 收集主体文本中剩余的规范占位符，按原始编号升序
// 重新编为 1..k，再以目标方言前缀一次性替换。
func renumberPlaceholders(body, prefix string) string {
	seen := map[int]struct{}{}
	for _, m := range placeholderRe.FindAllStringSubmatch(body, -1) {
		n, _ := strconv.Atoi(m[1])
		seen[n] = struct{}{}
	}
	olds := make([]int, 0, len(seen))
	for n := range seen {
		olds = append(olds, n)
	}
	sort.Ints(olds)
	mapping := make(map[int]int, len(olds))
	for i, n := range olds {
		mapping[n] = i + 1
	}
	return placeholderRe.ReplaceAllStringFunc(body, func(tok string) string {
		n, _ := strconv.Atoi(tok[1:])
		return prefix + strconv.Itoa(mapping[n])
	})
}

// rewriteILIKE 对每处 `<tok> ILIKE <tok>` 独立改写。
// wrap 为真时两侧操作数包一层 UPPER()（遗留方言无大小写不敏感排序规则）；
// 为假时仅把操作符降级为 LIKE（企业方言默认排序规则即不区分大小写）。
func rewriteILIKE(body string, wrap bool) string {
	return ilikeRe.ReplaceAllStringFunc(body, func(expr string) string {
		sub := ilikeRe.FindStringSubmatch(expr)
		if wrap {
			return fmt.Sprintf("UPPER(%s) LIKE UPPER(%s)", sub[1], sub[2])
		}
		return sub[1] + " LIKE " + sub[2]
	})
}

// trimTrailingSpace 收尾：分页子句剥离后可能残留行尾空白
func trimTrailingSpace(s string) string {
	return strings.TrimRight(s, " \t\n")
}
