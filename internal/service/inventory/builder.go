// Package inventory file: internal/service/inventory/builder.go
package inventory

import (
	"fmt"
	"strings"

	"AquaBridge/internal/core/domain"
	"AquaBridge/internal/core/port"
)

// 构建器只产出一种"规范查询"：$n 占位符（1 起）、ILIKE 大小写不敏感
// 匹配、末尾 LIMIT $i OFFSET $j。方言差异全部交给 translate 层处理。
// ORDER BY 总是存在（企业方言的 OFFSET/FETCH 要求它）。

// buildListSQL 构建列表查询与配套的 COUNT 查询。
// 两者共享同一组 WHERE 绑定；分页绑定永远追加在最后两位。
func buildListSQL(e *domain.Entity, req port.ListRequest) (dataSQL string, dataBinds []any, countSQL string, countBinds []any, err error) {
	whereClause, whereBinds, err := buildWhereClause(e, req.Filters)
	if err != nil {
		return "", nil, "", nil, err
	}

	orderClause, err := buildOrderClause(e, req.SortBy, req.Desc)
	if err != nil {
		return "", nil, "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectClause(e))
	sb.WriteString(" FROM ")
	sb.WriteString(e.LegacyTable)
	if whereClause != "" {
		sb.WriteString(" ")
		sb.WriteString(whereClause)
	}
	sb.WriteString(" ")
	sb.WriteString(orderClause)
	n := len(whereBinds)
	sb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2))

	dataBinds = append(append([]any{}, whereBinds...), req.Size, (req.Page-1)*req.Size)

	var cb strings.Builder
	cb.WriteString("SELECT COUNT(*) as total FROM ")
	cb.WriteString(e.LegacyTable)
	if whereClause != "" {
		cb.WriteString(" ")
		cb.WriteString(whereClause)
	}

	return sb.String(), dataBinds, cb.String(), whereBinds, nil
}

// buildGetSQL 构建主标识符单条查询。统一走分页语法（LIMIT 1 OFFSET 0），
// 使单条查询与列表查询经过完全相同的翻译路径。
func buildGetSQL(e *domain.Entity, id string) (string, []any) {
	f := e.FieldByJSONName(e.IDField)
	orderClause, _ := buildOrderClause(e, "", false)

	text := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 %s LIMIT $2 OFFSET $3",
		selectClause(e), e.LegacyTable, f.LegacyColumn, orderClause)
	return text, []any{id, 1, 0}
}

// selectClause 按实体字段顺序生成 `遗留列 AS 别名` 列表
func selectClause(e *domain.Entity) string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.LegacyColumn + " AS " + f.Alias
	}
	return strings.Join(parts, ", ")
}

// buildWhereClause 把已解析的过滤条件转为规范 WHERE 子句。
// 条件之间固定为 AND；模糊匹配通过 ILIKE 表达，通配符在这里拼入绑定值。
func buildWhereClause(e *domain.Entity, filters []port.Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", []any{}, nil
	}

	conditions := make([]string, 0, len(filters))
	binds := make([]any, 0, len(filters))

	for _, flt := range filters {
		f := e.FieldByJSONName(flt.Field)
		if f == nil || !f.Filterable {
			return "", nil, fmt.Errorf("%w: '%s'", port.ErrUnknownField, flt.Field)
		}

		n := len(binds) + 1
		switch flt.Match {
		case port.MatchExact:
			conditions = append(conditions, fmt.Sprintf("%s = $%d", f.LegacyColumn, n))
			binds = append(binds, flt.Value)
		case port.MatchContains:
			if !f.Pattern {
				return "", nil, fmt.Errorf("%w: '%s' 不支持模糊匹配", port.ErrUnknownField, flt.Field)
			}
			conditions = append(conditions, fmt.Sprintf("%s ILIKE $%d", f.LegacyColumn, n))
			binds = append(binds, "%"+flt.Value+"%")
		case port.MatchPrefix:
			if !f.Pattern {
				return "", nil, fmt.Errorf("%w: '%s' 不支持模糊匹配", port.ErrUnknownField, flt.Field)
			}
			conditions = append(conditions, fmt.Sprintf("%s ILIKE $%d", f.LegacyColumn, n))
			binds = append(binds, flt.Value+"%")
		default:
			return "", nil, fmt.Errorf("无效的匹配方式: %s", flt.Match)
		}
	}

	return "WHERE " + strings.Join(conditions, " AND "), binds, nil
}

// buildOrderClause 生成 ORDER BY；sortBy 为空时用实体默认排序字段。
// 排序引用 SELECT 别名，三种方言均支持对输出别名排序。
func buildOrderClause(e *domain.Entity, sortBy string, desc bool) (string, error) {
	if sortBy == "" {
		sortBy = e.DefaultSort
	}
	f := e.FieldByJSONName(sortBy)
	if f == nil || !f.Sortable {
		return "", fmt.Errorf("%w: 不可排序的字段 '%s'", port.ErrUnknownField, sortBy)
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", f.Alias, dir), nil
}
