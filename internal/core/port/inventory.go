// Package port file: internal/core/port/inventory.go
package port

import "context"

// MatchKind 表示单个过滤条件的匹配方式
type MatchKind string

const (
	MatchExact    MatchKind = "exact"
	MatchContains MatchKind = "contains"
	MatchPrefix   MatchKind = "prefix"
)

// Filter 是一个已解析的过滤条件，字段名使用现代 API 词汇（JSON 名）。
type Filter struct {
	Field string
	Match MatchKind
	Value string
}

// ListRequest 描述一次列表查询：过滤、排序与分页
type ListRequest struct {
	Filters []Filter
	SortBy  string // JSON 字段名，空则用实体默认排序
	Desc    bool
	Page    int
	Size    int
}

// Page 是统一的分页响应信封
type Page struct {
	Data  []map[string]any `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

// Inventory 定义了只读库存查询服务的能力。
type Inventory interface {
	// List 按实体名执行过滤/排序/分页查询
	List(ctx context.Context, entity string, req ListRequest) (*Page, error)

	// Get 按主标识符取单条记录；未找到返回 ErrEntityNotFound
	Get(ctx context.Context, entity string, id string) (map[string]any, error)
}
