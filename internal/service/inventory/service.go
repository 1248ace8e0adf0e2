// Package inventory file: internal/service/inventory/service.go
package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"AquaBridge/internal/core/domain"
	"AquaBridge/internal/core/port"
)

// 分页约束：页码 1 起，页大小 1..maxPageSize，缺省 defaultPageSize。
const (
	defaultPageSize = 20
	maxPageSize     = 500

	// COUNT 结果缓存 TTL。遗留库是夜间批量同步的只读库，
	// 短暂的总数滞后可以接受，换来翻页时省掉一半查询。
	countCacheTTL = 30 * time.Second
)

// Service 实现 port.Inventory：把实体目录里的映射展开为规范查询，
// 交给后端执行，再把规整后的行翻译回现代 API 字段名。
type Service struct {
	backend port.Backend
	demo    *DemoStore
	counts  *cache.Cache
}

var _ port.Inventory = (*Service)(nil)

func NewService(backend port.Backend, demo *DemoStore) *Service {
	return &Service{
		backend: backend,
		demo:    demo,
		counts:  cache.New(countCacheTTL, 2*countCacheTTL),
	}
}

// List 执行带过滤、排序、分页的列表查询。
// 数据查询与总数查询并发执行，总数命中缓存时只剩一次往返。
func (s *Service) List(ctx context.Context, entity string, req port.ListRequest) (*port.Page, error) {
	e, ok := domain.Catalog[entity]
	if !ok {
		return nil, fmt.Errorf("%w: 未知实体 '%s'", port.ErrEntityNotFound, entity)
	}
	if err := normalizePaging(&req); err != nil {
		return nil, err
	}

	if s.backend.Mode() == port.ModeDemo {
		return s.demo.List(e, req)
	}

	dataSQL, dataBinds, countSQL, countBinds, err := buildListSQL(e, req)
	if err != nil {
		return nil, err
	}

	var (
		rows  []map[string]any
		total int64
	)
	g, queryCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, errExec := s.backend.Execute(queryCtx, dataSQL, dataBinds)
		if errExec != nil {
			return fmt.Errorf("数据查询失败: %w", errExec)
		}
		rows = raw
		return nil
	})

	g.Go(func() error {
		n, errCount := s.countWithCache(queryCtx, countSQL, countBinds)
		if errCount != nil {
			return fmt.Errorf("总数查询失败: %w", errCount)
		}
		total = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 后端在查询途中降级时两个查询都得到空集，这里自然给出空页；
	// 下一个请求会在入口处命中演示分支。
	return &port.Page{
		Data:  remapRows(e, rows),
		Total: total,
		Page:  req.Page,
		Size:  req.Size,
	}, nil
}

// Get 按主标识符取单条记录；未命中返回 port.ErrEntityNotFound。
func (s *Service) Get(ctx context.Context, entity string, id string) (map[string]any, error) {
	e, ok := domain.Catalog[entity]
	if !ok {
		return nil, fmt.Errorf("%w: 未知实体 '%s'", port.ErrEntityNotFound, entity)
	}

	if s.backend.Mode() == port.ModeDemo {
		return s.demo.Get(e, id)
	}

	text, binds := buildGetSQL(e, id)
	rows, err := s.backend.Execute(ctx, text, binds)
	if err != nil {
		return nil, fmt.Errorf("单条查询失败: %w", err)
	}
	if len(rows) == 0 {
		return nil, port.ErrEntityNotFound
	}
	return remapRow(e, rows[0]), nil
}

// countWithCache 先查缓存，未命中才打到后端。
// 键由 SQL 文本与绑定值共同构成，过滤条件不同互不串扰。
func (s *Service) countWithCache(ctx context.Context, countSQL string, binds []any) (int64, error) {
	key := countCacheKey(countSQL, binds)
	if v, found := s.counts.Get(key); found {
		return v.(int64), nil
	}

	rows, err := s.backend.Execute(ctx, countSQL, binds)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	total, err := totalFromRow(rows[0])
	if err != nil {
		return 0, err
	}
	s.counts.Set(key, total, cache.DefaultExpiration)
	return total, nil
}

func countCacheKey(countSQL string, binds []any) string {
	var sb strings.Builder
	sb.WriteString(countSQL)
	for _, b := range binds {
		sb.WriteByte(0x1f)
		fmt.Fprintf(&sb, "%v", b)
	}
	return sb.String()
}

// totalFromRow 从规整后的 COUNT 行里取 total 值。
// 不同驱动给出的类型各异：int64、字符串，甚至 float64。
func totalFromRow(row map[string]any) (int64, error) {
	v, ok := row["total"]
	if !ok {
		return 0, fmt.Errorf("COUNT 查询结果中缺少 total 列")
	}
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("无法解析 total 值 '%s': %w", x, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("无法识别的 total 类型 %T", v)
	}
}

// normalizePaging 应用分页缺省值并校验边界
func normalizePaging(req *port.ListRequest) error {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Size == 0 {
		req.Size = defaultPageSize
	}
	if req.Page < 1 || req.Size < 1 || req.Size > maxPageSize {
		return fmt.Errorf("%w: page=%d size=%d", port.ErrBadPagination, req.Page, req.Size)
	}
	return nil
}

// remapRows 把规整行（小写别名键）翻译为现代 API 字段名键。
// 实体目录之外的列直接丢弃，响应形状由目录唯一决定。
func remapRows(e *domain.Entity, rows []map[string]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = remapRow(e, row)
	}
	return out
}

func remapRow(e *domain.Entity, row map[string]any) map[string]any {
	out := make(map[string]any, len(e.Fields))
	for _, f := range e.Fields {
		if v, ok := row[f.Alias]; ok {
			out[f.JSONName] = v
		}
	}
	return out
}
