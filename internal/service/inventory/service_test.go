// Package inventory file: internal/service/inventory/service_test.go
package inventory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AquaBridge/internal/core/port"
)

// ---------------- 测试替身 ----------------

type executedQuery struct {
	text  string
	binds []any
}

// fakeBackend 记录每次 Execute 并按注入的函数应答。
// List 的数据/总数查询是并发的，记录要加锁。
type fakeBackend struct {
	mu      sync.Mutex
	mode    port.Mode
	queries []executedQuery
	respond func(text string, binds []any) ([]map[string]any, error)
}

func (f *fakeBackend) Execute(_ context.Context, text string, binds []any) ([]map[string]any, error) {
	f.mu.Lock()
	f.queries = append(f.queries, executedQuery{text: text, binds: binds})
	f.mu.Unlock()
	return f.respond(text, binds)
}

func (f *fakeBackend) Mode() port.Mode                      { return f.mode }
func (f *fakeBackend) HealthCheck(_ context.Context) error  { return nil }
func (f *fakeBackend) Close() error                         { return nil }

func (f *fakeBackend) countQueries(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.queries {
		if strings.HasPrefix(q.text, prefix) {
			n++
		}
	}
	return n
}

// respondSystems 模拟正常的 SQL 路径：COUNT 给 total，其余给一行规整数据
func respondSystems(total int64) func(string, []any) ([]map[string]any, error) {
	return func(text string, _ []any) ([]map[string]any, error) {
		if strings.HasPrefix(text, "SELECT COUNT") {
			return []map[string]any{{"total": total}}, nil
		}
		return []map[string]any{{
			"pws_id":                  "CA1010001",
			"pws_name":                "SPRINGFIELD MUNICIPAL WATER",
			"state_code":              "CA",
			"population_served_count": int64(48200),
		}}, nil
	}
}

func newTestService(t *testing.T, backend port.Backend) *Service {
	t.Helper()
	demo, err := NewDemoStore("")
	require.NoError(t, err)
	t.Cleanup(demo.Close)
	return NewService(backend, demo)
}

// ---------------- 用例 ----------------

func TestService_List_SQLPath(t *testing.T) {
	backend := &fakeBackend{mode: port.ModePostgres, respond: respondSystems(42)}
	svc := newTestService(t, backend)

	page, err := svc.List(context.Background(), "systems", port.ListRequest{
		Filters: []port.Filter{{Field: "stateCode", Match: port.MatchExact, Value: "CA"}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Size)
	require.Len(t, page.Data, 1)

	// 响应键是现代 API 字段名，别名键不外泄
	row := page.Data[0]
	assert.Equal(t, "CA1010001", row["pwsId"])
	assert.Equal(t, "SPRINGFIELD MUNICIPAL WATER", row["pwsName"])
	assert.NotContains(t, row, "pws_id")

	// 分页绑定在最后，缺省 size=20, offset=0
	backend.mu.Lock()
	defer backend.mu.Unlock()
	for _, q := range backend.queries {
		if !strings.HasPrefix(q.text, "SELECT COUNT") {
			n := len(q.binds)
			assert.Equal(t, 20, q.binds[n-2])
			assert.Equal(t, 0, q.binds[n-1])
		}
	}
}

func TestService_List_CountResultIsCached(t *testing.T) {
	backend := &fakeBackend{mode: port.ModePostgres, respond: respondSystems(7)}
	svc := newTestService(t, backend)

	req := port.ListRequest{
		Filters: []port.Filter{{Field: "stateCode", Match: port.MatchExact, Value: "CA"}},
	}
	for range 3 {
		page, err := svc.List(context.Background(), "systems", req)
		require.NoError(t, err)
		assert.Equal(t, int64(7), page.Total)
	}

	assert.Equal(t, 1, backend.countQueries("SELECT COUNT"),
		"相同过滤条件的 COUNT 应命中缓存")
	assert.Equal(t, 3, backend.countQueries("SELECT NUMBER0"))

	// 过滤条件不同则不共用缓存条目
	req.Filters[0].Value = "NV"
	_, err := svc.List(context.Background(), "systems", req)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.countQueries("SELECT COUNT"))
}

func TestService_List_DemoMode(t *testing.T) {
	backend := &fakeBackend{mode: port.ModeDemo, respond: func(string, []any) ([]map[string]any, error) {
		t.Fatal("演示模式不应触达后端")
		return nil, nil
	}}
	svc := newTestService(t, backend)

	page, err := svc.List(context.Background(), "systems", port.ListRequest{
		Filters: []port.Filter{{Field: "stateCode", Match: port.MatchExact, Value: "CA"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "CA1010001", page.Data[0]["pwsId"])
}

func TestService_List_UnknownEntity(t *testing.T) {
	svc := newTestService(t, &fakeBackend{mode: port.ModePostgres})

	_, err := svc.List(context.Background(), "reservoirs", port.ListRequest{})
	assert.True(t, errors.Is(err, port.ErrEntityNotFound))
}

func TestService_List_PaginationBounds(t *testing.T) {
	backend := &fakeBackend{mode: port.ModePostgres, respond: respondSystems(0)}
	svc := newTestService(t, backend)

	for _, req := range []port.ListRequest{
		{Page: -1},
		{Size: -5},
		{Size: maxPageSize + 1},
	} {
		_, err := svc.List(context.Background(), "systems", req)
		assert.True(t, errors.Is(err, port.ErrBadPagination), "请求 %+v 应被拒绝", req)
	}
}

func TestService_List_BackendErrorPropagates(t *testing.T) {
	boom := errors.New("连接中断")
	backend := &fakeBackend{mode: port.ModePostgres, respond: func(string, []any) ([]map[string]any, error) {
		return nil, boom
	}}
	svc := newTestService(t, backend)

	_, err := svc.List(context.Background(), "systems", port.ListRequest{})
	assert.True(t, errors.Is(err, boom))
}

func TestService_Get(t *testing.T) {
	backend := &fakeBackend{mode: port.ModePostgres, respond: respondSystems(1)}
	svc := newTestService(t, backend)

	row, err := svc.Get(context.Background(), "systems", "CA1010001")
	require.NoError(t, err)
	assert.Equal(t, "CA1010001", row["pwsId"])
	assert.NotContains(t, row, "pws_id")

	backend.mu.Lock()
	q := backend.queries[0]
	backend.mu.Unlock()
	assert.Contains(t, q.text, "WHERE NUMBER0 = $1")
	assert.Equal(t, []any{"CA1010001", 1, 0}, q.binds)
}

func TestService_Get_NotFound(t *testing.T) {
	backend := &fakeBackend{mode: port.ModePostgres, respond: func(string, []any) ([]map[string]any, error) {
		return []map[string]any{}, nil
	}}
	svc := newTestService(t, backend)

	_, err := svc.Get(context.Background(), "systems", "XX0000000")
	assert.True(t, errors.Is(err, port.ErrEntityNotFound))
}

func TestService_Get_DemoMode(t *testing.T) {
	svc := newTestService(t, &fakeBackend{mode: port.ModeDemo})

	row, err := svc.Get(context.Background(), "violations", "900003")
	require.NoError(t, err)
	assert.Equal(t, "NV2030015", row["pwsId"])
}
