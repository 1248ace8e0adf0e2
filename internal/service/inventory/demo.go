// Package inventory file: internal/service/inventory/demo.go
package inventory

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"AquaBridge/internal/core/domain"
	"AquaBridge/internal/core/port"
)

//go:embed demo_data.json
var demoRaw []byte

// demoDebounce 文件事件防抖窗口，避免编辑器多次写入触发重复加载
const demoDebounce = 500 * time.Millisecond

// DemoStore 是演示模式的内存数据集：内置样例数据随二进制发布，
// 也可以指定外部 JSON 文件覆盖，文件变更时热加载。
// 数据按实体名分组，行键为现代 API 字段名（JSON 名）。
type DemoStore struct {
	mu   sync.RWMutex
	data map[string][]map[string]any

	watcher   *fsnotify.Watcher
	timerMu   sync.Mutex
	timer     *time.Timer
	closeOnce sync.Once
}

// NewDemoStore 加载内置样例集；path 非空时改用该文件并监视其变更。
func NewDemoStore(path string) (*DemoStore, error) {
	s := &DemoStore{}
	if err := s.loadBytes(demoRaw); err != nil {
		return nil, fmt.Errorf("内置演示数据损坏: %w", err)
	}

	if path == "" {
		return s, nil
	}

	if err := s.loadFile(path); err != nil {
		return nil, err
	}
	if err := s.startWatcher(path); err != nil {
		slog.Warn("演示数据文件监视器启动失败，热加载不可用",
			"path", path, "error", err)
	}
	return s, nil
}

// loadBytes 解析并替换整个数据集，原子切换。
func (s *DemoStore) loadBytes(raw []byte) error {
	var parsed map[string][]map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("解析演示数据失败: %w", err)
	}
	s.mu.Lock()
	s.data = parsed
	s.mu.Unlock()
	return nil
}

func (s *DemoStore) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取演示数据文件 '%s' 失败: %w", path, err)
	}
	if err := s.loadBytes(raw); err != nil {
		return fmt.Errorf("演示数据文件 '%s' 无效: %w", path, err)
	}
	slog.Info("演示数据已加载", "path", path)
	return nil
}

// startWatcher 监视数据文件所在目录（监视文件本身在改名写入时会失效）。
func (s *DemoStore) startWatcher(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建 fsnotify watcher 失败: %w", err)
	}
	s.watcher = watcher

	target := filepath.Clean(path)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				s.debounceReload(target)
			case errWatch, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("演示数据监视器报告错误", "error", errWatch)
			}
		}
	}()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		s.watcher = nil
		return fmt.Errorf("添加监视目录失败: %w", err)
	}
	return nil
}

// debounceReload 防抖后重载文件；解析失败时保留旧数据集。
func (s *DemoStore) debounceReload(path string) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(demoDebounce, func() {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			slog.Warn("演示数据文件已被移除，继续使用内存中的数据集", "path", path)
			return
		}
		if err := s.loadFile(path); err != nil {
			slog.Error("演示数据热加载失败，继续使用旧数据集", "path", path, "error", err)
		}
	})
}

// Close 停止文件监视。幂等。
func (s *DemoStore) Close() {
	s.closeOnce.Do(func() {
		if s.watcher != nil {
			_ = s.watcher.Close()
		}
	})
}

// List 在内存数据集上完成过滤、排序与分页，语义与 SQL 路径一致。
func (s *DemoStore) List(e *domain.Entity, req port.ListRequest) (*port.Page, error) {
	s.mu.RLock()
	rows := s.data[e.Name]
	s.mu.RUnlock()

	matched := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		ok, err := matchRow(e, row, req.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, row)
		}
	}

	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = e.DefaultSort
	}
	if f := e.FieldByJSONName(sortBy); f == nil || !f.Sortable {
		return nil, fmt.Errorf("%w: 不可排序的字段 '%s'", port.ErrUnknownField, sortBy)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		less := compareValues(matched[i][sortBy], matched[j][sortBy])
		if req.Desc {
			return !less
		}
		return less
	})

	total := int64(len(matched))
	start := (req.Page - 1) * req.Size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + req.Size
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]map[string]any, 0, end-start)
	page = append(page, matched[start:end]...)
	return &port.Page{Data: page, Total: total, Page: req.Page, Size: req.Size}, nil
}

// Get 按主标识符取单条；未命中返回 port.ErrEntityNotFound。
func (s *DemoStore) Get(e *domain.Entity, id string) (map[string]any, error) {
	s.mu.RLock()
	rows := s.data[e.Name]
	s.mu.RUnlock()

	for _, row := range rows {
		if strings.EqualFold(valueString(row[e.IDField]), id) {
			return row, nil
		}
	}
	return nil, port.ErrEntityNotFound
}

// matchRow 对单行应用全部过滤条件（AND 语义，大小写不敏感）。
func matchRow(e *domain.Entity, row map[string]any, filters []port.Filter) (bool, error) {
	for _, flt := range filters {
		f := e.FieldByJSONName(flt.Field)
		if f == nil || !f.Filterable {
			return false, fmt.Errorf("%w: '%s'", port.ErrUnknownField, flt.Field)
		}
		have := strings.ToLower(valueString(row[flt.Field]))
		want := strings.ToLower(flt.Value)
		switch flt.Match {
		case port.MatchExact:
			if have != want {
				return false, nil
			}
		case port.MatchContains:
			if !f.Pattern {
				return false, fmt.Errorf("%w: '%s' 不支持模糊匹配", port.ErrUnknownField, flt.Field)
			}
			if !strings.Contains(have, want) {
				return false, nil
			}
		case port.MatchPrefix:
			if !f.Pattern {
				return false, fmt.Errorf("%w: '%s' 不支持模糊匹配", port.ErrUnknownField, flt.Field)
			}
			if !strings.HasPrefix(have, want) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("无效的匹配方式: %s", flt.Match)
		}
	}
	return true, nil
}

// compareValues 数值间按数值比较，其余统一按字符串比较。
// JSON 解析出的数字是 float64，样例数据里也可能以字符串形式出现。
func compareValues(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	return valueString(a) < valueString(b)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func valueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
