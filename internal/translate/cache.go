// Package translate file: internal/translate/cache.go
package translate

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// 翻译输出文本只取决于 (方言, 规范文本, limit 值, offset 值)，
// 绑定值本身不影响文本——因此可以安全地按这四元组做记忆化。
// 绑定列表的过滤与命名每次重算（开销可忽略，且保持纯函数语义）。

// Cache 是翻译结果的有界 LRU 记忆层
type Cache struct {
	texts *lru.Cache[string, string]
}

// NewCache 创建记忆层；size 为缓存条目上限。
func NewCache(size int) (*Cache, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Cache{texts: c}, nil
}

// Oracle 等价于 ToOracle，命中时跳过文本改写
func (c *Cache) Oracle(text string, binds []any) (string, []any) {
	key := cacheKey("ora", text, binds)
	if cached, ok := c.texts.Get(key); ok {
		return cached, filteredBinds(text, binds)
	}
	out, outBinds := ToOracle(text, binds)
	c.texts.Add(key, out)
	return out, outBinds
}

// SQLServer 等价于 ToSQLServer，命中时跳过文本改写
func (c *Cache) SQLServer(text string, binds []any) (string, []any) {
	key := cacheKey("mss", text, binds)
	if cached, ok := c.texts.Get(key); ok {
		positional := filteredBinds(text, binds)
		named := make([]any, len(positional))
		for i, v := range positional {
			named[i] = namedArg(i+1, v)
		}
		return cached, named
	}
	out, outBinds := ToSQLServer(text, binds)
	c.texts.Add(key, out)
	return out, outBinds
}

// cacheKey 把方言、文本与分页字面量拼为键
func cacheKey(dialect, text string, binds []any) string {
	var sb strings.Builder
	sb.WriteString(dialect)
	sb.WriteByte(0x1f)
	sb.WriteString(text)
	if _, pc, ok := extractPagination(text, binds); ok {
		sb.WriteByte(0x1f)
		sb.WriteString(strconv.Itoa(pc.limit))
		sb.WriteByte(0x1f)
		sb.WriteString(strconv.Itoa(pc.offset))
	}
	return sb.String()
}

// filteredBinds 在缓存命中路径上重做绑定过滤（位置来自规范文本，稳定）
func filteredBinds(text string, binds []any) []any {
	if _, pc, ok := extractPagination(text, binds); ok {
		return dropBinds(binds, pc.limitIdx, pc.offsetIdx)
	}
	out := make([]any, len(binds))
	copy(out, binds)
	return out
}
