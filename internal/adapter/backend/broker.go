// Package backend — 后端连接与模式生命周期
// internal/adapter/backend/broker.go
//
// Broker 在进程启动时按选定模式异步建立唯一的连接池，并实现规范的
// 状态机：initializing(mode) → ready(mode) / demo；ready(postgres)
// 在连接后的活性探针失败时同样降级为 demo。降级是单向且至多一次的，
// 任何状态都不会回到 initializing 或切换到另一个 ready 模式。
//
// 每个查询入口在非 demo 选型下都必须等待挂起的初始化完成，然后重新
// 读取模式——若期间已降级为 demo，返回空结果集而不是去碰一个不存在
// 的连接池。并发竞争启动的调用方只会观察到"完全就绪的池"或"demo"，
// 不存在半初始化状态。
package backend

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"AquaBridge/internal/aquaobserve"
	"AquaBridge/internal/core/port"
	"AquaBridge/internal/translate"

	_ "github.com/jackc/pgx/v5/stdlib"    // 直通方言驱动 "pgx"
	_ "github.com/microsoft/go-mssqldb"   // 企业方言驱动 "sqlserver"
	_ "github.com/sijms/go-ora/v2"        // 遗留方言驱动 "oracle"
)

// 断言 *Broker 实现 port.Backend 接口，编译期校验
var _ port.Backend = (*Broker)(nil)

const (
	translationCacheSize = 256
	maxOpenConns         = 8
	maxIdleConns         = 2
)

// Options 控制 Broker 的启动行为
type Options struct {
	Mode       port.Mode
	DriverName string
	DSN        string

	// Opener 供测试注入连接池构造；为 nil 时使用 sql.Open。
	Opener func(driverName, dsn string) (*sql.DB, error)

	// DisableProbe 关闭直通方言的连接后活性探针（测试用）
	DisableProbe bool
}

// Broker 持有当前模式与连接池，是 port.Backend 的唯一生产实现。
type Broker struct {
	mu    sync.RWMutex
	mode  port.Mode
	db    *sql.DB
	ready chan struct{} // 初始化完成后关闭（无论成败）

	cache *translate.Cache
}

// New 创建 Broker。demo 选型立即就绪；其余模式异步建连。
func New(opts Options) *Broker {
	cache, err := translate.NewCache(translationCacheSize)
	if err != nil {
		// 只有 size<=0 会失败，这里是常量
		panic(err)
	}

	b := &Broker{
		mode:  opts.Mode,
		ready: make(chan struct{}),
		cache: cache,
	}

	if opts.Mode == port.ModeDemo {
		close(b.ready)
		return b
	}

	go b.connect(opts)
	return b
}

// connect 执行一次性的启动建连，成败均会放行等待中的查询。
func (b *Broker) connect(opts Options) {
	defer close(b.ready)

	opener := opts.Opener
	if opener == nil {
		opener = sql.Open
	}

	db, err := opener(opts.DriverName, opts.DSN)
	if err == nil {
		err = db.Ping()
	}
	if err != nil {
		slog.Warn("后端建连失败，降级为 demo 模式（服务继续以空结果运行）",
			"mode", string(opts.Mode), "error", err)
		if db != nil {
			_ = db.Close()
		}
		b.demote()
		return
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	b.mu.Lock()
	b.db = db
	b.mu.Unlock()
	slog.Info("后端连接池就绪", "mode", string(opts.Mode))

	if opts.Mode == port.ModePostgres && !opts.DisableProbe {
		go b.probe()
	}
}

// probe 是直通方言的连接后活性探针：一条最小查询，失败即降级。
func (b *Broker) probe() {
	b.mu.RLock()
	db := b.db
	b.mu.RUnlock()
	if db == nil {
		return
	}
	var one int
	if err := db.QueryRow("SELECT 1").Scan(&one); err != nil {
		slog.Warn("活性探针失败，降级为 demo 模式", "error", err)
		b.demote()
	}
}

// demote 单向降级为 demo；关闭已有连接池（若存在）。
func (b *Broker) demote() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mode == port.ModeDemo {
		return
	}
	b.mode = port.ModeDemo
	if b.db != nil {
		_ = b.db.Close()
		b.db = nil
	}
	aquaobserve.ModeDemoted.Inc()
}

// Mode 返回当前后端状态（启动期间返回选型值，降级后返回 demo）。
func (b *Broker) Mode() port.Mode {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mode
}

// HealthCheck 检查后端健康状况。demo 模式视为健康（降级但可用）。
func (b *Broker) HealthCheck(ctx context.Context) error {
	select {
	case <-b.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	b.mu.RLock()
	mode, db := b.mode, b.db
	b.mu.RUnlock()
	if mode == port.ModeDemo || db == nil {
		return nil
	}
	return db.PingContext(ctx)
}

// Close 释放连接池
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		return err
	}
	return nil
}

// Execute 执行一条规范查询：等待初始化 → 复查模式 → 按方言翻译并执行 →
// 行键规整。执行期错误原样上抛，不重试。
func (b *Broker) Execute(ctx context.Context, text string, binds []any) ([]map[string]any, error) {
	select {
	case <-b.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	b.mu.RLock()
	mode, db := b.mode, b.db
	b.mu.RUnlock()

	if mode == port.ModeDemo || db == nil {
		return []map[string]any{}, nil
	}

	aquaobserve.QueryTotal.WithLabelValues(string(mode)).Inc()

	rows, err := b.query(ctx, mode, db, text, binds)
	if err != nil {
		aquaobserve.QueryFail.WithLabelValues(string(mode)).Inc()
		return nil, err
	}
	// 两个非直通方言的驱动返回非小写列名；直通方言天然小写，规整是幂等的
	return translate.NormalizeRows(rows), nil
}

// query 按方言分派翻译与执行
func (b *Broker) query(ctx context.Context, mode port.Mode, db *sql.DB, text string, binds []any) ([]map[string]any, error) {
	switch mode {
	case port.ModeSQLServer:
		q, args := b.cache.SQLServer(text, binds)
		rows, err := db.QueryContext(ctx, q, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanRows(rows)

	case port.ModeOracle:
		// 遗留方言按调用申请独占连接，任何退出路径都归还
		q, args := b.cache.Oracle(text, binds)
		conn, err := db.Conn(ctx)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		rows, err := conn.QueryContext(ctx, q, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanRows(rows)

	default: // 直通方言：规范语法即原生语法
		rows, err := db.QueryContext(ctx, text, binds...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanRows(rows)
	}
}
