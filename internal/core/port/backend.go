// Package port file: internal/core/port/backend.go
package port

import (
	"context"
	"errors"
)

// Mode 表示当前进程所选定的后端方言。
// 进程启动时确定一次，之后只允许单向降级为 ModeDemo。
type Mode string

const (
	// ModeDemo 无后端的演示模式：execute 永远返回空结果集
	ModeDemo Mode = "demo"
	// ModePostgres Postgres 系方言（规范方言，直通执行）
	ModePostgres Mode = "postgres"
	// ModeSQLServer 企业方言（OFFSET/FETCH 分页，@pN 命名绑定）
	ModeSQLServer Mode = "sqlserver"
	// ModeOracle 遗留方言（ROWNUM 分页仿真，:n 绑定）
	ModeOracle Mode = "oracle"
)

// Standard errors
var (
	ErrEntityNotFound = errors.New("指定的资源未找到")
	ErrUnknownField   = errors.New("未知的过滤或排序字段")
	ErrBadPagination  = errors.New("非法的分页参数")
)

// Backend 是查询执行器的端口定义。
// 实现方负责：等待启动连接完成、按当前方言翻译规范查询、
// 执行并返回键已统一为小写的行记录。
type Backend interface {
	// Execute 执行一条规范查询（$n 占位符、ILIKE、LIMIT $i OFFSET $j 语法）。
	// demo 模式下返回空切片而非错误。
	Execute(ctx context.Context, text string, binds []any) ([]map[string]any, error)

	// Mode 返回当前后端状态（可能已从启动选择降级为 demo）。
	Mode() Mode

	// HealthCheck 检查后端的健康状况
	HealthCheck(ctx context.Context) error

	// Close 释放连接池
	Close() error
}
