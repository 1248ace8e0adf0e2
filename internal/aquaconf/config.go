// Package aquaconf 负责集中式配置加载
//
// 全部配置来自环境变量（前缀 AQUA_），各项均有文档化的默认值。
// 后端模式遵循固定的优先级：显式 demo 开关 → 企业方言主机设置 →
// 遗留方言凭据设置 → 默认直通方言 (postgres)。
package aquaconf

import (
	"fmt"
	"net/url"

	"AquaBridge/internal/core/port"

	"github.com/spf13/viper"
)

const (
	defaultPort        = 10533
	defaultPgHost      = "localhost"
	defaultPgPort      = 5432
	defaultPgDatabase  = "sdwis"
	defaultMssqlPort   = 1433
	defaultOraclePort  = 1521
	defaultOracleSvc   = "SDWIS"
	defaultDemoDataKey = "" // 为空则使用内嵌样例数据
)

// Config 结构体
type Config struct {
	Port      int    // HTTP 监听端口
	LogLevel  string // slog 级别
	PprofAddr string // 非空则开启 pprof

	Demo         bool   // 显式演示模式开关
	DemoDataPath string // 可选的演示数据文件（热加载）

	Postgres  PostgresConfig
	SQLServer SQLServerConfig
	Oracle    OracleConfig
}

// PostgresConfig 直通方言连接参数
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// SQLServerConfig 企业方言连接参数
type SQLServerConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// OracleConfig 遗留方言连接参数
type OracleConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Service  string
}

// Load 从环境变量加载配置，返回合并结果
func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix("AQUA")
	v.AutomaticEnv()

	v.SetDefault("port", defaultPort)
	v.SetDefault("log_level", "INFO")
	v.SetDefault("pprof_addr", "")
	v.SetDefault("demo", false)
	v.SetDefault("demo_data", defaultDemoDataKey)

	v.SetDefault("pg_host", defaultPgHost)
	v.SetDefault("pg_port", defaultPgPort)
	v.SetDefault("pg_user", "sdwis")
	v.SetDefault("pg_password", "")
	v.SetDefault("pg_database", defaultPgDatabase)
	v.SetDefault("pg_sslmode", "disable")

	v.SetDefault("mssql_host", "")
	v.SetDefault("mssql_port", defaultMssqlPort)
	v.SetDefault("mssql_user", "sa")
	v.SetDefault("mssql_password", "")
	v.SetDefault("mssql_database", "SDWIS")

	v.SetDefault("oracle_user", "")
	v.SetDefault("oracle_password", "")
	v.SetDefault("oracle_host", "localhost")
	v.SetDefault("oracle_port", defaultOraclePort)
	v.SetDefault("oracle_service", defaultOracleSvc)

	return &Config{
		Port:         v.GetInt("port"),
		LogLevel:     v.GetString("log_level"),
		PprofAddr:    v.GetString("pprof_addr"),
		Demo:         v.GetBool("demo"),
		DemoDataPath: v.GetString("demo_data"),
		Postgres: PostgresConfig{
			Host:     v.GetString("pg_host"),
			Port:     v.GetInt("pg_port"),
			User:     v.GetString("pg_user"),
			Password: v.GetString("pg_password"),
			Database: v.GetString("pg_database"),
			SSLMode:  v.GetString("pg_sslmode"),
		},
		SQLServer: SQLServerConfig{
			Host:     v.GetString("mssql_host"),
			Port:     v.GetInt("mssql_port"),
			User:     v.GetString("mssql_user"),
			Password: v.GetString("mssql_password"),
			Database: v.GetString("mssql_database"),
		},
		Oracle: OracleConfig{
			User:     v.GetString("oracle_user"),
			Password: v.GetString("oracle_password"),
			Host:     v.GetString("oracle_host"),
			Port:     v.GetInt("oracle_port"),
			Service:  v.GetString("oracle_service"),
		},
	}
}

// SelectMode 按固定优先级决定启动模式。
// 进程内只调用一次；之后的 demo 降级由 backend.Broker 负责。
func (c *Config) SelectMode() port.Mode {
	switch {
	case c.Demo:
		return port.ModeDemo
	case c.SQLServer.Host != "":
		return port.ModeSQLServer
	case c.Oracle.User != "":
		return port.ModeOracle
	default:
		return port.ModePostgres
	}
}

// DriverName 返回所选模式的 database/sql 驱动名
func (c *Config) DriverName(mode port.Mode) string {
	switch mode {
	case port.ModeSQLServer:
		return "sqlserver"
	case port.ModeOracle:
		return "oracle"
	default:
		return "pgx"
	}
}

// DSN 返回所选模式的连接串
func (c *Config) DSN(mode port.Mode) string {
	switch mode {
	case port.ModeSQLServer:
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.SQLServer.User, c.SQLServer.Password),
			Host:     fmt.Sprintf("%s:%d", c.SQLServer.Host, c.SQLServer.Port),
			RawQuery: url.Values{"database": []string{c.SQLServer.Database}}.Encode(),
		}
		return u.String()
	case port.ModeOracle:
		u := url.URL{
			Scheme: "oracle",
			User:   url.UserPassword(c.Oracle.User, c.Oracle.Password),
			Host:   fmt.Sprintf("%s:%d", c.Oracle.Host, c.Oracle.Port),
			Path:   "/" + c.Oracle.Service,
		}
		return u.String()
	default:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.Postgres.User, c.Postgres.Password),
			Host:     fmt.Sprintf("%s:%d", c.Postgres.Host, c.Postgres.Port),
			Path:     "/" + c.Postgres.Database,
			RawQuery: url.Values{"sslmode": []string{c.Postgres.SSLMode}}.Encode(),
		}
		return u.String()
	}
}
