// Package aquaobserve 暴露 Prometheus 指标
package aquaobserve

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 指标定义
var (
	TotalReq = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aquabridge_requests_total",
		Help: "HTTP 请求总数",
	})
	FailReq = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aquabridge_requests_failed",
		Help: "HTTP 请求失败数",
	})
	QueryTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aquabridge_backend_queries_total",
		Help: "按方言统计的后端查询总数",
	}, []string{"dialect"})
	QueryFail = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aquabridge_backend_query_failures_total",
		Help: "按方言统计的后端查询失败数",
	}, []string{"dialect"})
	ModeDemoted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aquabridge_mode_demotions_total",
		Help: "后端降级为 demo 模式的次数（至多发生一次）",
	})
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aquabridge_http_request_duration_seconds",
		Help:    "HTTP 请求耗时分布",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "code"})
)

// Register 必须在 main 调用一次
func Register() {
	prometheus.MustRegister(TotalReq, FailReq, QueryTotal, QueryFail, ModeDemoted, httpRequestDuration)
}

// Handler 返回 HTTP 处理器
func Handler() http.Handler { return promhttp.Handler() }

// PrometheusMiddleware 记录每个请求的耗时、方法与状态码
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path // 未匹配路由
		}
		TotalReq.Inc()
		if c.Writer.Status() >= 500 {
			FailReq.Inc()
		}
		httpRequestDuration.
			WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
