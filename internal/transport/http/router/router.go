// file: internal/transport/http/router/router.go
package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"AquaBridge/internal/aquamiddleware"
	"AquaBridge/internal/aquaobserve"
	"AquaBridge/internal/core/port"
	"AquaBridge/internal/transport/http/middleware"
)

// Dependencies 结构体用于将所有依赖项注入到路由器中
type Dependencies struct {
	Inventory port.Inventory
	Backend   port.Backend
	Limiter   *aquamiddleware.IPRateLimiter
	Version   string
}

// New 创建并配置一个全新的、基于 Gin 的 HTTP 路由器 (V1 版本)
func New(deps Dependencies) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	// --- 配置全局中间件 ---
	router.Use(aquamiddleware.RequestID())
	router.Use(aquaobserve.PrometheusMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", aquamiddleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))
	if deps.Limiter != nil {
		router.Use(deps.Limiter.Middleware())
	}
	router.Use(middleware.ErrorHandlingMiddleware())

	router.GET("/healthz", healthzHandler(deps.Backend))
	router.GET("/metrics", gin.WrapH(aquaobserve.Handler()))

	v1 := router.Group("/api/v1")
	{
		// --- 数据平面 (Data Plane) ---
		v1.GET("/systems", listHandler(deps.Inventory, "systems"))
		v1.GET("/systems/:pwsId", getHandler(deps.Inventory, "systems", "pwsId"))
		v1.GET("/systems/:pwsId/facilities", systemFacilitiesHandler(deps.Inventory))
		v1.GET("/facilities", listHandler(deps.Inventory, "facilities"))
		v1.GET("/violations", listHandler(deps.Inventory, "violations"))

		// --- 元数据平面 (Metadata Plane) ---
		meta := v1.Group("/meta")
		{
			meta.GET("/status", statusHandler(deps.Backend, deps.Version))
		}
	}

	return router
}

// =============================================================================
//  查询参数解析
// =============================================================================

// listQuery 承载分页与排序参数，过滤条件单独解析
type listQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Size   int    `form:"size" binding:"omitempty,min=1,max=500"`
	SortBy string `form:"sortBy"`
	Desc   bool   `form:"desc"`
}

// reservedParams 不参与过滤条件解析的查询参数
var reservedParams = map[string]struct{}{
	"page": {}, "size": {}, "sortBy": {}, "desc": {},
}

// parseListRequest 把 URL 查询参数解析为列表请求。
// 过滤语法：`?field=v` 精确匹配，`?field_contains=v` 包含，`?field_prefix=v` 前缀。
// 字段名是否合法由服务层对照实体目录裁定。
func parseListRequest(c *gin.Context) (port.ListRequest, error) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return port.ListRequest{}, err
	}

	req := port.ListRequest{
		SortBy: q.SortBy,
		Desc:   q.Desc,
		Page:   q.Page,
		Size:   q.Size,
	}

	for key, values := range c.Request.URL.Query() {
		if _, reserved := reservedParams[key]; reserved || len(values) == 0 {
			continue
		}
		flt := port.Filter{Field: key, Match: port.MatchExact, Value: values[0]}
		switch {
		case strings.HasSuffix(key, "_contains"):
			flt.Field = strings.TrimSuffix(key, "_contains")
			flt.Match = port.MatchContains
		case strings.HasSuffix(key, "_prefix"):
			flt.Field = strings.TrimSuffix(key, "_prefix")
			flt.Match = port.MatchPrefix
		}
		req.Filters = append(req.Filters, flt)
	}

	return req, nil
}

// =============================================================================
//  V1 数据平面处理器
// =============================================================================

// listHandler 处理某个实体的列表查询
func listHandler(inv port.Inventory, entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := parseListRequest(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的查询参数: " + err.Error()})
			return
		}

		page, err := inv.List(c.Request.Context(), entity, req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// getHandler 处理按主标识符的单条查询
func getHandler(inv port.Inventory, entity string, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := inv.Get(c.Request.Context(), entity, c.Param(param))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": row})
	}
}

// systemFacilitiesHandler 列出某个供水系统下属的设施。
// 路径参数固化为 pwsId 精确过滤，叠加常规查询参数。
func systemFacilitiesHandler(inv port.Inventory) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := parseListRequest(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的查询参数: " + err.Error()})
			return
		}
		req.Filters = append(req.Filters, port.Filter{
			Field: "pwsId",
			Match: port.MatchExact,
			Value: c.Param("pwsId"),
		})

		page, err := inv.List(c.Request.Context(), "facilities", req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// =============================================================================
//  系统与元数据处理器
// =============================================================================

// statusHandler 返回运行模式与版本，供前端判断是否处于演示模式
func statusHandler(backend port.Backend, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"mode":    string(backend.Mode()),
			"version": version,
		})
	}
}

// healthzHandler 存活探针。演示模式也算健康，网关本身仍在服务。
func healthzHandler(backend port.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		if backend.Mode() != port.ModeDemo {
			if err := backend.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
