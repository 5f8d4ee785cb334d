package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"memorial-records-api/internal/core/auth"
	"memorial-records-api/internal/core/config"
	"memorial-records-api/internal/transport/http/handler"
	mdw "memorial-records-api/internal/transport/http/middleware"
)

// NewAPIEngine 公开读面：列表/详情/占位图/whoami。
// 读接口失败降级为空集在 service 层做，这里只挂运维中间件。
func NewAPIEngine(l *zap.Logger, jwter *auth.JWTer, cfgAuth config.Auth, reg *Registry) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(), // 公共只读面板，放开跨域
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	api := r.Group("/api/v1")
	reg.MountAllAPI(api)

	api.GET("/whoami", mdw.OptionalAuth(jwter), handler.Whoami(cfgAuth.AdminIDs))

	return r
}
