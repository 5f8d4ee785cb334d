package router

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"memorial-records-api/internal/core/auth"
	"memorial-records-api/internal/core/config"
	"memorial-records-api/internal/transport/http/handler"
	mdw "memorial-records-api/internal/transport/http/middleware"
)

// NewAdminEngine 写面：上传、编辑、换 token。单独端口，体积限制放宽给 CSV。
func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer, cfgAuth config.Auth, reg *Registry) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(50, 100),
		mdw.ConcurrencyLimit(50),
		mdw.MaxBodyBytes(64<<20),
		mdw.Timeout(60*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	handler.MountAuthActions(api, jwter, cfgAuth)

	gated := api.Group("")
	gated.Use(mdw.AdminOnly(jwter, cfgAuth.AdminIDs, cfgAuth.Enabled))
	reg.MountAllAdmin(gated)

	return r
}
