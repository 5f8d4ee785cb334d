package handler

import (
	"net/http"
	"path/filepath"
	"regexp"

	"github.com/gin-gonic/gin"
)

// seedNamePattern 白名单里只有九张切片占位图
var seedNamePattern = regexp.MustCompile(`^slice_final_[1-3]_[1-3]\.png$`)

// SeedHandler 按精确文件名放行占位图，其余一律 404。
type SeedHandler struct {
	dir string
}

func NewSeedHandler(dir string) *SeedHandler { return &SeedHandler{dir: dir} }

func (h *SeedHandler) MountAPI(g *gin.RouterGroup) {
	g.GET("/seed/:name", h.Get)
}

func (h *SeedHandler) Get(c *gin.Context) {
	name := c.Param("name")
	if !seedNamePattern.MatchString(name) {
		c.String(http.StatusNotFound, "Not Found")
		return
	}
	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.File(filepath.Join(h.dir, name))
}
