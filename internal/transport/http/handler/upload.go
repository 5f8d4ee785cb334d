package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"memorial-records-api/internal/feature/importer"
)

// UploadHandler CSV 整表替换。结果通过 303 重定向的查询参数带回，
// 前端的 /upload/success 页面直接读参数渲染。
type UploadHandler struct {
	svc *importer.Service
	log *zap.Logger
}

func NewUploadHandler(svc *importer.Service, l *zap.Logger) *UploadHandler {
	return &UploadHandler{svc: svc, log: l}
}

func (h *UploadHandler) MountAdmin(g *gin.RouterGroup) {
	g.POST("/upload", h.Upload)
}

func (h *UploadHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.redirectError(c, err.Error())
		return
	}
	defer f.Close()

	res, err := h.svc.Import(c.Request.Context(), f)
	if err != nil {
		h.log.Warn("csv import failed", zap.Error(err))
		h.redirectError(c, err.Error())
		return
	}

	q := url.Values{}
	q.Set("ok", "true")
	q.Set("table", res.Table)
	q.Set("count", strconv.Itoa(res.Count))
	c.Redirect(http.StatusSeeOther, "/upload/success?"+q.Encode())
}

func (h *UploadHandler) redirectError(c *gin.Context, msg string) {
	q := url.Values{}
	q.Set("ok", "false")
	q.Set("error", msg)
	c.Redirect(http.StatusSeeOther, "/upload/success?"+q.Encode())
}
